//go:build property

package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/viper"
)

func TestConfigurationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("valid settings always load", prop.ForAll(
		func(port int, host string, path string, debounceMs int) bool {
			v := viper.New()
			v.Set("server.port", port)
			v.Set("server.host", host)
			v.Set("catalog.path", path+".json")
			v.Set("watch.debounce", fmt.Sprintf("%dms", debounceMs))

			config, err := LoadFrom(v)
			if err != nil {
				return false
			}
			return config.Server.Port == port &&
				config.Server.Host == host &&
				config.Watch.Debounce == time.Duration(debounceMs)*time.Millisecond
		},
		gen.IntRange(1, 65535),
		gen.RegexMatch(`^[a-z][a-z0-9.-]{0,20}$`),
		gen.RegexMatch(`^[a-z][a-z0-9_/]{0,20}$`),
		gen.IntRange(1, 60000),
	))

	properties.Property("out of range ports are rejected", prop.ForAll(
		func(port int) bool {
			v := viper.New()
			v.Set("server.port", port)
			_, err := LoadFrom(v)
			return err != nil
		},
		gen.OneGenOf(gen.IntRange(-100000, -1), gen.IntRange(65536, 1000000)),
	))

	properties.Property("traversal paths are rejected", prop.ForAll(
		func(depth int, name string) bool {
			path := ""
			for i := 0; i < depth; i++ {
				path += "../"
			}
			v := viper.New()
			v.Set("catalog.path", path+name+".json")
			_, err := LoadFrom(v)
			return err != nil
		},
		gen.IntRange(1, 5),
		gen.RegexMatch(`^[a-z]{1,10}$`),
	))

	properties.Property("origins default to the listen port", prop.ForAll(
		func(port int) bool {
			config := &ServerConfig{Host: DefaultHost, Port: port}
			origins := config.Origins()
			return len(origins) == 2 &&
				origins[0] == fmt.Sprintf("localhost:%d", port) &&
				origins[1] == fmt.Sprintf("127.0.0.1:%d", port)
		},
		gen.IntRange(1, 65535),
	))

	properties.TestingRun(t)
}

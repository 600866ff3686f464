package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/placeholder"
	"github.com/memora-solutions/snippetkit/internal/types"
)

const pageStyle = `
body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; color: #333; }
.container { max-width: 1100px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
h1 { border-bottom: 2px solid #007acc; padding-bottom: 10px; }
nav a { margin-right: 12px; color: #007acc; }
.snippet { border: 1px solid #ddd; border-radius: 6px; padding: 12px 15px; margin: 12px 0; background: #fafafa; }
.snippet-id { font-size: 12px; color: #666; }
.placeholder { display: inline-block; background: #e7f1fa; border-radius: 3px; padding: 0 4px; margin-right: 4px; font-family: monospace; font-size: 12px; }
pre { background: #272822; color: #f8f8f2; padding: 10px; border-radius: 4px; overflow-x: auto; }
.status { position: fixed; top: 20px; right: 20px; padding: 6px 14px; border-radius: 4px; color: white; font-weight: bold; }
.status.connected { background: #28a745; }
.status.disconnected { background: #dc3545; }
`

const reloadScript = `
(function () {
  var status = document.getElementById("status");
  function connect() {
    var scheme = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(scheme + location.host + "/ws");
    ws.onopen = function () { status.className = "status connected"; status.textContent = "live"; };
    ws.onclose = function () {
      status.className = "status disconnected"; status.textContent = "offline";
      setTimeout(connect, 2000);
    };
    ws.onmessage = function (event) {
      var msg = JSON.parse(event.data);
      if (msg.type === "catalog_reloaded") { location.reload(); }
    };
  }
  connect();
})();
`

// CatalogPage renders the catalog browser: category navigation, the popular
// list and every snippet grouped by category.
func CatalogPage(c *catalog.Catalog) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}

		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		p.text("Snippet catalog " + c.Version())
		p.raw(`</title><style>` + pageStyle + `</style></head><body>`)
		p.raw(`<div id="status" class="status disconnected">offline</div><div class="container">`)
		p.raw(`<h1>Snippet catalog <small id="catalog-version">`)
		p.text(c.Version())
		p.raw(`</small></h1>`)

		stats := c.Stats()
		p.raw(`<nav id="categories">`)
		for _, category := range c.Categories() {
			p.raw(`<a href="#category-`)
			p.text(string(category.ID))
			p.raw(`" data-count="` + strconv.Itoa(stats[category.ID]) + `">`)
			p.text(category.Label)
			p.raw(` (` + strconv.Itoa(stats[category.ID]) + `)</a>`)
		}
		p.raw(`</nav>`)

		p.raw(`<section id="popular"><h2>Popular</h2><ol>`)
		for _, snippet := range c.Popular(catalog.DefaultPopularLimit) {
			p.raw(`<li><a href="#snippet-`)
			p.text(snippet.ID)
			p.raw(`">`)
			p.text(snippet.Label)
			p.raw(`</a></li>`)
		}
		p.raw(`</ol></section>`)

		for _, category := range c.Categories() {
			snippets := c.ByCategory(category.ID)
			if len(snippets) == 0 {
				continue
			}
			p.raw(`<section class="category" id="category-`)
			p.text(string(category.ID))
			p.raw(`"><h2>`)
			p.text(category.Label)
			p.raw(`</h2><p>`)
			p.text(category.Description)
			p.raw(`</p>`)
			for _, snippet := range snippets {
				p.snippet(snippet)
			}
			p.raw(`</section>`)
		}

		p.raw(`</div><script>` + reloadScript + `</script></body></html>`)
		return p.err
	})
}

func (p *pageWriter) snippet(snippet types.Snippet) {
	p.raw(`<article class="snippet" id="snippet-`)
	p.text(snippet.ID)
	p.raw(`" data-snippet-id="`)
	p.text(snippet.ID)
	p.raw(`"><h3>`)
	p.text(snippet.Label)
	p.raw(`</h3><div class="snippet-id">`)
	p.text(snippet.ID)
	p.raw(`</div><p>`)
	p.text(snippet.Description)
	p.raw(`</p>`)

	if len(snippet.Placeholders) > 0 {
		p.raw(`<div class="placeholders">`)
		for _, name := range snippet.Placeholders {
			p.raw(`<span class="placeholder">`)
			p.text(placeholder.Format(name))
			p.raw(`</span>`)
		}
		p.raw(`</div>`)
	}

	p.raw(`<pre><code>`)
	p.text(snippet.Code)
	p.raw(`</code></pre>`)

	if example := strings.TrimSpace(snippet.Example); example != "" {
		p.raw(`<details><summary>Example</summary><pre>`)
		p.text(example)
		p.raw(`</pre></details>`)
	}
	p.raw(`</article>`)
}

// pageWriter keeps the first write error so the page can be written without
// checking every call.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	templ.Handler(CatalogPage(s.store.Current())).ServeHTTP(w, r)
}

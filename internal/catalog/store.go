package catalog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/memora-solutions/snippetkit/internal/types"
)

// Source produces a catalog document. Store.Reload calls it.
type Source func() (*types.Document, error)

// FileSource loads the document at path on every call.
func FileSource(path string, format Format) Source {
	return func() (*types.Document, error) {
		return LoadFormat(path, format)
	}
}

// DefaultSource loads the embedded library.
func DefaultSource() Source {
	return LoadDefault
}

// ReloadEvent describes the outcome of a reload.
type ReloadEvent struct {
	Version   string
	Snippets  int
	Err       error
	Timestamp time.Time
}

// Store holds the current catalog and swaps it atomically on reload. Readers
// always see a complete catalog; a failed reload keeps the previous one.
type Store struct {
	current  atomic.Pointer[Catalog]
	source   Source
	mutex    sync.Mutex
	watchers []chan ReloadEvent
}

// NewStore loads the first catalog from source.
func NewStore(source Source) (*Store, error) {
	doc, err := source()
	if err != nil {
		return nil, err
	}

	s := &Store{
		source:   source,
		watchers: make([]chan ReloadEvent, 0),
	}
	s.current.Store(New(doc))
	return s, nil
}

// NewStaticStore wraps an already built catalog. Reload keeps it unchanged.
func NewStaticStore(c *Catalog) *Store {
	s := &Store{
		source: func() (*types.Document, error) {
			return c.Document(), nil
		},
		watchers: make([]chan ReloadEvent, 0),
	}
	s.current.Store(c)
	return s
}

// Current returns the catalog in effect.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Replace installs c and notifies watchers.
func (s *Store) Replace(c *Catalog) {
	s.current.Store(c)
	s.notify(ReloadEvent{
		Version:   c.Version(),
		Snippets:  c.Len(),
		Timestamp: time.Now(),
	})
}

// Reload loads the source again. On error the current catalog is kept and
// watchers receive the error.
func (s *Store) Reload() error {
	doc, err := s.source()
	if err != nil {
		current := s.Current()
		s.notify(ReloadEvent{
			Version:   current.Version(),
			Snippets:  current.Len(),
			Err:       err,
			Timestamp: time.Now(),
		})
		return err
	}

	s.Replace(New(doc))
	return nil
}

// Watch returns a channel that receives reload events.
func (s *Store) Watch() <-chan ReloadEvent {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ch := make(chan ReloadEvent, 16)
	s.watchers = append(s.watchers, ch)
	return ch
}

// Unwatch removes a watcher channel and closes it.
func (s *Store) Unwatch(ch <-chan ReloadEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, watcher := range s.watchers {
		if watcher == ch {
			close(watcher)
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			break
		}
	}
}

func (s *Store) notify(event ReloadEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, watcher := range s.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

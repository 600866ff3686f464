// Package catalog provides the read-only snippet catalog: an immutable,
// ordered collection of snippets and categories with lookup, search and
// aggregation queries, plus loading, encoding and a reloadable store around
// it.
//
// A *Catalog never changes after New returns, so any number of goroutines
// may query it without coordination. Queries never fail: absence is an empty
// slice, a false boolean or an empty map.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/memora-solutions/snippetkit/internal/types"
)

// DefaultPopularLimit is the popular list size used when callers give none.
const DefaultPopularLimit = 6

// Catalog is an immutable snippet collection.
type Catalog struct {
	version    string
	snippets   []types.Snippet
	categories []types.Category
	byID       map[string]int
	curated    []string
	popular    []int
	// folded holds the case-folded search text of each snippet.
	folded []string
}

// New builds a catalog from doc. The document is copied; later changes to
// doc do not affect the catalog. A nil doc yields an empty catalog with the
// default categories.
func New(doc *types.Document) *Catalog {
	if doc == nil {
		doc = &types.Document{}
	}
	doc = doc.Clone()

	c := &Catalog{
		version:    doc.Version,
		snippets:   doc.Snippets,
		categories: doc.Categories,
		curated:    doc.Popular,
		byID:       make(map[string]int, len(doc.Snippets)),
		folded:     make([]string, len(doc.Snippets)),
	}
	if c.snippets == nil {
		c.snippets = []types.Snippet{}
	}
	if len(c.categories) == 0 {
		c.categories = types.DefaultCategories()
	}

	folder := cases.Fold()
	for i, s := range c.snippets {
		// First occurrence wins for duplicate ids.
		if _, exists := c.byID[s.ID]; !exists {
			c.byID[s.ID] = i
		}
		c.folded[i] = folder.String(s.Label + "\x00" + s.Description + "\x00" + s.ID)
	}

	c.popular = c.popularOrder(doc.Popular)

	return c
}

// popularOrder lists snippet indexes with curated ids first, then the rest
// in document order.
func (c *Catalog) popularOrder(curated []string) []int {
	order := make([]int, 0, len(c.snippets))
	used := make([]bool, len(c.snippets))
	for _, id := range curated {
		idx, ok := c.byID[id]
		if !ok || used[idx] {
			continue
		}
		used[idx] = true
		order = append(order, idx)
	}
	for i := range c.snippets {
		if !used[i] {
			order = append(order, i)
		}
	}
	return order
}

// Version returns the catalog document version.
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of snippets.
func (c *Catalog) Len() int {
	return len(c.snippets)
}

// All returns every snippet in document order.
func (c *Catalog) All() []types.Snippet {
	return c.collect(func(int, types.Snippet) bool { return true })
}

// ByCategory returns the snippets of category id in document order. An
// unknown id yields an empty slice.
func (c *Catalog) ByCategory(id types.CategoryID) []types.Snippet {
	return c.collect(func(_ int, s types.Snippet) bool { return s.Category == id })
}

// ByID returns the snippet with the given id.
func (c *Catalog) ByID(id string) (types.Snippet, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return types.Snippet{}, false
	}
	return c.snippets[idx].Clone(), true
}

// Search returns snippets whose label, description or id contains term,
// ignoring case. A blank term matches every snippet.
func (c *Catalog) Search(term string) []types.Snippet {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.All()
	}

	needle := cases.Fold().String(term)
	return c.collect(func(i int, _ types.Snippet) bool {
		return strings.Contains(c.folded[i], needle)
	})
}

// Categories returns the category records in display order.
func (c *Catalog) Categories() []types.Category {
	return append([]types.Category{}, c.categories...)
}

// CategoryByID returns the category record with the given id.
func (c *Catalog) CategoryByID(id types.CategoryID) (types.Category, bool) {
	for _, category := range c.categories {
		if category.ID == id {
			return category, true
		}
	}
	return types.Category{}, false
}

// Stats counts snippets per category. Categories without snippets are
// omitted.
func (c *Catalog) Stats() map[types.CategoryID]int {
	stats := make(map[types.CategoryID]int)
	for _, s := range c.snippets {
		stats[s.Category]++
	}
	return stats
}

// Popular returns up to limit snippets: the curated popular ids first, then
// the remaining snippets in document order. The result always has
// min(limit, Len()) elements; a non-positive limit yields an empty slice.
func (c *Catalog) Popular(limit int) []types.Snippet {
	if limit <= 0 {
		return []types.Snippet{}
	}
	if limit > len(c.popular) {
		limit = len(c.popular)
	}

	result := make([]types.Snippet, 0, limit)
	for _, idx := range c.popular[:limit] {
		result = append(result, c.snippets[idx].Clone())
	}
	return result
}

// Document returns a copy of the catalog as a persistable document.
func (c *Catalog) Document() *types.Document {
	doc := &types.Document{
		Version:    c.version,
		Snippets:   c.All(),
		Categories: c.Categories(),
	}
	if len(c.curated) > 0 {
		doc.Popular = append([]string{}, c.curated...)
	}
	return doc
}

func (c *Catalog) collect(match func(int, types.Snippet) bool) []types.Snippet {
	result := make([]types.Snippet, 0)
	for i, s := range c.snippets {
		if match(i, s) {
			result = append(result, s.Clone())
		}
	}
	return result
}

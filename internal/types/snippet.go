// Package types provides the catalog record types shared by the catalog,
// validation, server and command packages.
package types

// CategoryID identifies a snippet category.
type CategoryID string

// The closed set of categories a catalog may use.
const (
	CategoryNotifications    CategoryID = "notifications"
	CategoryCRUDData         CategoryID = "crud-data"
	CategoryDOMManipulation  CategoryID = "dom-manipulation"
	CategoryUtilities        CategoryID = "utilities"
	CategoryCompleteExamples CategoryID = "complete-examples"
)

// Snippet is a reusable code template with its declared placeholders and
// display metadata.
type Snippet struct {
	// ID is a unique slug made of lowercase letters, digits and hyphens.
	ID string `json:"id" yaml:"id"`
	// Category is matched against Category.ID by string equality.
	Category CategoryID `json:"category" yaml:"category"`
	// Label is the short display name.
	Label string `json:"label" yaml:"label"`
	// Description explains what the snippet does.
	Description string `json:"description" yaml:"description"`
	// Code is the template text containing {{TOKEN}} markers.
	Code string `json:"code" yaml:"code"`
	// Placeholders lists the token names the author declares as required
	// inputs for Code. A nil slice means the field was absent.
	Placeholders []string `json:"placeholders" yaml:"placeholders"`
	// Example shows sample usage. Display text only.
	Example string `json:"example,omitempty" yaml:"example,omitempty"`
}

// Clone returns a copy that shares no slices with s.
func (s Snippet) Clone() Snippet {
	if s.Placeholders != nil {
		s.Placeholders = append([]string{}, s.Placeholders...)
	}
	return s
}

// Category groups snippets for display.
type Category struct {
	ID          CategoryID `json:"id" yaml:"id"`
	Label       string     `json:"label" yaml:"label"`
	Description string     `json:"description" yaml:"description"`
}

// Document is the persisted catalog, loaded and exported as a unit.
type Document struct {
	Version  string    `json:"version" yaml:"version"`
	Snippets []Snippet `json:"snippets" yaml:"snippets"`
	// Categories overrides the display records of the fixed set. When empty,
	// DefaultCategories is used.
	Categories []Category `json:"categories,omitempty" yaml:"categories,omitempty"`
	// Popular is the author-curated popularity order, as snippet ids.
	Popular []string `json:"popular,omitempty" yaml:"popular,omitempty"`
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	out := &Document{Version: d.Version}
	if d.Snippets != nil {
		out.Snippets = make([]Snippet, len(d.Snippets))
		for i, s := range d.Snippets {
			out.Snippets[i] = s.Clone()
		}
	}
	if d.Categories != nil {
		out.Categories = append([]Category{}, d.Categories...)
	}
	if d.Popular != nil {
		out.Popular = append([]string{}, d.Popular...)
	}
	return out
}

var defaultCategories = []Category{
	{
		ID:          CategoryNotifications,
		Label:       "Notifications",
		Description: "Toasts and user feedback messages",
	},
	{
		ID:          CategoryCRUDData,
		Label:       "CRUD & Data",
		Description: "Create, read, update and delete rows",
	},
	{
		ID:          CategoryDOMManipulation,
		Label:       "DOM Manipulation",
		Description: "Show, hide and style page elements",
	},
	{
		ID:          CategoryUtilities,
		Label:       "Utilities",
		Description: "Formatting, dates and helper functions",
	},
	{
		ID:          CategoryCompleteExamples,
		Label:       "Complete Examples",
		Description: "End-to-end automations combining several steps",
	},
}

// DefaultCategories returns the fixed category records in display order.
func DefaultCategories() []Category {
	return append([]Category{}, defaultCategories...)
}

// ValidCategoryIDs returns the ids of the fixed category set.
func ValidCategoryIDs() []CategoryID {
	ids := make([]CategoryID, len(defaultCategories))
	for i, c := range defaultCategories {
		ids[i] = c.ID
	}
	return ids
}

// IsValidCategory reports whether id belongs to the fixed category set.
func IsValidCategory(id CategoryID) bool {
	for _, c := range defaultCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}

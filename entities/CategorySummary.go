package entities

import (
	"encoding/json"
	"slices"
	"strconv"
)

const (
	DefaultColorToken = "from-gray-500 to-gray-600"
	DefaultIconGlyph  = "💊"
)

// CategorySummary describes one drug category of the catalog.
type CategorySummary struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Count         int      `json:"count"`
	ColorToken    string   `json:"colorToken"`
	IconGlyph     string   `json:"iconGlyph"`
	Subcategories []string `json:"subcategories"`
}

// Counter is a non-negative count, or unknown when the provider gave nothing usable.
// It marshals to a JSON number or to the string "unknown".
type Counter struct {
	Value int
	Known bool
}

// UnknownCount is the zero Counter.
var UnknownCount = Counter{}

// Count returns a known Counter.
func Count(v int) Counter {
	return Counter{Value: v, Known: true}
}

func (c Counter) String() string {
	if !c.Known {
		return "unknown"
	}
	return strconv.Itoa(c.Value)
}

func (c Counter) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return []byte(`"unknown"`), nil
	}
	return []byte(strconv.Itoa(c.Value)), nil
}

func (c *Counter) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil && n >= 0 {
		*c = Count(n)
		return nil
	}
	*c = UnknownCount
	return nil
}

// CatalogStats holds aggregate counters for the whole catalog.
type CatalogStats struct {
	TotalDrugs         Counter `json:"totalDrugs"`
	TotalCategories    Counter `json:"totalCategories"`
	TotalSubCategories Counter `json:"totalSubCategories"`
	TotalManufacturers Counter `json:"totalManufacturers"`
}

// Catalog is the result of a category listing.
type Catalog struct {
	Categories []CategorySummary `json:"categories"`
	Stats      CatalogStats      `json:"stats"`
}

// Clone returns a deep copy.
func (c Catalog) Clone() Catalog {
	out := Catalog{Stats: c.Stats, Categories: make([]CategorySummary, len(c.Categories))}
	for i, cat := range c.Categories {
		cat.Subcategories = slices.Clone(cat.Subcategories)
		out.Categories[i] = cat
	}
	return out
}

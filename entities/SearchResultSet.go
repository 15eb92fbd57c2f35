package entities

// DrugSummary is the reduced projection of a DrugRecord returned by searches.
type DrugSummary struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	EnglishName  string  `json:"englishName"`
	Category     string  `json:"category"`
	SubCategory  string  `json:"subCategory"`
	Dosage       string  `json:"dosage"`
	Form         string  `json:"form"`
	Usage        string  `json:"usage"`
	Manufacturer *string `json:"manufacturer"`
	Price        *string `json:"price"`
}

// SearchResultSet is the outcome of a search. ReportedTotal comes from the
// provider and is informational only; it is never below len(Items).
type SearchResultSet struct {
	Query         string        `json:"query"`
	Items         []DrugSummary `json:"items"`
	ReportedTotal int           `json:"reportedTotal"`
}

// Clone returns a deep copy.
func (s SearchResultSet) Clone() SearchResultSet {
	out := SearchResultSet{Query: s.Query, ReportedTotal: s.ReportedTotal, Items: make([]DrugSummary, len(s.Items))}
	for i, it := range s.Items {
		it.Manufacturer = clonePtr(it.Manufacturer)
		it.Price = clonePtr(it.Price)
		out.Items[i] = it
	}
	return out
}

// Package entities holds the domain values produced by the drug knowledge client.
package entities

import "slices"

// Unspecified is the placeholder the provider is asked to use for unknown values.
const Unspecified = "نامشخص"

// DrugRecord is the structured profile of a single medication.
type DrugRecord struct {
	Name               string   `json:"name"`
	EnglishName        string   `json:"englishName"`
	Category           string   `json:"category"`
	SubCategory        string   `json:"subCategory"`
	Dosage             string   `json:"dosage"`
	Type               string   `json:"type"`
	Form               string   `json:"form"`
	Usage              string   `json:"usage"`
	Description        string   `json:"description"`
	SideEffects        []string `json:"sideEffects"`
	SeriousSideEffects []string `json:"seriousSideEffects"`
	Interactions       []string `json:"interactions"`
	Tags               []string `json:"tags"`
	Warnings           *string  `json:"warnings"`
	Storage            *string  `json:"storage"`
	Pregnancy          *string  `json:"pregnancy"`
	Manufacturer       *string  `json:"manufacturer"`
}

// NewDrugRecord returns a record with every optional field at its default.
func NewDrugRecord(name string) DrugRecord {
	return DrugRecord{
		Name:               name,
		EnglishName:        Unspecified,
		Category:           Unspecified,
		SubCategory:        Unspecified,
		Dosage:             Unspecified,
		Type:               Unspecified,
		Form:               Unspecified,
		SideEffects:        []string{},
		SeriousSideEffects: []string{},
		Interactions:       []string{},
		Tags:               []string{},
	}
}

// IsPlaceholder reports whether the provider answered with an empty shell:
// nothing but the name is known.
func (d DrugRecord) IsPlaceholder() bool {
	for _, v := range []string{d.EnglishName, d.Category, d.SubCategory, d.Dosage, d.Type, d.Form} {
		if !IsUnknown(v) {
			return false
		}
	}
	for _, p := range []*string{d.Warnings, d.Storage, d.Pregnancy, d.Manufacturer} {
		if p != nil && !IsUnknown(*p) {
			return false
		}
	}
	if len(d.SideEffects)+len(d.SeriousSideEffects)+len(d.Interactions)+len(d.Tags) > 0 {
		return false
	}
	return IsUnknown(d.Usage) && IsUnknown(d.Description)
}

// Clone returns a deep copy.
func (d DrugRecord) Clone() DrugRecord {
	c := d
	c.SideEffects = slices.Clone(d.SideEffects)
	c.SeriousSideEffects = slices.Clone(d.SeriousSideEffects)
	c.Interactions = slices.Clone(d.Interactions)
	c.Tags = slices.Clone(d.Tags)
	c.Warnings = clonePtr(d.Warnings)
	c.Storage = clonePtr(d.Storage)
	c.Pregnancy = clonePtr(d.Pregnancy)
	c.Manufacturer = clonePtr(d.Manufacturer)
	return c
}

// IsUnknown reports whether v carries no information.
func IsUnknown(v string) bool {
	switch v {
	case "", Unspecified, "unspecified", "unknown", "null", "N/A":
		return true
	}
	return false
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

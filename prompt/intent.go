// Package prompt renders drug knowledge queries into provider instructions.
package prompt

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Kind identifies one of the supported query shapes.
type Kind int

const (
	KindLookupDrug Kind = iota + 1
	KindListCategories
	KindSearchDrugs
)

func (k Kind) String() string {
	switch k {
	case KindLookupDrug:
		return "lookup"
	case KindListCategories:
		return "categories"
	case KindSearchDrugs:
		return "search"
	}
	return "unknown"
}

const (
	DefaultSearchLimit = 20
	MinSearchLimit     = 1
	MaxSearchLimit     = 100

	maxInputRunes = 200
)

// Intent is a query the builder knows how to render.
type Intent interface {
	Kind() Kind
	// Fingerprint identifies equivalent requests: same kind, same normalized arguments.
	Fingerprint() string
}

// LookupDrug asks for the full profile of a single drug.
type LookupDrug struct {
	Name string
}

func (LookupDrug) Kind() Kind { return KindLookupDrug }

func (l LookupDrug) Fingerprint() string {
	return KindLookupDrug.String() + ":" + Normalize(l.Name)
}

// ListCategories asks for the category catalog and its statistics.
type ListCategories struct{}

func (ListCategories) Kind() Kind { return KindListCategories }

func (ListCategories) Fingerprint() string {
	return KindListCategories.String()
}

// SearchDrugs asks for drugs related to a free-text query.
type SearchDrugs struct {
	Query string
	Limit int
}

func (SearchDrugs) Kind() Kind { return KindSearchDrugs }

func (s SearchDrugs) Fingerprint() string {
	return KindSearchDrugs.String() + ":" + strconv.Itoa(ClampLimit(s.Limit)) + ":" + Normalize(s.Query)
}

// ClampLimit maps 0 to the default limit and bounds everything else to 1..100.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultSearchLimit
	case limit < MinSearchLimit:
		return MinSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	}
	return limit
}

var persianFold = strings.NewReplacer(
	"ي", "ی", // Arabic yeh
	"ى", "ی", // alef maksura
	"ك", "ک", // Arabic kaf
	"‌", " ", // zero-width non-joiner
)

// Normalize folds s into the canonical form used for fingerprints:
// NFC, Arabic letters mapped to their Persian forms, lower case,
// whitespace collapsed.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = persianFold.Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// sanitize strips control characters and double quotes so user text cannot
// break out of the quoted slot in a prompt.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '"':
			return '\''
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/giygas/drugs-api/apperrors"
)

// DefaultLanguage is the language replies are requested in.
const DefaultLanguage = "فارسی"

// Builder renders intents into provider-ready instructions.
type Builder struct {
	language string
}

// NewBuilder returns a builder asking for replies in language.
func NewBuilder(language string) *Builder {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return &Builder{language: language}
}

// Build renders intent. It only fails on invalid caller input.
func (b *Builder) Build(intent Intent) (string, error) {
	switch in := intent.(type) {
	case LookupDrug:
		name, err := checkText("drugName", in.Name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(lookupTemplate, name, b.language, lookupSchema, rules), nil

	case ListCategories:
		return fmt.Sprintf(categoriesTemplate, b.language, categoriesSchema, rules), nil

	case SearchDrugs:
		query, err := checkText("query", in.Query)
		if err != nil {
			return "", err
		}
		limit := ClampLimit(in.Limit)
		return fmt.Sprintf(searchTemplate, query, b.language, fmt.Sprintf(searchSchema, query), limit, rules), nil

	case nil:
		return "", &apperrors.InputError{Field: "intent", Reason: "missing"}
	}

	return "", &apperrors.InputError{Field: "intent", Reason: fmt.Sprintf("unsupported intent %T", intent)}
}

func checkText(field, value string) (string, error) {
	clean := sanitize(value)
	if clean == "" {
		return "", &apperrors.InputError{Field: field, Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(clean) > maxInputRunes {
		return "", &apperrors.InputError{Field: field, Reason: fmt.Sprintf("longer than %d characters", maxInputRunes)}
	}
	return clean, nil
}

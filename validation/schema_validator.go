package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/entities"
	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/logging"
	"github.com/giygas/drugs-api/prompt"
)

// snippetSize bounds how much of a rejected payload is kept for diagnostics.
const snippetSize = 256

// Compile-time check
var _ interfaces.PayloadValidator = (*SchemaValidator)(nil)

// SchemaValidator checks candidate payloads against the three response
// shapes and fills documented defaults. Entry-level defects are dropped or
// defaulted; payload-level defects fail the whole request.
type SchemaValidator struct{}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate dispatches on the intent the candidate answers.
func (v *SchemaValidator) Validate(candidate string, intent prompt.Intent) (any, error) {
	switch in := intent.(type) {
	case prompt.LookupDrug:
		return v.ValidateDrug(candidate)
	case prompt.ListCategories:
		return v.ValidateCatalog(candidate)
	case prompt.SearchDrugs:
		return v.ValidateSearch(candidate, in.Query, in.Limit)
	}
	return nil, fmt.Errorf("no schema for intent %T", intent)
}

// ValidateDrug validates a single drug profile.
func (v *SchemaValidator) ValidateDrug(candidate string) (entities.DrugRecord, error) {
	obj, err := parseObject(candidate)
	if err != nil {
		return entities.DrugRecord{}, err
	}

	name, ok, err := scalarText(obj, "name")
	if err != nil {
		return entities.DrugRecord{}, shapeMismatch(err.Error(), candidate)
	}
	if !ok {
		return entities.DrugRecord{}, shapeMismatch("drug record has no name", candidate)
	}

	record := entities.NewDrugRecord(name)

	defaulted := []struct {
		dst *string
		key string
		def string
	}{
		{&record.EnglishName, "englishName", entities.Unspecified},
		{&record.Category, "category", entities.Unspecified},
		{&record.SubCategory, "subCategory", entities.Unspecified},
		{&record.Dosage, "dosage", entities.Unspecified},
		{&record.Type, "type", entities.Unspecified},
		{&record.Form, "form", entities.Unspecified},
		{&record.Usage, "usage", ""},
		{&record.Description, "description", ""},
	}
	for _, f := range defaulted {
		s, present, err := scalarText(obj, f.key)
		if err != nil {
			return entities.DrugRecord{}, shapeMismatch(err.Error(), candidate)
		}
		if present {
			*f.dst = s
		} else {
			*f.dst = f.def
		}
	}

	nullable := []struct {
		dst **string
		key string
	}{
		{&record.Warnings, "warnings"},
		{&record.Storage, "storage"},
		{&record.Pregnancy, "pregnancy"},
		{&record.Manufacturer, "manufacturer"},
	}
	for _, f := range nullable {
		s, present, err := scalarText(obj, f.key)
		if err != nil {
			return entities.DrugRecord{}, shapeMismatch(err.Error(), candidate)
		}
		if present {
			*f.dst = &s
		}
	}

	lists := []struct {
		dst *[]string
		key string
	}{
		{&record.SideEffects, "sideEffects"},
		{&record.SeriousSideEffects, "seriousSideEffects"},
		{&record.Interactions, "interactions"},
		{&record.Tags, "tags"},
	}
	for _, f := range lists {
		items, err := stringList(obj, f.key)
		if err != nil {
			return entities.DrugRecord{}, shapeMismatch(err.Error(), candidate)
		}
		*f.dst = items
	}

	return record, nil
}

// ValidateCatalog validates a category listing with its statistics.
func (v *SchemaValidator) ValidateCatalog(candidate string) (entities.Catalog, error) {
	obj, err := parseObject(candidate)
	if err != nil {
		return entities.Catalog{}, err
	}

	rawCategories, isList := obj["categories"].([]any)
	if !isList {
		return entities.Catalog{}, shapeMismatch(
			fmt.Sprintf("field \"categories\" must be a list, got %s", typeName(obj["categories"])), candidate)
	}

	catalog := entities.Catalog{Categories: make([]entities.CategorySummary, 0, len(rawCategories))}
	seen := make(map[int]bool, len(rawCategories))

	for i, raw := range rawCategories {
		category, reason := categoryEntry(raw)
		if reason == "" && seen[category.ID] {
			reason = fmt.Sprintf("duplicate id %d", category.ID)
		}
		if reason != "" {
			logging.Warn("Dropped invalid category entry", "index", i, "reason", reason)
			continue
		}
		seen[category.ID] = true
		catalog.Categories = append(catalog.Categories, category)
	}

	catalog.Stats = catalogStats(obj["stats"])

	return catalog, nil
}

// ValidateSearch validates a search reply. query is the caller's original
// search string; limit caps the returned items.
func (v *SchemaValidator) ValidateSearch(candidate, query string, limit int) (entities.SearchResultSet, error) {
	obj, err := parseObject(candidate)
	if err != nil {
		return entities.SearchResultSet{}, err
	}

	result := entities.SearchResultSet{Query: query, Items: []entities.DrugSummary{}}

	var rawDrugs []any
	if drugs, present := lookup(obj, "drugs"); present {
		list, isList := drugs.([]any)
		if !isList {
			return entities.SearchResultSet{}, shapeMismatch(
				fmt.Sprintf("field \"drugs\" must be a list, got %s", typeName(drugs)), candidate)
		}
		rawDrugs = list
	}

	for i, raw := range rawDrugs {
		item, reason := drugSummaryEntry(raw, i+1)
		if reason != "" {
			logging.Warn("Dropped invalid search entry", "query", query, "index", i, "reason", reason)
			continue
		}
		result.Items = append(result.Items, item)
	}

	if capped := prompt.ClampLimit(limit); len(result.Items) > capped {
		result.Items = result.Items[:capped]
	}

	// No drugs list means nothing was found, whatever total claims
	if rawDrugs == nil {
		return result, nil
	}

	result.ReportedTotal = len(rawDrugs)
	if total, ok := integer(obj["total"]); ok && total >= 0 {
		result.ReportedTotal = total
	}
	if result.ReportedTotal < len(result.Items) {
		result.ReportedTotal = len(result.Items)
	}

	return result, nil
}

// categoryEntry converts one catalog entry; a non-empty reason means the entry is dropped.
func categoryEntry(raw any) (entities.CategorySummary, string) {
	obj, isObject := raw.(object)
	if !isObject {
		return entities.CategorySummary{}, "entry is " + typeName(raw)
	}

	id, ok := integer(obj["id"])
	if !ok || id <= 0 {
		return entities.CategorySummary{}, "missing or invalid id"
	}

	name, ok, err := scalarText(obj, "name")
	if err != nil || !ok {
		return entities.CategorySummary{}, "missing name"
	}

	category := entities.CategorySummary{
		ID:            id,
		Name:          name,
		ColorToken:    entities.DefaultColorToken,
		IconGlyph:     entities.DefaultIconGlyph,
		Subcategories: lenientStringList(obj, "subcategories", "sub"),
	}

	if count, ok := integer(obj["count"]); ok && count >= 0 {
		category.Count = count
	}
	if color, ok, err := scalarText(obj, "colorToken", "color"); err == nil && ok {
		category.ColorToken = color
	}
	if icon, ok, err := scalarText(obj, "iconGlyph", "icon"); err == nil && ok {
		category.IconGlyph = icon
	}

	return category, ""
}

func catalogStats(raw any) entities.CatalogStats {
	stats := entities.CatalogStats{}
	obj, isObject := raw.(object)
	if !isObject {
		return stats
	}

	counter := func(key string) entities.Counter {
		if n, ok := integer(obj[key]); ok && n >= 0 {
			return entities.Count(n)
		}
		return entities.UnknownCount
	}

	stats.TotalDrugs = counter("totalDrugs")
	stats.TotalCategories = counter("totalCategories")
	stats.TotalSubCategories = counter("totalSubCategories")
	stats.TotalManufacturers = counter("totalManufacturers")
	return stats
}

// drugSummaryEntry converts one search entry; position is used as the id
// when the provider did not give a usable one.
func drugSummaryEntry(raw any, position int) (entities.DrugSummary, string) {
	obj, isObject := raw.(object)
	if !isObject {
		return entities.DrugSummary{}, "entry is " + typeName(raw)
	}

	name, ok, err := scalarText(obj, "name")
	if err != nil {
		return entities.DrugSummary{}, err.Error()
	}
	if !ok {
		return entities.DrugSummary{}, "missing name"
	}

	item := entities.DrugSummary{ID: position, Name: name}
	if id, ok := integer(obj["id"]); ok && id > 0 {
		item.ID = id
	}

	defaulted := []struct {
		dst *string
		key string
		def string
	}{
		{&item.EnglishName, "englishName", entities.Unspecified},
		{&item.Category, "category", entities.Unspecified},
		{&item.SubCategory, "subCategory", entities.Unspecified},
		{&item.Dosage, "dosage", entities.Unspecified},
		{&item.Form, "form", entities.Unspecified},
		{&item.Usage, "usage", ""},
	}
	for _, f := range defaulted {
		s, present, err := scalarText(obj, f.key)
		if err != nil {
			return entities.DrugSummary{}, err.Error()
		}
		if !present {
			s = f.def
		}
		*f.dst = s
	}

	for _, f := range []struct {
		dst **string
		key string
	}{
		{&item.Manufacturer, "manufacturer"},
		{&item.Price, "price"},
	} {
		s, present, err := scalarText(obj, f.key)
		if err != nil {
			return entities.DrugSummary{}, err.Error()
		}
		if present {
			*f.dst = &s
		}
	}

	return item, ""
}

// parseObject decodes candidate and requires a single top-level JSON object.
func parseObject(candidate string) (object, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, malformed(err, candidate)
	}

	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, malformed(err, candidate)
	}

	obj, isObject := value.(object)
	if !isObject {
		return nil, shapeMismatch("top-level value must be an object, got "+typeName(value), candidate)
	}
	return obj, nil
}

func malformed(err error, candidate string) error {
	return &apperrors.ValidationError{
		Kind:    apperrors.MalformedJSON,
		Detail:  err.Error(),
		Snippet: apperrors.Truncate(candidate, snippetSize),
	}
}

func shapeMismatch(detail, candidate string) error {
	return &apperrors.ValidationError{
		Kind:    apperrors.ShapeMismatch,
		Detail:  detail,
		Snippet: apperrors.Truncate(candidate, snippetSize),
	}
}

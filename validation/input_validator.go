// Package validation guards user input and turns provider payloads into
// trusted domain values.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/prompt"
	"golang.org/x/text/unicode/norm"
)

// Pre-compiled once at package initialization
var (
	// Letters and marks of any script (Persian included), digits, ZWNJ and the punctuation drug names use
	inputRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s\x{200C}\-\.\+'()/،,%&؟٪]+$`)

	// strings.Contains is much faster than regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"' or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(",
		"`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

// Compile-time check
var _ interfaces.InputValidator = (*InputValidatorImpl)(nil)

// InputValidatorImpl validates raw user input before it is put into a prompt.
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() *InputValidatorImpl {
	return &InputValidatorImpl{}
}

// ValidateInput checks a drug name, category or search query.
func (v *InputValidatorImpl) ValidateInput(input string) error {
	input = strings.TrimSpace(norm.NFC.String(input))

	if input == "" {
		return &apperrors.InputError{Field: "query", Reason: "must not be empty"}
	}

	if utf8.RuneCountInString(input) > 200 {
		return &apperrors.InputError{Field: "query", Reason: "longer than 200 characters"}
	}

	lower := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return &apperrors.InputError{Field: "query", Reason: "contains forbidden characters"}
		}
	}

	if !inputRegex.MatchString(input) {
		return &apperrors.InputError{Field: "query", Reason: "contains unsupported characters"}
	}

	return nil
}

// ValidateLimit parses an optional limit parameter. An empty string means the default.
func (v *InputValidatorImpl) ValidateLimit(raw string, defaultLimit int) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &apperrors.InputError{Field: "limit", Reason: "must be a number"}
	}

	if limit < prompt.MinSearchLimit || limit > prompt.MaxSearchLimit {
		return 0, &apperrors.InputError{
			Field:  "limit",
			Reason: fmt.Sprintf("must be between %d and %d", prompt.MinSearchLimit, prompt.MaxSearchLimit),
		}
	}

	return limit, nil
}

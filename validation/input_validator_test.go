package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/giygas/drugs-api/apperrors"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"persian name", "آسپرین", false},
		{"persian with zwnj", "آنتی‌بیوتیک", false},
		{"english name", "Acetaminophen 500", false},
		{"mixed with punctuation", "ویتامین D3 (1000 IU)", false},
		{"strength percent", "هیدروکورتیزون 1%", false},
		{"persian percent", "کرم هیدروکورتیزون ۱٪", false},
		{"combination", "استامینوفن & کدئین", false},
		{"persian question", "داروی سرماخوردگی چیست؟", false},
		{"encoded traversal", "%2e%2e/etc", true},
		{"empty", "", true},
		{"spaces only", "   ", true},
		{"too long", strings.Repeat("ب", 201), true},
		{"script tag", "<script>alert(1)</script>", true},
		{"sql comment", "aspirin -- drop", true},
		{"path traversal", "../etc/passwd", true},
		{"shell substitution", "$(rm -rf)", true},
		{"semicolon", "a;b", true},
	}

	v := NewInputValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateInput(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var inputErr *apperrors.InputError
				if !errors.As(err, &inputErr) {
					t.Errorf("expected InputError, got %T", err)
				}
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 20, false},
		{"1", 1, false},
		{"100", 100, false},
		{"0", 0, true},
		{"101", 0, true},
		{"ten", 0, true},
	}

	v := NewInputValidator()
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := v.ValidateLimit(tt.raw, 20)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLimit(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateLimit(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

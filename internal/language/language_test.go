package language

import (
	"errors"
	"reflect"
	"testing"

	"autosub/internal/services"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"en", "en", false},
		{" EN ", "en", false},
		{"he", "he", false},
		{"iw", "iw", false}, // legacy code accepted via alias table
		{"in", "in", false},
		{"pt-BR", "pt-br", false},
		{"", "", true},
		{"!!", "", true},
		{"not a language", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) expected error", tt.input)
				}
				if !errors.Is(err, services.ErrValidation) {
					t.Errorf("error should wrap ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeListDeduplicates(t *testing.T) {
	got, err := NormalizeList([]string{"he", "EN", "he", "ru"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"he", "en", "ru"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList = %v, want %v", got, want)
	}
}

func TestAliasesLiteralFirst(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"he", []string{"he", "iw"}},
		{"iw", []string{"iw", "he"}},
		{"yi", []string{"yi", "ji"}},
		{"en", []string{"en"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Aliases(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Aliases(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct{ input, want string }{
		{"iw", "he"},
		{"he", "he"},
		{"in", "id"},
		{"en", "en"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.input); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "eng"},
		{"he", "heb"},
		{"iw", "heb"}, // both Hebrew aliases tag identically
		{"eng", "eng"},
		{"xy", "und"},
		{"", "und"},
	}
	for _, tt := range tests {
		if got := ToISO3(tt.input); got != tt.want {
			t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "English"},
		{"iw", "Hebrew"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractFromTags(t *testing.T) {
	if got := ExtractFromTags(map[string]string{"language": "ENG"}); got != "eng" {
		t.Errorf("ExtractFromTags = %q, want eng", got)
	}
	if got := ExtractFromTags(nil); got != "" {
		t.Errorf("ExtractFromTags(nil) = %q, want empty", got)
	}
}

package tokenizer

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Motion To Compel", "motion to compel"},
		{"punctuation collapses", "contract-review & drafting!", "contract review drafting"},
		{"multiple separators", "a  --  b", "a b"},
		{"leading and trailing junk", "  ...hello...  ", "hello"},
		{"digits kept", "rule 12(b)(6)", "rule 12 b 6"},
		{"empty", "", ""},
		{"only punctuation", "?!--", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"duplicates kept", "draft draft a draft", []string{"draft", "draft", "a", "draft"}},
		{"mixed case and punctuation", "Deposition-Prep!", []string{"deposition", "prep"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUniqueTokens(t *testing.T) {
	got := UniqueTokens("Motion to compel, motion to strike")
	want := []string{"motion", "to", "compel", "strike"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueTokens = %v, want %v", got, want)
	}

	if got := UniqueTokens("!!!"); got != nil {
		t.Errorf("UniqueTokens on punctuation-only input = %v, want nil", got)
	}
}

func TestNormalizeAgreesWithTokenize(t *testing.T) {
	// Query-side and index-side tokenisation must see identical terms or
	// lookups silently miss.
	inputs := []string{
		"Contract Review & Drafting",
		"assess: strengths/weaknesses",
		"MOTION   to   Compel",
	}
	for _, in := range inputs {
		norm := Normalize(in)
		joined := ""
		for i, tok := range Tokenize(in) {
			if i > 0 {
				joined += " "
			}
			joined += tok
		}
		if norm != joined {
			t.Errorf("Normalize(%q) = %q but joined tokens = %q", in, norm, joined)
		}
	}
}

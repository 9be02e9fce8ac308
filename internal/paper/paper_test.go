package paper

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"nlp, , security;  ml", []string{"nlp", "security", "ml"}},
		{"", []string{}},
		{" ;, ", []string{}},
		{"b, a, b", []string{"b", "a", "b"}},
		{"graph neural nets", []string{"graph neural nets"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateScore(t *testing.T) {
	valid := []float64{0, 2.5, 4, 5}
	for _, s := range valid {
		if err := ValidateScore(s); err != nil {
			t.Errorf("ValidateScore(%v) error = %v", s, err)
		}
	}

	var zero float64
	invalid := []float64{-0.01, 5.01, 100, zero / zero}
	for _, s := range invalid {
		if err := ValidateScore(s); !errors.Is(err, ErrInvalidScore) {
			t.Errorf("ValidateScore(%v) error = %v, want ErrInvalidScore", s, err)
		}
	}
}

func TestFormatScore(t *testing.T) {
	if got := FormatScore(4); got != "4.00" {
		t.Errorf("FormatScore(4) = %q, want 4.00", got)
	}
	if got := FormatScore(3.456); got != "3.46" {
		t.Errorf("FormatScore(3.456) = %q, want 3.46", got)
	}
}

func TestYear_JSON(t *testing.T) {
	tests := []struct {
		year Year
		want string
	}{
		{"2023", `2023`},
		{UnknownYear, `"unknown"`},
		{"2023a", `"2023a"`},
		{"0123", `"0123"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.year), func(t *testing.T) {
			data, err := json.Marshal(tt.year)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal(%q) = %s, want %s", tt.year, data, tt.want)
			}

			var back Year
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", data, err)
			}
			if back != tt.year {
				t.Errorf("Unmarshal(%s) = %q, want %q", data, back, tt.year)
			}
		})
	}
}

func TestYear_UnmarshalRejectsObjects(t *testing.T) {
	var y Year
	if err := json.Unmarshal([]byte(`{"year":1}`), &y); err == nil {
		t.Error("Unmarshal(object) should fail")
	}
}

func TestYear_Predicates(t *testing.T) {
	if !Year("1999").IsNumeric() || Year("").IsNumeric() || Year("19x9").IsNumeric() {
		t.Error("IsNumeric() wrong")
	}
	if Year("").Known() || UnknownYear.Known() || !Year("1999").Known() {
		t.Error("Known() wrong")
	}
}

func TestEntry_Normalize(t *testing.T) {
	e := Entry{ID: "x", Summary: strings.Repeat("요", MaxSummaryLen+10)}.Normalize()

	if e.Year != UnknownYear {
		t.Errorf("Year = %q, want %q", e.Year, UnknownYear)
	}
	if e.Tags == nil || e.Authors == nil {
		t.Error("Normalize() left nil slices")
	}
	if n := len([]rune(e.Summary)); n != MaxSummaryLen {
		t.Errorf("Summary has %d runes, want %d", n, MaxSummaryLen)
	}
}

func TestEntry_JSONFieldNames(t *testing.T) {
	e := Entry{ID: "2023-Smith-X", Year: "2023", Scores: Scores{Overall: 4.5}}.Normalize()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, want := range []string{`"id":"2023-Smith-X"`, `"year":2023`, `"scores":{"overall":4.5}`, `"tags":[]`, `"pdf_sha256":""`, `"bibtex_key":""`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal() = %s, missing %s", data, want)
		}
	}
}

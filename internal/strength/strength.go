// Package strength rates passwords against six independent criteria.
package strength

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SymbolSet is the set of characters counted as symbols.
const SymbolSet = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// MaxScore is the highest possible score.
const MaxScore = 6

// Category is the coarse strength rating derived from the score.
type Category int

const (
	Weak Category = iota
	Fair
	Good
	Strong
)

var categoryNames = [...]string{"Weak", "Fair", "Good", "Strong"}

// String returns the display name of c.
func (c Category) String() string {
	if c < Weak || c > Strong {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Color returns the hex colour used to display c.
func (c Category) Color() string {
	switch c {
	case Fair:
		return "#f39c12"
	case Good:
		return "#f1c40f"
	case Strong:
		return "#27ae60"
	default:
		return "#e74c3c"
	}
}

// MarshalText encodes c by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(b []byte) error {
	for i, name := range categoryNames {
		if strings.EqualFold(name, string(b)) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown strength category %q", b)
}

// Categorize maps a score to its category: 0-2 Weak, 3-4 Fair, 5 Good, 6 Strong.
func Categorize(score int) Category {
	switch {
	case score <= 2:
		return Weak
	case score <= 4:
		return Fair
	case score == 5:
		return Good
	default:
		return Strong
	}
}

// criterion is one scoring predicate.
type criterion struct {
	hint string
	met  func(pw string, n int) bool
}

var criteria = []criterion{
	{"use at least 8 characters", func(_ string, n int) bool { return n >= 8 }},
	{"use at least 12 characters", func(_ string, n int) bool { return n >= 12 }},
	{"add an uppercase letter", func(pw string, _ int) bool { return containsRange(pw, 'A', 'Z') }},
	{"add a lowercase letter", func(pw string, _ int) bool { return containsRange(pw, 'a', 'z') }},
	{"add a digit", func(pw string, _ int) bool { return containsRange(pw, '0', '9') }},
	{"add a symbol", func(pw string, _ int) bool { return strings.ContainsAny(pw, SymbolSet) }},
}

func containsRange(s string, lo, hi rune) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= lo && r <= hi }) >= 0
}

// Report is the full outcome of scoring a password.
type Report struct {
	Category Category `json:"strength"`
	Score    int      `json:"score"`

	// Hints lists the unmet criteria, in evaluation order.
	Hints []string `json:"hints,omitempty"`
}

// Evaluate scores password and lists the criteria it misses.
// Length is counted in characters, not bytes.
func Evaluate(password string) Report {
	n := utf8.RuneCountInString(password)

	var r Report
	for _, c := range criteria {
		if c.met(password, n) {
			r.Score++
		} else {
			r.Hints = append(r.Hints, c.hint)
		}
	}
	r.Category = Categorize(r.Score)
	return r
}

// Score returns the category and numeric score (0..6) of password.
func Score(password string) (Category, int) {
	r := Evaluate(password)
	return r.Category, r.Score
}

// Package generator draws random passwords from a character pool assembled
// from enabled character classes minus the requested exclusions.
package generator

import (
	"math/rand/v2"
	"strings"

	"github.com/hpungsan/passgen/internal/errors"
)

// Character classes, in the canonical order they are added to the pool.
const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Exclusion sets.
const (
	// Similar holds characters that are easy to confuse visually.
	Similar = "l1IO0"

	// Ambiguous holds characters that are hard to transcribe or clash with
	// shell and markup syntax. Only some of them occur in Symbols.
	Ambiguous = "{}[]()/\\|`~"
)

// Options configures a single generation.
type Options struct {
	Length           int
	Uppercase        bool
	Lowercase        bool
	Numbers          bool
	Symbols          bool
	ExcludeSimilar   bool
	ExcludeAmbiguous bool
}

// DefaultOptions returns 16 characters with every class enabled and no exclusions.
func DefaultOptions() Options {
	return Options{
		Length:    16,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// Pool returns the effective character pool for o.
// The result is deterministic; an empty string means no password can be drawn.
func (o Options) Pool() string {
	return o.filter(o.classes())
}

// classes concatenates the enabled character classes.
func (o Options) classes() string {
	var sb strings.Builder
	if o.Uppercase {
		sb.WriteString(Uppercase)
	}
	if o.Lowercase {
		sb.WriteString(Lowercase)
	}
	if o.Numbers {
		sb.WriteString(Digits)
	}
	if o.Symbols {
		sb.WriteString(Symbols)
	}
	return sb.String()
}

// filter removes excluded characters from pool.
func (o Options) filter(pool string) string {
	if o.ExcludeSimilar {
		pool = without(pool, Similar)
	}
	if o.ExcludeAmbiguous {
		pool = without(pool, Ambiguous)
	}
	return pool
}

func without(pool, excluded string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(excluded, r) {
			return -1
		}
		return r
	}, pool)
}

// Generator draws passwords using its own random source.
// A Generator is not safe for concurrent use unless built from the default source.
type Generator struct {
	intN func(n int) int
}

// New returns a Generator backed by src. Use a seeded source for reproducible output.
func New(src rand.Source) *Generator {
	r := rand.New(src)
	return &Generator{intN: r.IntN}
}

// defaultGenerator uses the process-wide source, which is safe for concurrent use.
var defaultGenerator = &Generator{intN: rand.IntN}

// Generate draws a password with the process-wide random source.
func Generate(opts Options) (string, error) {
	return defaultGenerator.Generate(opts)
}

// Generate draws opts.Length characters independently and uniformly, with
// replacement, from opts.Pool().
//
// The source is math/rand, not crypto/rand: output is uniform but not suitable
// where unpredictability against an attacker is required.
func (g *Generator) Generate(opts Options) (string, error) {
	if opts.Length < 1 {
		return "", errors.NewInvalidOptions("password length must be at least 1")
	}

	pool := opts.Pool()
	if pool == "" {
		return "", errors.NewInvalidOptions("no characters left to choose from: select at least one character type")
	}

	buf := make([]byte, opts.Length)
	for i := range buf {
		buf[i] = pool[g.intN(len(pool))]
	}
	return string(buf), nil
}

// Package refnum generates public reference numbers of the form
// PREFIX-TIMEPART-RANDOMPART, e.g. MDT-482913-K7Q2ZD.
//
// TIMEPART is the low six digits of the Unix millisecond clock and
// RANDOMPART is drawn from crypto/rand. Uniqueness is not guaranteed here;
// the store's unique constraint is the source of truth.
package refnum

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultPrefix = "MDT"
	timeDigits    = 6
	randomLength  = 6
	alphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	pattern       = regexp.MustCompile(`^[A-Z]{2,8}-[0-9]{6}-[A-Z0-9]{6}$`)
	prefixPattern = regexp.MustCompile(`^[A-Z]{2,8}$`)
)

// Generator produces reference numbers. The zero value is not usable; call New.
type Generator struct {
	prefix string
	random io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom replaces the entropy source. Tests use it for determinism.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

// New builds a Generator. An empty prefix falls back to DefaultPrefix.
func New(prefix string, opts ...Option) *Generator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultPrefix
	}
	g := &Generator{prefix: prefix, random: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh reference number stamped with now.
func (g *Generator) Generate(now time.Time) (string, error) {
	suffix, err := g.randomPart()
	if err != nil {
		return "", fmt.Errorf("generate reference suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", g.prefix, timePart(now), suffix), nil
}

// Ensure returns existing unchanged when it is already set and generates a
// new reference otherwise.
func (g *Generator) Ensure(existing string, now time.Time) (string, error) {
	if existing != "" {
		return existing, nil
	}
	return g.Generate(now)
}

func timePart(now time.Time) string {
	ms := now.UnixMilli() % 1_000_000
	if ms < 0 {
		ms = -ms
	}
	return fmt.Sprintf("%0*d", timeDigits, ms)
}

func (g *Generator) randomPart() (string, error) {
	var b strings.Builder
	b.Grow(randomLength)
	max := big.NewInt(int64(len(alphabet)))
	for range randomLength {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Valid reports whether s looks like a reference number. Lookups use it to
// reject garbage before touching storage.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// ValidPrefix reports whether prefix, once normalized, yields references
// that Valid accepts.
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(Normalize(prefix))
}

// Normalize upper-cases and trims user-typed references.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	numberPrefix     = "ORD"
	numberTimeLayout = "20060102150405"
	numberSuffixLen  = 8
)

// FormatNumber renders an order number from a timestamp and random bytes:
// "ORD" + yyyyMMddHHmmss (UTC) + 8 upper-case hex characters.
func FormatNumber(at time.Time, random uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(random.String(), "-", ""))[:numberSuffixLen]
	return numberPrefix + at.UTC().Format(numberTimeLayout) + suffix
}

// NumberGenerator produces human-legible order numbers. Uniqueness is
// enforced by the repository; callers retry with a fresh number on collision.
type NumberGenerator struct {
	now    func() time.Time
	random func() uuid.UUID
}

// NewNumberGenerator returns a generator backed by the wall clock and uuid v4.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{now: time.Now, random: uuid.New}
}

// WithClock overrides the time source for deterministic testing.
func (g *NumberGenerator) WithClock(now func() time.Time) *NumberGenerator {
	if now != nil {
		g.now = now
	}
	return g
}

// WithRandom overrides the random source for deterministic testing.
func (g *NumberGenerator) WithRandom(random func() uuid.UUID) *NumberGenerator {
	if random != nil {
		g.random = random
	}
	return g
}

// Next returns a fresh order number.
func (g *NumberGenerator) Next() string {
	return FormatNumber(g.now(), g.random())
}

// Package patterns groups build errors into recurring patterns.
package patterns

import (
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

const (
	// MaxExamples is the number of original messages kept per pattern
	MaxExamples = 3
	// NewWindow is how recently a pattern must first appear to count as new
	NewWindow = 24 * time.Hour
)

// ErrorPattern is a group of errors sharing one normalized form
type ErrorPattern struct {
	ID        string    `json:"id"`
	Pattern   string    `json:"pattern"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	Examples  []string  `json:"examples"`
	IsNew     bool      `json:"isNew"`
}

// Analyzer recomputes error patterns from a build history.
//
// Without a Ledger every pattern is stamped with the analysis time, so
// each one is new on every pass. With a Ledger, FirstSeen is the time the
// pattern was first observed by any earlier pass.
type Analyzer struct {
	Now    func() time.Time
	Ledger *Ledger
}

// NewAnalyzer creates an analyzer without a ledger
func NewAnalyzer() *Analyzer {
	return &Analyzer{Now: time.Now}
}

// Fingerprint returns the short stable id of a normalized pattern
func Fingerprint(pattern string) string {
	sum := blake3.Sum256([]byte(pattern))
	return hex.EncodeToString(sum[:6])
}

// Analyze groups every error of every build by normalized pattern. The
// result is ordered by count, most frequent first; ties keep the order
// in which patterns first occur in the history.
func (a *Analyzer) Analyze(builds []domain.BuildRecord) []ErrorPattern {
	now := time.Now().UTC()
	if a.Now != nil {
		now = a.Now().UTC()
	}

	byPattern := map[string]*ErrorPattern{}
	var order []string

	for _, b := range builds {
		for _, msg := range b.Errors {
			if strings.TrimSpace(msg) == "" {
				continue
			}
			key := Normalize(msg)
			p, ok := byPattern[key]
			if !ok {
				p = &ErrorPattern{
					ID:        Fingerprint(key),
					Pattern:   key,
					FirstSeen: now,
					LastSeen:  now,
					Examples:  []string{},
				}
				byPattern[key] = p
				order = append(order, key)
			}
			p.Count++
			if len(p.Examples) < MaxExamples && !contains(p.Examples, msg) {
				p.Examples = append(p.Examples, msg)
			}
		}
	}

	out := make([]ErrorPattern, 0, len(order))
	for _, key := range order {
		p := byPattern[key]
		if a.Ledger != nil {
			p.FirstSeen = a.Ledger.Observe(p.ID, p.Pattern, now)
		}
		p.IsNew = now.Sub(p.FirstSeen) < NewWindow
		out = append(out, *p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// NewPatterns filters the patterns flagged as new
func NewPatterns(patterns []ErrorPattern) []ErrorPattern {
	var out []ErrorPattern
	for _, p := range patterns {
		if p.IsNew {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

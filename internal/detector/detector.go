// Package detector classifies inbound requests by User-Agent signature.
package detector

import (
	"sort"
	"strings"
)

// Detector matches User-Agent strings against a fixed signature table.
// Matching is case-sensitive substring containment, so a signature embedded
// anywhere in a product-token chain still matches. The zero-value Detector
// matches nothing.
type Detector struct {
	names    []string
	patterns []string
}

// New builds a Detector from a name→pattern table. The table is copied and
// ordered by name so classification is deterministic regardless of map
// iteration order.
func New(signatures map[string]string) *Detector {
	names := make([]string, 0, len(signatures))
	for name := range signatures {
		names = append(names, name)
	}
	sort.Strings(names)

	patterns := make([]string, len(names))
	for i, name := range names {
		patterns[i] = signatures[name]
	}
	return &Detector{names: names, patterns: patterns}
}

// Match reports whether userAgent belongs to a known automated content agent,
// returning the name of the first matching signature. An empty or absent
// User-Agent never matches.
func (d *Detector) Match(userAgent string) (string, bool) {
	if userAgent == "" {
		return "", false
	}
	for i, pattern := range d.patterns {
		if strings.Contains(userAgent, pattern) {
			return d.names[i], true
		}
	}
	return "", false
}

// IsAutomatedAgent reports whether userAgent belongs to a known automated
// content agent.
func (d *Detector) IsAutomatedAgent(userAgent string) bool {
	_, ok := d.Match(userAgent)
	return ok
}

// Package pattern generates random swara practice sequences from a
// raga's notes. Patterns use only the notes they are given; nothing is
// invented or transposed.
package pattern

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// DefaultLengths are the practice pattern sizes produced per raga.
var DefaultLengths = []int{5, 6, 7, 8}

// Generate produces one shuffled pattern per requested length. Input
// notes are deduplicated preserving order; when the scale is shorter
// than a pattern, shuffled copies of the scale are concatenated until
// the length is reached.
func Generate(notes []string, lengths []int, rng *rand.Rand) map[int]string {
	notes = dedupe(notes)
	if len(lengths) == 0 {
		lengths = DefaultLengths
	}

	patterns := make(map[int]string, len(lengths))
	if len(notes) == 0 {
		return patterns
	}

	for _, length := range lengths {
		if length <= 0 {
			continue
		}
		var seq []string
		if len(notes) >= length {
			seq = shuffled(notes, rng)[:length]
		} else {
			for len(seq) < length {
				seq = append(seq, shuffled(notes, rng)...)
			}
			seq = seq[:length]
		}
		patterns[length] = strings.Join(seq, " ")
	}
	return patterns
}

// Format renders patterns in the fixed plain-text shape the pattern
// agent emits, ordered by length:
//
//	5-swars: s r g m p
//	6-swars: m g r s n d
func Format(patterns map[int]string) string {
	lengths := make([]int, 0, len(patterns))
	for l := range patterns {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	lines := make([]string, 0, len(lengths))
	for _, l := range lengths {
		lines = append(lines, fmt.Sprintf("%d-swars: %s", l, patterns[l]))
	}
	return strings.Join(lines, "\n")
}

func dedupe(notes []string) []string {
	seen := make(map[string]struct{}, len(notes))
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func shuffled(notes []string, rng *rand.Rand) []string {
	out := make([]string, len(notes))
	copy(out, notes)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

package pattern

import (
	"math/rand"
	"strings"
	"testing"
)

var hamsadhwani = []string{"s", "r", "g", "p", "n", "S", "N", "P", "G", "R"}

func TestGenerateLengths(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	patterns := Generate(hamsadhwani, DefaultLengths, rng)

	for _, l := range DefaultLengths {
		p, ok := patterns[l]
		if !ok {
			t.Fatalf("missing pattern of length %d", l)
		}
		if got := len(strings.Fields(p)); got != l {
			t.Fatalf("pattern %q has %d notes, want %d", p, got, l)
		}
	}
}

func TestGenerateUsesOnlyGivenNotes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	allowed := map[string]struct{}{}
	for _, n := range hamsadhwani {
		allowed[n] = struct{}{}
	}

	for _, p := range Generate(hamsadhwani, DefaultLengths, rng) {
		for _, n := range strings.Fields(p) {
			if _, ok := allowed[n]; !ok {
				t.Fatalf("pattern note %q is not in the raga", n)
			}
		}
	}
}

func TestGenerateExtendsShortScale(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	patterns := Generate([]string{"s", "r", "g"}, []int{8}, rng)

	p := patterns[8]
	if got := len(strings.Fields(p)); got != 8 {
		t.Fatalf("pattern %q has %d notes, want 8", p, got)
	}
}

func TestGenerateDedupesNotes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	patterns := Generate([]string{"s", "s", "r", "r", "g"}, []int{3}, rng)

	notes := strings.Fields(patterns[3])
	seen := map[string]int{}
	for _, n := range notes {
		seen[n]++
	}
	for n, c := range seen {
		if c > 1 {
			t.Fatalf("note %q repeated %d times in a pattern shorter than the scale", n, c)
		}
	}
}

func TestGenerateEmptyNotes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	if got := Generate(nil, DefaultLengths, rng); len(got) != 0 {
		t.Fatalf("expected no patterns for empty scale, got %v", got)
	}
}

func TestFormat(t *testing.T) {
	out := Format(map[int]string{6: "m g r s n d", 5: "s r g m p"})
	want := "5-swars: s r g m p\n6-swars: m g r s n d"
	if out != want {
		t.Fatalf("Format = %q, want %q", out, want)
	}
}

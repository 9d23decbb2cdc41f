package naming

import (
	"math"
	"strconv"
	"strings"
)

// MaxWords bounds the base words used for permutations, repeats included.
// Words past the limit are dropped; 8 words already give 40320 orderings.
const MaxWords = 8

// Generate returns count distinct names built from words. Names come from, in
// order: permutations of the words, a modifier prefix, a modifier suffix, a
// prefix and suffix pair, and finally numbered fallbacks. The result always
// has exactly count entries when count > 0.
func Generate(words []string, count int) []string {
	if count <= 0 {
		return nil
	}

	base := normalize(words)
	mods := modifiersExcluding(base)
	perms := permutations(base)

	g := &emitter{
		names: make([]string, 0, count),
		seen:  make(map[string]struct{}, count),
		want:  count,
	}

	// Base permutations
	for _, p := range perms {
		for _, sep := range Separators {
			if g.emit(strings.Join(p, sep)) {
				return g.names
			}
		}
	}

	// Modifier prefix
	for _, m := range mods {
		for _, p := range perms {
			for _, sep := range Separators {
				if g.emit(m + sep + strings.Join(p, sep)) {
					return g.names
				}
			}
		}
	}

	// Modifier suffix
	for _, m := range mods {
		for _, p := range perms {
			for _, sep := range Separators {
				if g.emit(strings.Join(p, sep) + sep + m) {
					return g.names
				}
			}
		}
	}

	// Prefix and suffix
	for _, m1 := range mods {
		for _, m2 := range mods {
			if m1 == m2 {
				continue
			}
			for _, p := range perms {
				for _, sep := range Separators {
					if g.emit(m1 + sep + strings.Join(p, sep) + sep + m2) {
						return g.names
					}
				}
			}
		}
	}

	// Numbered fallback
	stem := strings.Join(base, "-")
	for n := 1; ; n++ {
		if g.emit(stem + "_" + strconv.Itoa(n)) {
			return g.names
		}
	}
}

type emitter struct {
	names []string
	seen  map[string]struct{}
	want  int
}

// emit appends name unless already present and reports whether the target
// count has been reached
func (g *emitter) emit(name string) bool {
	if _, dup := g.seen[name]; !dup {
		g.seen[name] = struct{}{}
		g.names = append(g.names, name)
	}
	return len(g.names) >= g.want
}

// normalize trims and lowercases words, drops empty ones and keeps at most
// MaxWords of them
func normalize(words []string) []string {
	out := make([]string, 0, min(len(words), MaxWords))
	for _, w := range words {
		if len(out) == MaxWords {
			break
		}
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

// NormalizeWords returns the words Generate actually permutes
func NormalizeWords(words []string) []string {
	return normalize(words)
}

func modifiersExcluding(base []string) []string {
	skip := make(map[string]struct{}, len(base))
	for _, w := range base {
		skip[w] = struct{}{}
	}
	var out []string
	for _, m := range Modifiers() {
		if _, ok := skip[strings.ToLower(m)]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// permutations lists every ordering of words, varying the last positions
// fastest. An empty input has no permutations.
func permutations(words []string) [][]string {
	if len(words) == 0 {
		return nil
	}
	var out [][]string
	used := make([]bool, len(words))
	current := make([]string, 0, len(words))

	var walk func()
	walk = func() {
		if len(current) == len(words) {
			out = append(out, append([]string(nil), current...))
			return
		}
		for i, w := range words {
			if used[i] {
				continue
			}
			used[i] = true
			current = append(current, w)
			walk()
			current = current[:len(current)-1]
			used[i] = false
		}
	}
	walk()
	return out
}

// EstimateCombinations is a capacity hint for n keywords:
// 2n! + 2n!·M + 2n!·M + 2n!·M·(M-1) with M the vocabulary size. It ignores
// exclusions and collisions. Results that do not fit an int saturate at
// math.MaxInt.
func EstimateCombinations(n int) int {
	if n < 0 {
		return 0
	}
	m := ModifierCount()

	base := 2
	for i := 2; i <= n; i++ {
		var ok bool
		if base, ok = mulSat(base, i); !ok {
			return math.MaxInt
		}
	}

	terms := []int{1, m, m, m * (m - 1)}
	total := 0
	for _, k := range terms {
		v, ok := mulSat(base, k)
		if !ok || total > math.MaxInt-v {
			return math.MaxInt
		}
		total += v
	}
	return total
}

func mulSat(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return math.MaxInt, false
	}
	return a * b, true
}

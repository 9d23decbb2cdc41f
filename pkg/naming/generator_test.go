package naming

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func assertDistinct(t *testing.T, names []string) {
	t.Helper()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Fatalf("Duplicate name %q", n)
		}
		seen[n] = true
	}
}

func TestModifierVocabulary(t *testing.T) {
	if ModifierCount() != 31 {
		t.Errorf("Expected 31 modifiers, got %d", ModifierCount())
	}
	mods := Modifiers()
	if mods[0] != "beautiful" || mods[9] != "new" || mods[len(mods)-1] != "stock" {
		t.Errorf("Unexpected vocabulary order: %v", mods)
	}
}

func TestGenerateOrdering(t *testing.T) {
	names := Generate([]string{"sea", "sun"}, 8)
	want := []string{
		"sea-sun", "sea_sun", "sun-sea", "sun_sea",
		"beautiful-sea-sun", "beautiful_sea_sun", "beautiful-sun-sea", "beautiful_sun_sea",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
}

func TestGeneratePhases(t *testing.T) {
	words := []string{"sea", "sun"}
	// 4 base names, then 31 prefixes and 31 suffixes over 2 orderings and 2 separators
	prefixEnd := 4 + 31*4
	suffixEnd := prefixEnd + 31*4

	names := Generate(words, suffixEnd+2)
	assertDistinct(t, names)

	if got := names[prefixEnd-1]; got != "stock_sun_sea" {
		t.Errorf("Expected last prefixed name stock_sun_sea, got %q", got)
	}
	if got := names[prefixEnd]; got != "sea-sun-beautiful" {
		t.Errorf("Expected first suffixed name sea-sun-beautiful, got %q", got)
	}
	if got := names[suffixEnd]; got != "beautiful-sea-sun-amazing" {
		t.Errorf("Expected first double-modifier name beautiful-sea-sun-amazing, got %q", got)
	}
}

func TestGenerateNormalizes(t *testing.T) {
	names := Generate([]string{"  Sea ", "", "SUN"}, 2)
	want := []string{"sea-sun", "sea_sun"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
}

func TestGenerateExcludesKeywordModifiers(t *testing.T) {
	names := Generate([]string{"beautiful", "sea"}, 8)
	for _, n := range names[4:] {
		if strings.HasPrefix(n, "beautiful-beautiful") || strings.HasPrefix(n, "beautiful_beautiful") {
			t.Errorf("Modifier equal to a keyword was used: %q", n)
		}
	}
	if names[4] != "amazing-beautiful-sea" {
		t.Errorf("Expected amazing-beautiful-sea, got %q", names[4])
	}
}

func TestGenerateSingleWord(t *testing.T) {
	first := Generate([]string{"x"}, 5)
	want := []string{"x", "beautiful-x", "beautiful_x", "amazing-x", "amazing_x"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("Expected %v, got %v", want, first)
	}

	for i := 0; i < 3; i++ {
		if again := Generate([]string{"x"}, 5); !reflect.DeepEqual(first, again) {
			t.Fatalf("Generation is not deterministic: %v vs %v", first, again)
		}
	}
}

func TestGenerateNoWords(t *testing.T) {
	names := Generate(nil, 3)
	want := []string{"_1", "_2", "_3"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}

	if got := Generate([]string{" ", "\t"}, 1); got[0] != "_1" {
		t.Errorf("Expected _1 for blank words, got %v", got)
	}
}

func TestGenerateCounts(t *testing.T) {
	for _, count := range []int{1, 2, 17, 500} {
		names := Generate([]string{"december", "turkey"}, count)
		if len(names) != count {
			t.Errorf("Expected %d names, got %d", count, len(names))
		}
		assertDistinct(t, names)
	}

	if got := Generate([]string{"a", "b"}, 0); len(got) != 0 {
		t.Errorf("Expected no names for count 0, got %v", got)
	}
}

func TestGenerateFallback(t *testing.T) {
	// One word: 1 base name + 31*2 prefixed + 31*2 suffixed + 31*30*2 pairs
	exhausted := 1 + 62 + 62 + 1860
	names := Generate([]string{"x"}, exhausted+3)
	assertDistinct(t, names)

	tail := names[exhausted:]
	want := []string{"x_1", "x_2", "x_3"}
	if !reflect.DeepEqual(tail, want) {
		t.Errorf("Expected fallback %v, got %v", want, tail)
	}
}

func TestGenerateMaxWords(t *testing.T) {
	words := strings.Fields("a b c d e f g h i j")
	names := Generate(words, 3)
	want := []string{"a-b-c-d-e-f-g-h", "a_b_c_d_e_f_g_h", "a-b-c-d-e-f-h-g"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}

	// Repeats count toward the limit
	repeated := strings.Fields(strings.Repeat("a ", 12))
	if got := normalize(repeated); len(got) != MaxWords {
		t.Errorf("Expected %d words kept, got %d", MaxWords, len(got))
	}
	names = Generate(repeated, 1)
	if want := []string{"a-a-a-a-a-a-a-a"}; !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
}

func TestPermutations(t *testing.T) {
	got := permutations([]string{"a", "b", "c"})
	want := [][]string{
		{"a", "b", "c"}, {"a", "c", "b"},
		{"b", "a", "c"}, {"b", "c", "a"},
		{"c", "a", "b"}, {"c", "b", "a"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if permutations(nil) != nil {
		t.Error("Expected no permutations for no words")
	}
}

func TestEstimateCombinations(t *testing.T) {
	tests := map[int]int{
		1: 1986,
		2: 3972,
		3: 11916,
	}
	for n, want := range tests {
		if got := EstimateCombinations(n); got != want {
			t.Errorf("EstimateCombinations(%d) = %d, expected %d", n, got, want)
		}
	}

	prev := EstimateCombinations(1)
	for n := 2; n <= 12; n++ {
		cur := EstimateCombinations(n)
		if cur <= prev {
			t.Errorf("Estimate not increasing at %d: %d <= %d", n, cur, prev)
		}
		prev = cur
	}
}

func TestEstimateSaturates(t *testing.T) {
	if got := EstimateCombinations(40); got <= EstimateCombinations(12) {
		t.Errorf("Expected a saturated estimate, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize("december turkey", 25, 20)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(s.Names) != 25 || len(s.Preview) != 20 || s.Remaining != 5 {
		t.Errorf("Unexpected summary sizes: names=%d preview=%d remaining=%d", len(s.Names), len(s.Preview), s.Remaining)
	}
	if !s.Sufficient() || s.Numbered() != 0 {
		t.Errorf("Expected 25 names to fit the estimate %d", s.Estimate)
	}
	if s.Names[0] != "december-turkey" {
		t.Errorf("Expected december-turkey first, got %q", s.Names[0])
	}

	big, err := Summarize("a b", 5000, 20)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if big.Sufficient() || big.Numbered() != 5000-3972 {
		t.Errorf("Expected %d numbered names, got %d", 5000-3972, big.Numbered())
	}
	if !strings.Contains(big.Status(), "numbered") {
		t.Errorf("Unexpected status: %s", big.Status())
	}
}

func TestSummarizeEstimateUsesKeptWords(t *testing.T) {
	s, err := Summarize("a b c d e f g h i j", 3, 3)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(s.Keywords) != MaxWords {
		t.Errorf("Expected %d keywords, got %v", MaxWords, s.Keywords)
	}
	if s.Estimate != EstimateCombinations(MaxWords) {
		t.Errorf("Expected the estimate for %d words, got %d", MaxWords, s.Estimate)
	}
	if !strings.HasPrefix(s.Status(), "8 words") {
		t.Errorf("Unexpected status: %s", s.Status())
	}
}

func TestSummarizeTooFewKeywords(t *testing.T) {
	for _, text := range []string{"", "   ", "single"} {
		if _, err := Summarize(text, 10, 20); !errors.Is(err, ErrTooFewKeywords) {
			t.Errorf("Summarize(%q): expected ErrTooFewKeywords, got %v", text, err)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	words := []string{"december", "turkey", "dinner"}
	for i := 0; i < b.N; i++ {
		Generate(words, 1000)
	}
}

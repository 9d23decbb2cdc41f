package naming

// Separators joins words inside a generated name, tried in this order
var Separators = []string{"-", "_"}

// ModifierCategory is a named group of words combined with user keywords
type ModifierCategory struct {
	Name  string
	Words []string
}

// Vocabulary is the built-in modifier list. Order matters: generation walks
// categories and words exactly as declared.
var Vocabulary = []ModifierCategory{
	{
		Name: "adjectives",
		Words: []string{
			"beautiful", "amazing", "stunning", "gorgeous", "nice",
			"great", "perfect", "lovely", "wonderful",
		},
	},
	{
		Name: "state",
		Words: []string{
			"new", "fresh", "original", "authentic", "unique",
			"classic", "modern", "vintage", "traditional", "famous",
		},
	},
	{
		Name: "seo_suffixes",
		Words: []string{
			"photo", "image", "picture", "pic", "wallpaper",
			"background", "cover", "banner", "hd", "4k", "free", "stock",
		},
	},
}

// Modifiers flattens Vocabulary in declaration order
func Modifiers() []string {
	var out []string
	for _, c := range Vocabulary {
		out = append(out, c.Words...)
	}
	return out
}

// ModifierCount is the total vocabulary size used by EstimateCombinations
func ModifierCount() int {
	n := 0
	for _, c := range Vocabulary {
		n += len(c.Words)
	}
	return n
}

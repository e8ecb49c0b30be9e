package law

import "strings"

// Reference is one recognized statute citation in a piece of text.
type Reference struct {
	Family       string `json:"law_type"`
	Section      string `json:"section"`
	OriginalText string `json:"original_text"`
}

// Detect scans text for statute citations and returns one Reference per
// distinct (family, section) pair, first occurrence wins. Scanning runs in
// registry order, then pattern order, then match position, so output order
// follows the registry rather than document order when citations of several
// families are mixed. Detect is pure and never fails; text with no
// citation-shaped substrings yields nil.
func Detect(text string) []Reference {
	var out []Reference
	seen := make(map[string]struct{})

	for _, fam := range registry {
		for _, re := range fam.Patterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				section := strings.ToUpper(m[1])
				key := fam.Code + ":" + section
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, Reference{
					Family:       fam.Code,
					Section:      section,
					OriginalText: m[0],
				})
			}
		}
	}
	return out
}

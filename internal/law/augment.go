package law

import (
	"fmt"
	"strings"
)

const (
	rule          = "============================================================"
	blockTitle    = "LAW COMPARISON: Old Codes vs New Codes (Effective July 1, 2024)"
	blockFootnote = "Note: The information above compares the old criminal codes with the new Bharatiya laws that replaced them on July 1, 2024."
)

// FormatComparison renders a single comparison as a human-readable entry.
// Omitted provisions render a removal status instead of a mapping arrow so
// the two outcomes are visibly different.
func FormatComparison(c Comparison) string {
	if c.Omitted() {
		return fmt.Sprintf("**%s Section %s** - %s\nStatus: This section has been OMITTED in the new %s\nChanges: %s",
			c.OldFamily, c.OldSection, c.OldTitle, c.NewFamily, c.Changes)
	}
	return fmt.Sprintf("**%s Section %s** -> **%s Section %s**\nOld: %s\nNew: %s\nChanges: %s",
		c.OldFamily, c.OldSection, c.NewFamily, c.NewSection, c.OldTitle, c.NewTitle, c.Changes)
}

// FormatComparisons renders the full appended block: header, one numbered
// entry per comparison in input order, footer. Empty input yields "".
func FormatComparisons(comps []Comparison) string {
	if len(comps) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n" + rule + "\n")
	b.WriteString(blockTitle + "\n")
	b.WriteString(rule + "\n")
	for i, c := range comps {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, FormatComparison(c))
	}
	b.WriteString("\n" + rule + "\n")
	b.WriteString(blockFootnote + "\n")
	b.WriteString(rule)
	return b.String()
}

// Augment detects statute citations in question and answer, resolves them,
// and appends the formatted comparison block to the answer. When nothing is
// detected or nothing resolves, the answer is returned byte-identical with
// an empty comparison list. Augment never mutates external state and is
// safe to call repeatedly.
func (e *Engine) Augment(answer, question string) (string, []Comparison) {
	detected := Detect(question + " " + answer)
	if len(detected) == 0 {
		return answer, nil
	}
	comps := e.ResolveMany(detected)
	if len(comps) == 0 {
		return answer, nil
	}
	return answer + FormatComparisons(comps), comps
}

// Package law implements statute reference detection and cross-referencing
// between the repealed Indian criminal codes (IPC, CrPC, IEA) and the
// Bharatiya statutes that replaced them on July 1, 2024.
package law

import (
	"regexp"
	"strings"
)

// Family describes one legacy statute and its successor. Adding support for
// a new statute means adding a Family entry and a dataset table; detection
// and resolution iterate the registry generically.
type Family struct {
	Code              string
	FullName          string
	SuccessorCode     string
	SuccessorFullName string
	// MappingKey is the top-level key in the cross-reference dataset.
	MappingKey string
	Patterns   []*regexp.Regexp
}

// Section identifiers are digits with an optional single letter suffix
// (302, 304A). Every pattern captures exactly the section id in group 1.
const sectionGroup = `(\d+[A-Za-z]?)`

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// registry holds the supported families in detection order.
var registry = []Family{
	{
		Code:              "IPC",
		FullName:          "Indian Penal Code",
		SuccessorCode:     "BNS",
		SuccessorFullName: "Bharatiya Nyaya Sanhita",
		MappingKey:        "IPC_TO_BNS",
		Patterns: compilePatterns(
			`\bIPC\s+(?:Section\s+)?`+sectionGroup+`\b`,
			`\bSection\s+`+sectionGroup+`\s+(?:of\s+)?(?:the\s+)?IPC\b`,
			`\b`+sectionGroup+`\s+IPC\b`,
			`\bIndian\s+Penal\s+Code\s+(?:Section\s+)?`+sectionGroup+`\b`,
		),
	},
	{
		Code:              "CRPC",
		FullName:          "Code of Criminal Procedure",
		SuccessorCode:     "BNSS",
		SuccessorFullName: "Bharatiya Nagarik Suraksha Sanhita",
		MappingKey:        "CRPC_TO_BNSS",
		Patterns: compilePatterns(
			`\bCrPC\s+(?:Section\s+)?`+sectionGroup+`\b`,
			`\bSection\s+`+sectionGroup+`\s+(?:of\s+)?(?:the\s+)?CrPC\b`,
			`\b`+sectionGroup+`\s+CrPC\b`,
			`\bCriminal\s+Procedure\s+Code\s+(?:Section\s+)?`+sectionGroup+`\b`,
			`\bCode\s+of\s+Criminal\s+Procedure\s+(?:Section\s+)?`+sectionGroup+`\b`,
		),
	},
	{
		Code:              "IEA",
		FullName:          "Indian Evidence Act",
		SuccessorCode:     "BEA",
		SuccessorFullName: "Bharatiya Sakshya Adhiniyam",
		MappingKey:        "IEA_TO_BEA",
		Patterns: compilePatterns(
			`\bIEA\s+(?:Section\s+)?`+sectionGroup+`\b`,
			`\bSection\s+`+sectionGroup+`\s+(?:of\s+)?(?:the\s+)?IEA\b`,
			`\b`+sectionGroup+`\s+IEA\b`,
			`\bIndian\s+Evidence\s+Act\s+(?:Section\s+)?`+sectionGroup+`\b`,
			`\bEvidence\s+Act\s+(?:Section\s+)?`+sectionGroup+`\b`,
		),
	},
}

// Families returns the registry in detection order.
func Families() []Family {
	return registry
}

// FamilyByCode looks up a family by its short code, case-insensitively.
func FamilyByCode(code string) (Family, bool) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	for _, f := range registry {
		if f.Code == upper {
			return f, true
		}
	}
	return Family{}, false
}

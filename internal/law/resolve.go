package law

// Comparison is a fully resolved cross-reference for one detected citation.
type Comparison struct {
	OldFamily         string `json:"old_law"`
	OldFamilyFullName string `json:"old_law_full_name"`
	OldSection        string `json:"old_section"`
	OldTitle          string `json:"old_title"`
	NewFamily         string `json:"new_law"`
	NewFamilyFullName string `json:"new_law_full_name"`
	NewSection        string `json:"new_section"`
	NewTitle          string `json:"new_title"`
	Changes           string `json:"changes"`
	OriginalText      string `json:"original_text,omitempty"`
}

// Omitted reports whether the legacy provision has no successor.
func (c Comparison) Omitted() bool {
	return Successor{NewSection: c.NewSection}.Omitted()
}

// SectionRequest is one caller-supplied (family, section) pair for bulk
// resolution.
type SectionRequest struct {
	Family  string `json:"law_type"`
	Section string `json:"section"`
}

// Not-found reasons for bulk resolution.
const (
	ReasonUnsupportedFamily = "unsupported family"
	ReasonNotInStore        = "not found in store"
)

// NotFound describes one bulk request that could not be resolved.
type NotFound struct {
	Family  string `json:"law_type"`
	Section string `json:"section"`
	Reason  string `json:"reason"`
}

// comparison builds an enriched Comparison from a store hit.
func comparison(fam Family, section string, entry Successor) Comparison {
	return Comparison{
		OldFamily:         fam.Code,
		OldFamilyFullName: fam.FullName,
		OldSection:        section,
		OldTitle:          entry.OldTitle,
		NewFamily:         fam.SuccessorCode,
		NewFamilyFullName: fam.SuccessorFullName,
		NewSection:        entry.NewSection,
		NewTitle:          entry.NewTitle,
		Changes:           entry.Changes,
	}
}

// Resolve looks up a single detected or caller-supplied citation and
// enriches it with the registry's display names.
func (e *Engine) Resolve(familyCode, section string) (Comparison, bool) {
	fam, ok := FamilyByCode(familyCode)
	if !ok {
		return Comparison{}, false
	}
	st := e.Snapshot()
	entry, ok := st.Lookup(fam.Code, section)
	if !ok {
		return Comparison{}, false
	}
	return comparison(fam, normalizeSection(section), entry), true
}

// ResolveMany resolves detected references in input order. References with
// no store entry are dropped silently; resolution is advisory and a miss is
// not an error for the caller.
func (e *Engine) ResolveMany(refs []Reference) []Comparison {
	var out []Comparison
	for _, ref := range refs {
		c, ok := e.Resolve(ref.Family, ref.Section)
		if !ok {
			continue
		}
		c.OriginalText = ref.OriginalText
		out = append(out, c)
	}
	return out
}

// ResolveBulk resolves explicit caller requests and, unlike ResolveMany,
// reports every miss with a reason so the caller knows what failed.
func (e *Engine) ResolveBulk(reqs []SectionRequest) ([]Comparison, []NotFound) {
	var found []Comparison
	var missing []NotFound
	for _, req := range reqs {
		if _, ok := FamilyByCode(req.Family); !ok {
			missing = append(missing, NotFound{Family: req.Family, Section: req.Section, Reason: ReasonUnsupportedFamily})
			continue
		}
		c, ok := e.Resolve(req.Family, req.Section)
		if !ok {
			missing = append(missing, NotFound{Family: req.Family, Section: req.Section, Reason: ReasonNotInStore})
			continue
		}
		found = append(found, c)
	}
	return found, missing
}

func normalizeSection(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

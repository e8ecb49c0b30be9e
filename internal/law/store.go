package law

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

// SectionOmitted is the dataset sentinel meaning a legacy provision has no
// successor in the new statute.
const SectionOmitted = "OMITTED"

// Successor is the dataset entry for one legacy section. Unknown fields in
// the dataset are tolerated and dropped on load.
type Successor struct {
	OldTitle   string `json:"old_title"`
	NewSection string `json:"new_section"`
	NewTitle   string `json:"new_title"`
	Changes    string `json:"changes"`
}

// Omitted reports whether the legacy provision was dropped without a
// successor.
func (s Successor) Omitted() bool {
	return strings.EqualFold(s.NewSection, SectionOmitted)
}

// Store is the read-only cross-reference table: mapping key → section id →
// successor data. A Store is immutable after load; replace the whole Store
// to pick up new data.
type Store struct {
	tables map[string]map[string]Successor
}

// NewEmptyStore returns a store with an empty table for every registered
// family. Every lookup against it is a not-found.
func NewEmptyStore() *Store {
	tables := make(map[string]map[string]Successor, len(registry))
	for _, f := range registry {
		tables[f.MappingKey] = map[string]Successor{}
	}
	return &Store{tables: tables}
}

// LoadStore reads the cross-reference dataset from path. A missing or
// malformed file degrades to an empty store with a warning: comparison
// data is best-effort enrichment and must never block startup.
func LoadStore(path string, logger *slog.Logger) *Store {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("law: dataset not readable, running without comparisons",
			slog.String("path", path), slog.String("error", err.Error()))
		return NewEmptyStore()
	}

	var raw map[string]map[string]Successor
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("law: dataset malformed, running without comparisons",
			slog.String("path", path), slog.String("error", err.Error()))
		return NewEmptyStore()
	}

	st := NewEmptyStore()
	total := 0
	for key, sections := range raw {
		table, ok := st.tables[key]
		if !ok {
			// Mapping for a family outside the registry; keep it so the
			// data survives a future registry addition.
			table = make(map[string]Successor, len(sections))
			st.tables[key] = table
		}
		for id, entry := range sections {
			table[strings.ToUpper(id)] = entry
			total++
		}
	}
	logger.Info("law: dataset loaded", slog.String("path", path), slog.Int("sections", total))
	return st
}

// Lookup returns the successor data for a legacy (family, section) pair.
// Both arguments are matched case-insensitively. Absence is a normal
// outcome, not an error.
func (st *Store) Lookup(familyCode, section string) (Successor, bool) {
	fam, ok := FamilyByCode(familyCode)
	if !ok {
		return Successor{}, false
	}
	entry, ok := st.tables[fam.MappingKey][strings.ToUpper(strings.TrimSpace(section))]
	return entry, ok
}

// SectionInfo is one row of the per-family section listing.
type SectionInfo struct {
	Section    string `json:"section"`
	Title      string `json:"title"`
	NewSection string `json:"new_section"`
	NewFamily  string `json:"new_law"`
}

// Sections lists every dataset entry for a family, sorted by numeric
// section value with the full id as tiebreak (304 before 304A).
func (st *Store) Sections(familyCode string) ([]SectionInfo, bool) {
	fam, ok := FamilyByCode(familyCode)
	if !ok {
		return nil, false
	}
	table := st.tables[fam.MappingKey]
	out := make([]SectionInfo, 0, len(table))
	for id, entry := range table {
		out = append(out, SectionInfo{
			Section:    id,
			Title:      entry.OldTitle,
			NewSection: entry.NewSection,
			NewFamily:  fam.SuccessorCode,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := sectionNumber(out[i].Section), sectionNumber(out[j].Section)
		if ni != nj {
			return ni < nj
		}
		return out[i].Section < out[j].Section
	})
	return out, true
}

// sectionNumber extracts the numeric part of a section id ("304A" → 304).
func sectionNumber(id string) int {
	digits := strings.TrimRightFunc(id, func(r rune) bool { return r < '0' || r > '9' })
	n, _ := strconv.Atoi(digits)
	return n
}

// Engine bundles the detector and resolver around a swappable store
// snapshot. All methods are safe for concurrent use; Reload swaps the
// snapshot atomically so in-flight calls always see a consistent store.
type Engine struct {
	store atomic.Pointer[Store]
}

// NewEngine creates an engine over an initial store snapshot.
func NewEngine(st *Store) *Engine {
	e := &Engine{}
	if st == nil {
		st = NewEmptyStore()
	}
	e.store.Store(st)
	return e
}

// Reload replaces the current store snapshot with a fresh load from path.
func (e *Engine) Reload(path string, logger *slog.Logger) {
	e.store.Store(LoadStore(path, logger))
}

// Snapshot returns the current store.
func (e *Engine) Snapshot() *Store {
	return e.store.Load()
}

// Lookup delegates to the current store snapshot.
func (e *Engine) Lookup(familyCode, section string) (Successor, bool) {
	return e.Snapshot().Lookup(familyCode, section)
}

// Sections delegates to the current store snapshot.
func (e *Engine) Sections(familyCode string) ([]SectionInfo, bool) {
	return e.Snapshot().Sections(familyCode)
}

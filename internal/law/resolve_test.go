package law

import "testing"

func TestResolve_Enrichment(t *testing.T) {
	e := testEngine(t)

	c, ok := e.Resolve("IPC", "302")
	if !ok {
		t.Fatal("IPC 302 should resolve")
	}
	if c.OldFamilyFullName != "Indian Penal Code" {
		t.Errorf("old full name = %q", c.OldFamilyFullName)
	}
	if c.NewFamily != "BNS" || c.NewFamilyFullName != "Bharatiya Nyaya Sanhita" {
		t.Errorf("new family = %q / %q", c.NewFamily, c.NewFamilyFullName)
	}
	if c.NewSection != "101" || c.NewTitle != "Murder" {
		t.Errorf("successor = %q / %q", c.NewSection, c.NewTitle)
	}
}

func TestResolveMany_DropsMisses(t *testing.T) {
	e := testEngine(t)

	refs := []Reference{
		{Family: "IPC", Section: "302", OriginalText: "IPC Section 302"},
		{Family: "IPC", Section: "999999", OriginalText: "IPC 999999"},
		{Family: "CRPC", Section: "154", OriginalText: "CrPC 154"},
	}
	comps := e.ResolveMany(refs)
	if len(comps) != 2 {
		t.Fatalf("len(comps) = %d, want 2: %v", len(comps), comps)
	}
	if comps[0].OriginalText != "IPC Section 302" {
		t.Errorf("original text not carried through: %q", comps[0].OriginalText)
	}
	if comps[1].OldFamily != "CRPC" {
		t.Errorf("second comparison = %+v", comps[1])
	}
}

func TestResolveBulk_ReportsMissesWithReason(t *testing.T) {
	e := testEngine(t)

	found, missing := e.ResolveBulk([]SectionRequest{
		{Family: "IPC", Section: "302"},
		{Family: "XYZ", Section: "302"},
		{Family: "IEA", Section: "65B"},
	})
	if len(found) != 1 || found[0].OldFamily != "IPC" {
		t.Fatalf("found = %v", found)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %v", missing)
	}
	if missing[0].Reason != ReasonUnsupportedFamily {
		t.Errorf("reason = %q, want %q", missing[0].Reason, ReasonUnsupportedFamily)
	}
	if missing[1].Reason != ReasonNotInStore {
		t.Errorf("reason = %q, want %q", missing[1].Reason, ReasonNotInStore)
	}
}

func TestComparison_Omitted(t *testing.T) {
	e := testEngine(t)
	c, ok := e.Resolve("CRPC", "154")
	if !ok {
		t.Fatal("CRPC 154 should resolve")
	}
	if !c.Omitted() {
		t.Errorf("CRPC 154 fixture is omitted, got %+v", c)
	}
}

package suggest

import (
	"reflect"
	"testing"
)

func TestAnalyzeIntents(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		assess  bool
		draft   bool
		motion  bool
		subtype bool
	}{
		{"plain topic", "contract review", false, false, false, false},
		{"assess verb", "assess my breach of contract case", true, false, false, false},
		{"viability", "is this claim viable? viability check", true, false, false, false},
		{"strengths and weaknesses", "strengths and weaknesses of the defense", true, false, false, false},
		{"draft verb", "draft a demand letter", false, true, false, false},
		{"motion alone", "motion practice help", false, true, true, false},
		{"motion to compel", "motion to compel discovery", false, true, true, true},
		{"opposition to", "opposition to summary judgment", false, true, true, true},
		{"reply to", "reply to opposition brief", false, true, true, true},
		{"mixed", "assess and draft a motion to strike", true, true, true, true},
		{"case insensitive", "DRAFT A MOTION TO COMPEL", false, true, true, true},
		{"empty", "", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(tt.query)
			if a.HasAssessIntent != tt.assess {
				t.Errorf("HasAssessIntent = %v, want %v", a.HasAssessIntent, tt.assess)
			}
			if a.HasDraftIntent != tt.draft {
				t.Errorf("HasDraftIntent = %v, want %v", a.HasDraftIntent, tt.draft)
			}
			if a.LooksLikeMotion != tt.motion {
				t.Errorf("LooksLikeMotion = %v, want %v", a.LooksLikeMotion, tt.motion)
			}
			if a.LooksLikeMotionSubtype != tt.subtype {
				t.Errorf("LooksLikeMotionSubtype = %v, want %v", a.LooksLikeMotionSubtype, tt.subtype)
			}
		})
	}
}

func TestAnalyzeNormalization(t *testing.T) {
	a := Analyze("  Motion TO Compel!!  ")
	if a.Normalized != "motion to compel" {
		t.Errorf("Normalized = %q", a.Normalized)
	}
	if !reflect.DeepEqual(a.Tokens, []string{"motion", "to", "compel"}) {
		t.Errorf("Tokens = %v", a.Tokens)
	}
}

func TestAnalyzeExpansion(t *testing.T) {
	// Subtype queries pull in the full drafting vocabulary.
	a := Analyze("motion to compel")
	want := "motion to compel draft outline starter template brief headings drafting"
	if a.ExpandedQuery != want {
		t.Errorf("ExpandedQuery = %q, want %q", a.ExpandedQuery, want)
	}

	// Bare motion words get the lighter expansion.
	a = Analyze("appellate brief")
	if a.ExpandedQuery != "appellate brief outline drafting" {
		t.Errorf("ExpandedQuery = %q", a.ExpandedQuery)
	}

	// No motion shape, no expansion.
	a = Analyze("contract review")
	if a.ExpandedQuery != a.Normalized {
		t.Errorf("ExpandedQuery = %q, want it to equal the normalized query", a.ExpandedQuery)
	}

	// Expansion terms already present in the query are not repeated.
	a = Analyze("draft motion to compel")
	want = "draft motion to compel outline starter template brief headings drafting"
	if a.ExpandedQuery != want {
		t.Errorf("ExpandedQuery = %q, want %q", a.ExpandedQuery, want)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	first := Analyze("assess viability of a motion to dismiss")
	for i := 0; i < 5; i++ {
		if got := Analyze("assess viability of a motion to dismiss"); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

package types

import "testing"

func TestSeverityRank(t *testing.T) {
	order := []Severity{SevInfo, SevLow, SevMedium, SevHigh, SevCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%s should outrank %s", order[i], order[i-1])
		}
	}
	if Severity("catastrophic").Valid() {
		t.Fatal("unknown severity reported valid")
	}
	if !SevMedium.Valid() {
		t.Fatal("medium reported invalid")
	}
}

func TestCategoryVocabulary(t *testing.T) {
	cats := Categories()
	if len(cats) != 12 {
		t.Fatalf("got %d categories, want 12", len(cats))
	}
	seen := map[Category]bool{}
	for _, c := range cats {
		if !c.Valid() {
			t.Fatalf("listed category %q reports invalid", c)
		}
		if seen[c] {
			t.Fatalf("duplicate category %q", c)
		}
		seen[c] = true
	}
	if Category("xss").Valid() {
		t.Fatal("unlisted category reported valid")
	}
}

package achievement

import (
	"encoding/json"
	"testing"
)

func TestDefinitionsAscending(t *testing.T) {
	defs := All()
	for i := 1; i < len(defs); i++ {
		if defs[i].Threshold <= defs[i-1].Threshold {
			t.Fatalf("definitions not ascending at %d", i)
		}
	}
}

func TestAwardUnlocksCrossedThresholds(t *testing.T) {
	updated, unlocked := Award(60, nil)
	if len(unlocked) != 2 || unlocked[0] != FirstSteps || unlocked[1] != Devoted {
		t.Fatalf("unexpected unlocked set: %v", unlocked)
	}
	if len(updated) != 2 {
		t.Fatalf("unexpected updated set: %v", updated)
	}
}

func TestAwardIsIdempotent(t *testing.T) {
	first, _ := Award(120, []ID{})
	second, unlocked := Award(120, first)
	if len(unlocked) != 0 {
		t.Fatalf("expected nothing new, got %v", unlocked)
	}
	if len(second) != len(first) {
		t.Fatalf("expected %d achievements, got %d", len(first), len(second))
	}
	seen := map[ID]bool{}
	for _, id := range second {
		if seen[id] {
			t.Fatalf("duplicate achievement %s", id)
		}
		seen[id] = true
	}
}

func TestAwardNeverRemoves(t *testing.T) {
	// Points corrected downward by an admin keep earned achievements.
	updated, unlocked := Award(0, []ID{Steadfast})
	if len(unlocked) != 0 || len(updated) != 1 || updated[0] != Steadfast {
		t.Fatalf("unexpected result: %v %v", updated, unlocked)
	}
}

func TestAwardCollapsesDuplicates(t *testing.T) {
	updated, _ := Award(10, []ID{FirstSteps, FirstSteps})
	if len(updated) != 1 {
		t.Fatalf("expected duplicates removed, got %v", updated)
	}
}

func TestParseAndText(t *testing.T) {
	for _, d := range All() {
		parsed, err := Parse(d.ID.String())
		if err != nil || parsed != d.ID {
			t.Fatalf("round trip failed for %s: %v", d.ID, err)
		}
		byName, err := Parse(d.Name)
		if err != nil || byName != d.ID {
			t.Fatalf("lookup by name failed for %q: %v", d.Name, err)
		}
	}
	if _, err := Parse("grandmaster"); err == nil {
		t.Fatalf("expected error for unknown achievement")
	}
}

func TestJSONUsesSlugs(t *testing.T) {
	data, err := json.Marshal([]ID{FirstSteps, Radiant})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["first-steps","radiant"]` {
		t.Fatalf("unexpected json %s", data)
	}
	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(ids) != 2 || ids[1] != Radiant {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestNext(t *testing.T) {
	d, ok := Next(10)
	if !ok || d.ID != Devoted {
		t.Fatalf("expected Devoted next, got %+v", d)
	}
	if _, ok := Next(5000); ok {
		t.Fatalf("expected no next achievement")
	}
}

package practice

import (
	"reflect"
	"testing"
	"time"

	"github.com/smanielp/cactusgolf/core/drill"
)

func TestDraftAddDrill(t *testing.T) {
	conf := testPracticeConfig()
	putt := testDrill("putting-gate", "putting", 15, "Make 5 out of 8 putts")
	chip := testDrill("chipping-ladder", "chipping", 10, "Land 3 chips on the towel")

	d := NewDraft(AchievementState{"chipping-ladder": drill.Tier2}, conf)

	ack := d.AddDrill(putt)
	if ack.Message != "Drill added to session!" {
		t.Errorf("AddDrill().Message = %q", ack.Message)
	}
	if ack.ClearAfter != 2*time.Second {
		t.Errorf("AddDrill().ClearAfter = %v, want %v", ack.ClearAfter, 2*time.Second)
	}

	d.AddDrill(chip)
	d.AddDrill(putt) // duplicates are independent entries

	entries := d.Entries()
	if len(entries) != 3 {
		t.Fatalf("Len() = %d, want 3", len(entries))
	}
	if entries[0].Drill.ID != "putting-gate" || entries[1].Drill.ID != "chipping-ladder" || entries[2].Drill.ID != "putting-gate" {
		t.Errorf("entries out of insertion order: %v", entries)
	}

	// tier stamped at selection time: unseen drill gets the default, known
	// drill gets its current tier
	if entries[0].Tier != drill.Tier1 {
		t.Errorf("unseen drill tier = %s, want %s", entries[0].Tier, drill.Tier1)
	}
	if entries[1].Tier != drill.Tier2 {
		t.Errorf("known drill tier = %s, want %s", entries[1].Tier, drill.Tier2)
	}

	if got := d.TotalDuration(); got != 40 {
		t.Errorf("TotalDuration() = %d, want 40", got)
	}
	if got := d.Focus(); !reflect.DeepEqual(got, []string{"putting", "chipping"}) {
		t.Errorf("Focus() = %v, want [putting chipping]", got)
	}
}

func TestDraftRemoveDrill(t *testing.T) {
	conf := testPracticeConfig()
	putt := testDrill("putting-gate", "putting", 15, "Make 5 out of 8 putts")
	chip := testDrill("chipping-ladder", "chipping", 10, "Land 3 chips on the towel")

	d := NewDraft(AchievementState{}, conf)
	d.AddDrill(putt)
	d.AddDrill(chip)
	d.AddDrill(putt)

	// removal sweeps every entry with the id, duplicates included
	if removed := d.RemoveDrill("putting-gate"); removed != 2 {
		t.Errorf("RemoveDrill() = %d, want 2", removed)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
	if removed := d.RemoveDrill("putting-gate"); removed != 0 {
		t.Errorf("RemoveDrill() second call = %d, want 0", removed)
	}

	d.Clear()
	if d.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", d.Len())
	}
}

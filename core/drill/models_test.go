package drill

import (
	"reflect"
	"testing"
)

func TestMakeID(t *testing.T) {
	tests := []struct {
		category, name, want string
	}{
		{"putting", "Gate Drill", "putting-gate-drill"},
		{"chipping", "Up & Down", "chipping-up-down"},
		{"driving", "  Fairway Finder!  ", "driving-fairway-finder"},
		{"putting", "3-6-9 Ladder", "putting-3-6-9-ladder"},
	}
	for _, tt := range tests {
		if got := MakeID(tt.category, tt.name); got != tt.want {
			t.Errorf("MakeID(%q, %q) = %q, want %q", tt.category, tt.name, got, tt.want)
		}
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in     string
		want   Tier
		wantOk bool
	}{
		{"tier1", Tier1, true},
		{"TIER2", Tier2, true},
		{" tier3 ", Tier3, true},
		{"beginner", Tier1, true},
		{"Intermediate", Tier2, true},
		{"advanced", Tier3, true},
		{"level1", Tier1, true},
		{"level3", Tier3, true},
		{"expert", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTier(tt.in)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseTier(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestTierNext(t *testing.T) {
	if next, ok := Tier1.Next(); next != Tier2 || !ok {
		t.Errorf("Tier1.Next() = %s, %v", next, ok)
	}
	if next, ok := Tier2.Next(); next != Tier3 || !ok {
		t.Errorf("Tier2.Next() = %s, %v", next, ok)
	}
	if _, ok := Tier3.Next(); ok {
		t.Error("Tier3.Next() ok = true, want false at the cap")
	}
}

func TestAchievementsNormalize(t *testing.T) {
	a := Achievements{
		"beginner": "easy text",
		"tier2":    "mid text",
		"expert":   "dropped",
	}
	want := Achievements{
		Tier1: "easy text",
		Tier2: "mid text",
	}
	if got := a.Normalize(); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %v, want %v", got, want)
	}
}

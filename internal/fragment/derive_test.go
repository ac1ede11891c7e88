package fragment

import "testing"

func TestClockedIn_Empty(t *testing.T) {
	if ClockedIn(nil) {
		t.Error("ClockedIn(nil) = true, want false")
	}
	if ClockedIn([]Fragment{}) {
		t.Error("ClockedIn(empty) = true, want false")
	}
}

func TestClockedIn_Markers(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"clocked in for work today", true},
		{"Clock in now", true},
		{"confirmed clock-in at 09:02", true},
		{"punched in late", true},
		{"normal attendance today", true},
		{"fixed login bug", false},
		{"reviewed the clock tower designs", false},
		{"", false},
	}
	for _, tt := range tests {
		got := ClockedIn([]Fragment{{Type: TypeNote, Content: tt.content}})
		if got != tt.want {
			t.Errorf("ClockedIn(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestClockedIn_AnyFragmentSuffices(t *testing.T) {
	list := []Fragment{
		{Type: TypeNote, Content: "fixed login bug"},
		{Type: TypeNote, Content: "clocked in for work today"},
		{Type: TypeNote, Content: "deployed staging"},
	}
	if !ClockedIn(list) {
		t.Error("ClockedIn = false, want true when one fragment matches")
	}
}

func TestLatestSummary_None(t *testing.T) {
	list := []Fragment{
		{Type: TypeNote, Content: "a"},
		{Type: TypeNote, Content: "b"},
	}
	if got, ok := LatestSummary(list); ok {
		t.Errorf("LatestSummary = %q, ok = true, want absent", got)
	}
}

func TestLatestSummary_PicksLast(t *testing.T) {
	list := []Fragment{
		{Type: TypeNote, Content: "a"},
		{Type: TypeSummary, Content: "S1"},
		{Type: TypeNote, Content: "b"},
		{Type: TypeSummary, Content: "S2"},
	}
	got, ok := LatestSummary(list)
	if !ok {
		t.Fatal("LatestSummary ok = false, want true")
	}
	if got != "S2" {
		t.Errorf("LatestSummary = %q, want %q", got, "S2")
	}
}

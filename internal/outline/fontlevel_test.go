package outline

import "testing"

func TestBuildFontLevels(t *testing.T) {
	// Three repeated sizes well apart should map to H1, H2, H3 by size rank.
	lines := []TextLine{
		{Text: "First Chapter", FontSize: 24},
		{Text: "Another Chapter", FontSize: 24},
		{Text: "Some Section", FontSize: 18},
		{Text: "Other Section", FontSize: 18},
		{Text: "Small Subsection", FontSize: 14},
		{Text: "Tiny Subsection", FontSize: 14},
	}
	m := buildFontLevels(lines)
	if got := m[24]; got != LevelH1 {
		t.Errorf("size 24 = %s, want H1", got)
	}
	if got := m[18]; got != LevelH2 {
		t.Errorf("size 18 = %s, want H2", got)
	}
	if got := m[14]; got != LevelH3 {
		t.Errorf("size 14 = %s, want H3", got)
	}
}

func TestBuildFontLevels_CollapsesNearSizes(t *testing.T) {
	// 18.0 and 18.3 are within the collapse span and become one level.
	lines := []TextLine{
		{Text: "Heading One", FontSize: 18.0},
		{Text: "Heading Two", FontSize: 18.0},
		{Text: "Heading Three", FontSize: 18.3},
		{Text: "Heading Four", FontSize: 18.3},
	}
	m := buildFontLevels(lines)
	if len(m) != 1 {
		t.Fatalf("expected 1 collapsed level, got %d: %v", len(m), m)
	}
}

func TestBuildFontLevels_SingletonsKeptWhenNothingRepeats(t *testing.T) {
	lines := []TextLine{
		{Text: "Lone Heading", FontSize: 20},
		{Text: "Other Heading", FontSize: 12},
	}
	m := buildFontLevels(lines)
	if got := m[20]; got != LevelH1 {
		t.Errorf("size 20 = %s, want H1", got)
	}
	if got := m[12]; got != LevelH2 {
		t.Errorf("size 12 = %s, want H2", got)
	}
}

func TestBuildFontLevels_NoCandidates(t *testing.T) {
	lines := []TextLine{
		{Text: "this sentence is lowercase body text and it keeps going on and on", FontSize: 12},
	}
	if m := buildFontLevels(lines); m != nil {
		t.Errorf("expected nil map for no candidates, got %v", m)
	}
}

func TestFontLevelMap_Nearest(t *testing.T) {
	m := fontLevelMap{24: LevelH1, 18: LevelH2, 14: LevelH3}
	tests := []struct {
		size float64
		want Level
	}{
		{23.5, LevelH1},
		{17, LevelH2},
		{14.2, LevelH3},
		{10, LevelH3},
		{30, LevelH1},
	}
	for _, tt := range tests {
		got, ok := m.nearest(tt.size)
		if !ok {
			t.Fatalf("nearest(%v): unexpectedly empty", tt.size)
		}
		if got != tt.want {
			t.Errorf("nearest(%v) = %s, want %s", tt.size, got, tt.want)
		}
	}
}

func TestFontLevelMap_NearestEmpty(t *testing.T) {
	var m fontLevelMap
	if _, ok := m.nearest(12); ok {
		t.Error("expected ok=false for empty map")
	}
}

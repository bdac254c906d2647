package outline

import "testing"

func TestIsTOCPage_Marker(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"english", "Table of Contents\nSome entries follow"},
		{"bare contents", "contents"},
		{"chinese", "目录\n第一章"},
		{"arabic", "الفهرس"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsTOCPage(tt.text) {
				t.Errorf("expected marker page detected: %q", tt.text)
			}
		})
	}
}

func TestIsTOCPage_NumericDensity(t *testing.T) {
	page := "1 Getting Started 3\n2 Configuration 7\n3 Advanced Usage 15\nAppendix A 30"
	if !IsTOCPage(page) {
		t.Error("expected numbering-dense page classified as TOC")
	}
}

func TestIsTOCPage_DotLeaders(t *testing.T) {
	page := "..... 3\n..... 7\n..... 15"
	if !IsTOCPage(page) {
		t.Error("expected dot-leader page classified as TOC")
	}
}

func TestIsTOCPage_ProsePage(t *testing.T) {
	page := "The quick brown fox jumps over the lazy dog.\n" +
		"Heading detection relies on layout signals alone.\n" +
		"Body paragraphs rarely begin with section numbers."
	if IsTOCPage(page) {
		t.Error("expected prose page not classified as TOC")
	}
}

func TestIsTOCPage_Empty(t *testing.T) {
	if IsTOCPage("") {
		t.Error("expected empty page not classified as TOC")
	}
}

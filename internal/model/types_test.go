package model

import "testing"

func TestParseDisplayEnums(t *testing.T) {
	if fs, err := ParseFontSize(" Extra-Large "); err != nil || fs != FontExtraLarge {
		t.Fatalf("expected extra-large, got %q (%v)", fs, err)
	}
	if _, err := ParseFontSize("huge"); err == nil {
		t.Fatalf("expected error for unknown font size")
	}
	if ff, err := ParseFontFamily("serif"); err != nil || ff != FamilySerif {
		t.Fatalf("expected serif, got %q (%v)", ff, err)
	}
	if _, err := ParseFontFamily("comic"); err == nil {
		t.Fatalf("expected error for unknown font family")
	}
	if th, err := ParseTheme("AMOLED"); err != nil || th != ThemeAmoled {
		t.Fatalf("expected amoled, got %q (%v)", th, err)
	}
	if _, err := ParseTheme("neon"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestDocumentSummaryProgress(t *testing.T) {
	cases := []struct {
		words, cursor int
		want          float64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{5, 2, 0.5},
		{5, 4, 1},
	}
	for _, tc := range cases {
		d := DocumentSummary{WordCount: tc.words, Cursor: tc.cursor}
		if got := d.Progress(); got != tc.want {
			t.Fatalf("progress(%d/%d) = %v, want %v", tc.cursor, tc.words, got, tc.want)
		}
	}
}

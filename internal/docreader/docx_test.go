package docreader

import (
	"testing"

	"github.com/fumiama/go-docx"
)

func TestListLevel(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"1", 1},
		{"4", 4},
		{"", 0},
		{"two", 0},
		{"-1", 0},
	}
	for _, c := range cases {
		if got := listLevel(c.in); got != c.want {
			t.Errorf("listLevel(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDrawingRelIDMissingParts(t *testing.T) {
	if got := drawingRelID(&docx.Drawing{}); got != "" {
		t.Errorf("drawing with neither inline nor anchor: %q", got)
	}
	if got := graphicRelID(nil); got != "" {
		t.Errorf("nil graphic: %q", got)
	}
	if got := graphicRelID(&docx.AGraphic{}); got != "" {
		t.Errorf("graphic without data: %q", got)
	}
}

package styles

import "strings"

// Color handling covers two separate concerns: a per-style display tag for
// the heading-management snapshot, and mapping run colors to the archive's
// outputclass markers.

// levelPalette assigns one display color per heading depth so the snapshot
// consumer can tag styles consistently across re-runs.
var levelPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22",
}

func levelColorTag(level int) string {
	if level < 1 || level > len(levelPalette) {
		return ""
	}
	return levelPalette[level-1]
}

// ColorRules maps source run colors to outputclass values.
type ColorRules struct {
	// ColorMappings keys are lowercase hex values without '#'.
	ColorMappings map[string]string `yaml:"color_mappings"`
	// ThemeMap keys are Word theme color names.
	ThemeMap map[string]string `yaml:"theme_map"`
}

// DefaultColorRules covers the red/green markers the source documents use.
func DefaultColorRules() ColorRules {
	return ColorRules{
		ColorMappings: map[string]string{
			"ff0000": "color-red",
			"c00000": "color-red",
			"00b050": "color-green",
			"008000": "color-green",
		},
		ThemeMap: map[string]string{
			"accent2": "color-red",
			"accent6": "color-green",
		},
	}
}

// OutputClass maps a run color ("ff0000" or "theme-accent2") to an
// outputclass, or "" when the color carries no marker meaning.
func (r ColorRules) OutputClass(color string) string {
	if color == "" {
		return ""
	}
	if cls, ok := r.ColorMappings[color]; ok {
		return cls
	}
	if theme, ok := strings.CutPrefix(color, "theme-"); ok {
		return r.ThemeMap[theme]
	}
	return ""
}

package structure

import (
	"sort"

	"github.com/dgallion1/docx2dita/internal/styles"
)

// StyleUsage is one row of the inspection snapshot: a resolved style plus how
// many headings it produced.
type StyleUsage struct {
	Style        string   `json:"style"`
	Level        int      `json:"level"`
	Origin       string   `json:"origin"`
	ColorTag     string   `json:"color_tag,omitempty"`
	HeadingCount int      `json:"heading_count"`
	Occurrences  []string `json:"occurrences,omitempty"` // heading titles, document order
}

// Snapshot is the read-only view a caller inspects between structure building
// and generation, so it can adjust exclusions and re-run the filter without
// re-parsing the document.
type Snapshot struct {
	Styles       []StyleUsage `json:"styles"`
	HeadingCount int          `json:"heading_count"`
	ExcludedSet  []string     `json:"excluded_styles"`
	MaxLevel     int          `json:"max_level"`
	BlockCount   int          `json:"block_count"`
}

// TakeSnapshot builds the inspection view from the pristine (pre-filter) tree
// and the resolver's cached records.
func TakeSnapshot(t *Tree, res *styles.Resolver, excluded map[string]bool) Snapshot {
	usage := make(map[string]*StyleUsage)
	for _, rec := range res.Records() {
		usage[rec.Name] = &StyleUsage{
			Style:    rec.Name,
			Level:    rec.ResolvedLevel,
			Origin:   rec.Origin,
			ColorTag: rec.ColorTag,
		}
	}

	snap := Snapshot{}
	t.Walk(func(n *Node) bool {
		snap.HeadingCount++
		snap.BlockCount += len(n.Blocks)
		if n.Level > snap.MaxLevel {
			snap.MaxLevel = n.Level
		}
		if n.Style != "" {
			u, ok := usage[n.Style]
			if !ok {
				u = &StyleUsage{Style: n.Style, Level: n.Level}
				usage[n.Style] = u
			}
			u.HeadingCount++
			u.Occurrences = append(u.Occurrences, n.Title)
		}
		return true
	})
	snap.BlockCount += len(t.Root().Blocks)

	for _, u := range usage {
		snap.Styles = append(snap.Styles, *u)
	}
	sort.Slice(snap.Styles, func(i, j int) bool {
		if snap.Styles[i].Level != snap.Styles[j].Level {
			return snap.Styles[i].Level < snap.Styles[j].Level
		}
		return snap.Styles[i].Style < snap.Styles[j].Style
	})

	snap.ExcludedSet = make([]string, 0, len(excluded))
	for name, on := range excluded {
		if on {
			snap.ExcludedSet = append(snap.ExcludedSet, name)
		}
	}
	sort.Strings(snap.ExcludedSet)
	return snap
}

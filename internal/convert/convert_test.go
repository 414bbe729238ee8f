package convert

import (
	"archive/zip"
	"bytes"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/docx2dita/internal/docreader"
)

// fakeSource is an in-memory document for pipeline tests.
type fakeSource struct {
	name   string
	blocks []docreader.Block
	styles map[string]docreader.StyleDef
	images map[string][]byte
}

func (f *fakeSource) Name() string                          { return f.name }
func (f *fakeSource) Blocks() []docreader.Block             { return f.blocks }
func (f *fakeSource) Styles() map[string]docreader.StyleDef { return f.styles }

func (f *fakeSource) Image(relID string) ([]byte, string, error) {
	data, ok := f.images[relID]
	if !ok {
		return nil, "", docreader.ErrImageNotFound
	}
	return data, "png", nil
}

func para(style, text string) docreader.Block {
	return docreader.Block{Paragraph: &docreader.ParagraphRecord{StyleName: style, Text: text}}
}

func sampleSource() *fakeSource {
	return &fakeSource{
		name: "manual",
		blocks: []docreader.Block{
			para("Heading 1", "A"),
			para("", "intro"),
			para("Heading 2", "B"),
			para("", "X"),
			para("", "Y"),
		},
	}
}

func TestRunSourceEndToEnd(t *testing.T) {
	var phases []string
	c, err := RunSource(sampleSource(), Options{
		Progress: func(p string) { phases = append(phases, p) },
	})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}

	if len(c.Result.Topics) != 2 {
		t.Errorf("expected 2 topics, got %d", len(c.Result.Topics))
	}

	// The archive must be a readable zip containing the map.
	zr, err := zip.NewReader(bytes.NewReader(c.Archive), int64(len(c.Archive)))
	if err != nil {
		t.Fatalf("archive unreadable: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["document.ditamap"] {
		t.Errorf("archive missing map, entries: %v", names)
	}

	wantPhases := []string{
		"Analyzing document styles...",
		"Analyzing document structure...",
		"Building topics...",
		"Packaging archive...",
		"Conversion finished.",
	}
	if !reflect.DeepEqual(phases, wantPhases) {
		t.Errorf("phases = %v, want %v", phases, wantPhases)
	}
}

func TestHeadingWithoutContentBecomesGroup(t *testing.T) {
	src := &fakeSource{
		name: "doc",
		blocks: []docreader.Block{
			para("Heading 1", "A"),
			para("Heading 2", "B"),
			para("", "X"),
		},
	}
	c, err := RunSource(src, Options{})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	// "A" has children but no direct content: a map-only group, not a topic.
	if len(c.Result.Topics) != 1 || c.Result.Topics[0].Title != "B" {
		t.Fatalf("topics = %+v, want only B", c.Result.Topics)
	}
	if !strings.Contains(string(c.Result.MapXML), "<topichead") {
		t.Errorf("map missing group entry for A:\n%s", c.Result.MapXML)
	}
}

func TestRegenerateWithExclusions(t *testing.T) {
	c, err := RunSource(sampleSource(), Options{})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if len(c.Result.Topics) != 2 {
		t.Fatalf("initial run: %d topics", len(c.Result.Topics))
	}

	if err := c.Regenerate([]string{"Heading 2"}); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if len(c.Result.Topics) != 1 {
		t.Fatalf("after exclusion: %d topics, want 1", len(c.Result.Topics))
	}
	body := string(c.Result.Topics[0].Body)
	if !strings.Contains(body, "X") || !strings.Contains(body, "Y") {
		t.Errorf("excluded node content not merged:\n%s", body)
	}
	if strings.Index(body, "X") > strings.Index(body, "Y") {
		t.Errorf("content order lost:\n%s", body)
	}

	// The pristine tree survives: dropping the exclusion restores both topics.
	if err := c.Regenerate(nil); err != nil {
		t.Fatalf("Regenerate(nil): %v", err)
	}
	if len(c.Result.Topics) != 2 {
		t.Errorf("after reset: %d topics, want 2", len(c.Result.Topics))
	}
}

func TestRegenerateIsDeterministic(t *testing.T) {
	c, err := RunSource(sampleSource(), Options{})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if err := c.Regenerate([]string{"Heading 2"}); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	first := append([]byte(nil), c.Archive...)
	if err := c.Regenerate([]string{"Heading 2"}); err != nil {
		t.Fatalf("Regenerate twice: %v", err)
	}
	if !bytes.Equal(first, c.Archive) {
		t.Error("same exclusion set must reproduce an identical archive")
	}
}

func TestSnapshotReflectsExclusions(t *testing.T) {
	c, err := RunSource(sampleSource(), Options{ExcludedStyles: []string{"Heading 2"}})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	snap := c.Snapshot()
	if !reflect.DeepEqual(snap.ExcludedSet, []string{"Heading 2"}) {
		t.Errorf("excluded set = %v", snap.ExcludedSet)
	}
	// The snapshot shows the pre-filter population: both headings.
	if snap.HeadingCount != 2 {
		t.Errorf("heading count = %d, want 2 (pre-filter)", snap.HeadingCount)
	}
}

func TestStyleOverrides(t *testing.T) {
	src := &fakeSource{
		name: "doc",
		blocks: []docreader.Block{
			para("Corporate", "Top"),
			para("", "body"),
		},
	}
	c, err := RunSource(src, Options{StyleOverrides: map[string]int{"Corporate": 1}})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if len(c.Result.Topics) != 1 || c.Result.Topics[0].Title != "Top" {
		t.Errorf("override did not promote style: %+v", c.Result.Topics)
	}
}

func TestConcurrentRegenerateAndInspect(t *testing.T) {
	c, err := RunSource(sampleSource(), Options{})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if err := c.Regenerate([]string{"Heading 2"}); err != nil {
				t.Errorf("Regenerate: %v", err)
				return
			}
			if err := c.Regenerate(nil); err != nil {
				t.Errorf("Regenerate(nil): %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			c.Snapshot()
			if c.Report() == "" {
				t.Error("empty report")
				return
			}
			if res, zipBytes := c.Output(); res == nil || len(zipBytes) == 0 {
				t.Error("empty output")
				return
			}
		}
	}()
	wg.Wait()
}

func TestRunRejectsGarbage(t *testing.T) {
	_, err := Run([]byte("not a zip at all"), "junk.docx", Options{})
	if err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestReportMentionsWarnings(t *testing.T) {
	src := sampleSource()
	src.blocks = append(src.blocks, docreader.Block{
		Paragraph: &docreader.ParagraphRecord{Images: []string{"rIdGone"}},
	})
	c, err := RunSource(src, Options{})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if !strings.Contains(c.Report(), "rIdGone") {
		t.Error("report should mention the unresolved relationship")
	}
}

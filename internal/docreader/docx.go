package docreader

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DocxSource reads a .docx package via go-docx for the body stream and a
// separate pass over word/styles.xml for style definitions (go-docx does not
// surface outline levels or style display names).
type DocxSource struct {
	name   string
	doc    *docx.Docx
	blocks []Block
	styles map[string]StyleDef // keyed by display name
	byID   map[string]StyleDef // keyed by style ID, for w:pStyle lookups
}

// OpenDocx parses the raw bytes of a .docx file.
func OpenDocx(data []byte, name string) (*DocxSource, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	defs, err := parseStyleSheet(data)
	if err != nil {
		return nil, fmt.Errorf("read style sheet: %w", err)
	}

	s := &DocxSource{
		name:   strings.TrimSuffix(name, path.Ext(name)),
		doc:    doc,
		styles: make(map[string]StyleDef, len(defs)),
		byID:   make(map[string]StyleDef, len(defs)),
	}
	for _, d := range defs {
		s.styles[d.Name] = d
		s.byID[d.ID] = d
	}
	s.blocks = s.readBody()
	return s, nil
}

func (s *DocxSource) Name() string                { return s.name }
func (s *DocxSource) Blocks() []Block             { return s.blocks }
func (s *DocxSource) Styles() map[string]StyleDef { return s.styles }

// Image resolves a relationship ID through the package relationships to the
// backing media part.
func (s *DocxSource) Image(relID string) ([]byte, string, error) {
	target, err := s.doc.ReferTarget(relID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrImageNotFound, relID)
	}
	media := s.doc.Media(path.Base(target))
	if media == nil {
		return nil, "", fmt.Errorf("%w: %s (%s)", ErrImageNotFound, relID, target)
	}
	ext := strings.TrimPrefix(path.Ext(target), ".")
	if ext == "" {
		ext = "png"
	}
	return media.Data, ext, nil
}

func (s *DocxSource) readBody() []Block {
	var blocks []Block
	for _, item := range s.doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if p := s.readParagraph(it); p != nil {
				blocks = append(blocks, Block{Paragraph: p})
			}
		case *docx.Table:
			t, images := s.readTable(it)
			if t != nil {
				blocks = append(blocks, Block{Table: t})
			}
			// Images anchored inside cells follow the table as their own
			// block; the flat row model carries text only.
			if len(images) > 0 {
				blocks = append(blocks, Block{Paragraph: &ParagraphRecord{Images: images}})
			}
		}
	}
	return blocks
}

func (s *DocxSource) readParagraph(para *docx.Paragraph) *ParagraphRecord {
	rec := &ParagraphRecord{
		StyleName: s.styleName(para),
		List:      s.listInfo(para),
	}
	var text strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		span := Span{
			Bold:   run.RunProperties != nil && run.RunProperties.Bold != nil,
			Italic: run.RunProperties != nil && run.RunProperties.Italic != nil,
			Color:  runColor(run),
		}
		var runText strings.Builder
		for _, rc := range run.Children {
			switch c := rc.(type) {
			case *docx.Text:
				runText.WriteString(c.Text)
			case *docx.Drawing:
				if id := drawingRelID(c); id != "" {
					rec.Images = append(rec.Images, id)
				}
			}
		}
		if runText.Len() > 0 {
			span.Text = runText.String()
			rec.Spans = append(rec.Spans, span)
			text.WriteString(span.Text)
		}
	}
	rec.Text = strings.TrimSpace(text.String())
	if rec.Text == "" && len(rec.Images) == 0 {
		return nil
	}
	return rec
}

func (s *DocxSource) readTable(tbl *docx.Table) (*TableRecord, []string) {
	var rows [][]string
	var images []string
	for _, tr := range tbl.TableRows {
		var cells []string
		for _, tc := range tr.TableCells {
			var cell strings.Builder
			for _, p := range tc.Paragraphs {
				if rec := s.readParagraph(p); rec != nil {
					if cell.Len() > 0 {
						cell.WriteString("\n")
					}
					cell.WriteString(rec.Text)
					images = append(images, rec.Images...)
				}
			}
			cells = append(cells, cell.String())
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return nil, images
	}
	return &TableRecord{Rows: rows}, images
}

// styleName maps the paragraph's w:pStyle (a style ID) to the display name
// from the style sheet. Falls back to the raw ID for styles the sheet does
// not define.
func (s *DocxSource) styleName(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	id := para.Properties.Style.Val
	if def, ok := s.byID[id]; ok {
		return def.Name
	}
	return id
}

func (s *DocxSource) listInfo(para *docx.Paragraph) *ListInfo {
	if para.Properties == nil || para.Properties.NumProperties == nil {
		return nil
	}
	np := para.Properties.NumProperties
	if np.NumID == nil {
		return nil
	}
	info := &ListInfo{}
	if np.Ilvl != nil {
		info.Level = listLevel(np.Ilvl.Val)
	}
	// The numbering definition part is not parsed; ordered-vs-bullet is
	// inferred from the style name.
	name := strings.ToLower(s.styleName(para))
	info.Ordered = strings.Contains(name, "number")
	return info
}

// listLevel parses a w:ilvl value; OOXML carries it as a string attribute.
func listLevel(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func runColor(run *docx.Run) string {
	if run.RunProperties == nil || run.RunProperties.Color == nil {
		return ""
	}
	return strings.ToLower(run.RunProperties.Color.Val)
}

func drawingRelID(d *docx.Drawing) string {
	if d.Inline != nil {
		if id := graphicRelID(d.Inline.Graphic); id != "" {
			return id
		}
	}
	if d.Anchor != nil {
		return graphicRelID(d.Anchor.Graphic)
	}
	return ""
}

func graphicRelID(g *docx.AGraphic) string {
	if g == nil || g.GraphicData == nil || g.GraphicData.Pic == nil {
		return ""
	}
	pic := g.GraphicData.Pic
	if pic.BlipFill == nil {
		return ""
	}
	return pic.BlipFill.Blip.Embed
}

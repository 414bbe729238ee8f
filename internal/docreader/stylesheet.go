package docreader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// parseStyleSheet extracts paragraph style definitions from word/styles.xml.
// The stream is parsed directly because the document library exposes only
// body content, not the style sheet.
func parseStyleSheet(data []byte) ([]StyleDef, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	for _, f := range zr.File {
		if f.Name != "word/styles.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open styles.xml: %w", err)
		}
		defer rc.Close()
		return decodeStyleSheet(rc)
	}
	// A package without a style sheet is legal; all styles resolve by name.
	return nil, nil
}

func decodeStyleSheet(r io.Reader) ([]StyleDef, error) {
	dec := xml.NewDecoder(r)

	var defs []StyleDef
	var cur *StyleDef
	depth := 0 // element depth inside the current w:style

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse styles.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "style":
				if attrValue(t, "type") == "paragraph" {
					cur = &StyleDef{ID: attrValue(t, "styleId")}
					depth = 0
				}
			case "name":
				if cur != nil && depth == 0 {
					cur.Name = attrValue(t, "val")
				}
			case "outlineLvl":
				if cur != nil {
					// w:outlineLvl is 0-based; levels are 1-based here.
					if n, err := strconv.Atoi(attrValue(t, "val")); err == nil && n >= 0 && n <= 8 {
						cur.OutlineLevel = n + 1
					}
				}
			}
			if cur != nil && t.Name.Local != "style" {
				depth++
			}
		case xml.EndElement:
			if cur == nil {
				continue
			}
			if t.Name.Local == "style" {
				if cur.Name == "" {
					cur.Name = cur.ID
				}
				if cur.ID != "" || cur.Name != "" {
					defs = append(defs, *cur)
				}
				cur = nil
			} else {
				depth--
			}
		}
	}
	return defs, nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

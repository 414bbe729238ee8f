// Package archive packages generated topics, the navigation map, and
// extracted media into a single zip archive.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"

	"github.com/dgallion1/docx2dita/internal/dita"
)

// MapFilename is the navigation map's path inside the archive.
const MapFilename = "document.ditamap"

// Write serializes a generation result into zip bytes. Entries are written
// in a deterministic order: the map, then topics, then media by path.
func Write(res *dita.Result) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := addFile(zw, MapFilename, res.MapXML); err != nil {
		return nil, err
	}
	for _, topic := range res.Topics {
		if err := addFile(zw, topic.Filename, topic.Body); err != nil {
			return nil, err
		}
	}

	paths := make([]string, 0, len(res.Media))
	for p := range res.Media {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := addFile(zw, p, res.Media[p]); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func addFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

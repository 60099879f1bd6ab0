package ingest

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structure, the EPUB 2 table of contents.
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	Label    navLabel   `xml:"navLabel"`
	Content  navContent `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// ncxTitles maps spine hrefs to chapter titles from the NCX. A missing
// or broken NCX yields an empty map; sections then fall back to
// numbered titles.
func ncxTitles(filename string, root *epub.Rootfile) map[string]string {
	data, err := readNCX(filename, root)
	if err != nil {
		return map[string]string{}
	}
	titles, err := parseNCXTitles(data)
	if err != nil {
		return map[string]string{}
	}
	return titles
}

// parseNCXTitles extracts href to title pairs from NCX bytes. Each src
// is stored under every key it is known by, first occurrence winning,
// so lookups survive the varied ways books reference their files.
func parseNCXTitles(data []byte) (map[string]string, error) {
	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return nil, fmt.Errorf("parse ncx: %w", err)
	}

	titles := make(map[string]string)
	var walk func(points []navPoint)
	walk = func(points []navPoint) {
		for _, np := range points {
			title := strings.TrimSpace(np.Label.Text)
			for _, key := range hrefKeys(np.Content.Src) {
				if _, ok := titles[key]; !ok {
					titles[key] = title
				}
			}
			walk(np.Children)
		}
	}
	walk(toc.NavMap.NavPoints)
	return titles, nil
}

// hrefKeys returns the lookup keys one NCX src is known under: as
// written, without its fragment, and as a bare file name.
func hrefKeys(href string) []string {
	if href == "" {
		return nil
	}
	keys := []string{href}
	base := href
	if i := strings.Index(base, "#"); i != -1 {
		base = base[:i]
		if base != "" && base != href {
			keys = append(keys, base)
		}
	}
	if b := path.Base(base); b != "" && b != "." && b != base {
		keys = append(keys, b)
	}
	return keys
}

// readNCX locates the NCX inside the archive, preferring the manifest
// declaration and falling back to an extension scan.
func readNCX(filename string, root *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range root.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no ncx in archive")
	}

	// Manifest hrefs are relative to the rootfile directory, so match
	// by suffix and base name as well.
	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			r, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer r.Close()
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("ncx %s not in archive", ncxPath)
}

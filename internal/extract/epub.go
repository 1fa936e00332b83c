package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
)

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Titles   []string `xml:"metadata>title"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef  string `xml:"idref,attr"`
		Linear string `xml:"linear,attr"`
	} `xml:"spine>itemref"`
}

// extractEPUB reads the spine documents of an EPUB container in reading order.
func extractEPUB(p string) (Document, error) {
	if _, err := os.Stat(p); err != nil {
		return Document{}, &IOError{Path: p, Err: err}
	}
	zr, err := zip.OpenReader(p)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return Document{}, &FormatError{Path: p, Reason: "not a zip container"}
		}
		return Document{}, &IOError{Path: p, Err: err}
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			// Best-effort close for read-only archive.
			_ = cerr
		}
	}()
	return readEPUB(p, &zr.Reader)
}

func readEPUB(p string, zr *zip.Reader) (Document, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var container epubContainer
	if err := decodeZipXML(p, files, "META-INF/container.xml", &container); err != nil {
		return Document{}, err
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return Document{}, &FormatError{Path: p, Reason: "container.xml has no rootfile"}
	}
	opfPath := container.Rootfiles[0].FullPath

	var pkg epubPackage
	if err := decodeZipXML(p, files, opfPath, &pkg); err != nil {
		return Document{}, err
	}
	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}
	if len(pkg.Spine) == 0 {
		return Document{}, &FormatError{Path: p, Reason: "package has an empty spine"}
	}

	base := path.Dir(opfPath)
	var b strings.Builder
	for _, ref := range pkg.Spine {
		if ref.Linear == "no" {
			continue
		}
		href, ok := hrefs[ref.IDRef]
		if !ok {
			return Document{}, &FormatError{Path: p, Reason: fmt.Sprintf("spine item %q missing from manifest", ref.IDRef)}
		}
		name, err := url.PathUnescape(href)
		if err != nil {
			name = href
		}
		name = path.Join(base, name)
		f, ok := files[name]
		if !ok {
			return Document{}, &FormatError{Path: p, Reason: fmt.Sprintf("spine document %q missing from archive", name)}
		}
		rc, err := f.Open()
		if err != nil {
			return Document{}, &IOError{Path: p, Err: err}
		}
		chapter, err := htmlText(p, rc)
		if cerr := rc.Close(); cerr != nil {
			// Best-effort close for archive member.
			_ = cerr
		}
		if err != nil {
			return Document{}, err
		}
		b.WriteString(chapter.Text)
		b.WriteByte('\n')
	}

	title := ""
	if len(pkg.Titles) > 0 {
		title = pkg.Titles[0]
	}
	return Document{Title: title, Text: b.String()}, nil
}

func decodeZipXML(p string, files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return &FormatError{Path: p, Reason: fmt.Sprintf("missing %s", name)}
	}
	rc, err := f.Open()
	if err != nil {
		return &IOError{Path: p, Err: err}
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			// Best-effort close for archive member.
			_ = cerr
		}
	}()
	data, err := io.ReadAll(rc)
	if err != nil {
		return &IOError{Path: p, Err: err}
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return &FormatError{Path: p, Reason: fmt.Sprintf("malformed %s: %v", name, err)}
	}
	return nil
}

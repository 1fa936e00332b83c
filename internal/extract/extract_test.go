package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	path := writeFile(t, "notes.md", "# Field Notes\n\nThe  quick\tbrown fox.\n")
	doc, err := Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Title != "Field Notes" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if got := strings.Fields(doc.Text); strings.Join(got, " ") != "# Field Notes The quick brown fox." {
		t.Fatalf("unexpected text %q", doc.Text)
	}
}

func TestExtractTextTitleFallback(t *testing.T) {
	path := writeFile(t, "moby-dick.txt", "Call me Ishmael.\n")
	doc, err := Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Title != "moby-dick" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
}

func TestExtractNormalizesNFC(t *testing.T) {
	// "e" followed by a combining acute accent.
	path := writeFile(t, "accent.txt", "cafe\u0301\n")
	doc, err := Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(doc.Text) != "caf\u00e9" {
		t.Fatalf("expected composed text, got %q", doc.Text)
	}
}

func TestExtractHTML(t *testing.T) {
	path := writeFile(t, "page.html", `<html><head><title>A Page</title><style>p{}</style></head>
<body><h1>Heading</h1><p>First<br>line</p><script>var x;</script><p>Second</p></body></html>`)
	doc, err := Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Title != "A Page" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if got := strings.Join(strings.Fields(doc.Text), " "); got != "Heading First line Second" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractEPUBSpineOrder(t *testing.T) {
	path := writeEPUB(t, map[string]string{
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Tiny Book</dc:title></metadata>
  <manifest>
    <item id="c1" href="text/one.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/two%20b.xhtml" media-type="application/xhtml+xml"/>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="c2"/><itemref idref="nav" linear="no"/><itemref idref="c1"/></spine>
</package>`,
		"OEBPS/text/one.xhtml":   `<html><body><p>Chapter one.</p></body></html>`,
		"OEBPS/text/two b.xhtml": `<html><body><p>Chapter two.</p></body></html>`,
		"OEBPS/nav.xhtml":        `<html><body><p>Contents</p></body></html>`,
	})
	doc, err := Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Title != "Tiny Book" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if got := strings.Join(strings.Fields(doc.Text), " "); got != "Chapter two. Chapter one." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractEPUBMissingContainer(t *testing.T) {
	path := writeEPUB(t, map[string]string{"mimetype": "application/epub+zip"})
	_, err := Extract(path)
	var ferr *FormatError
	if !errors.As(err, &ferr) || !errors.Is(err, ErrFormat) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestExtractEPUBNotZip(t *testing.T) {
	path := writeFile(t, "fake.epub", "plain text pretending")
	if _, err := Extract(path); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "slides.pptx", "binary")
	if _, err := Extract(path); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "gone.txt"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) || !errors.Is(err, ErrIO) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeEPUB(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create epub: %v", err)
	}
	zw := zip.NewWriter(out)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close epub: %v", err)
	}
	return path
}

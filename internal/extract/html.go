package extract

import (
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func extractHTMLFile(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, &IOError{Path: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()
	return htmlText(path, file)
}

// htmlText returns the <title> and visible text of an HTML or XHTML document.
// Block-level elements are separated by newlines.
func htmlText(path string, r io.Reader) (Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Document{}, &FormatError{Path: path, Reason: "malformed HTML: " + err.Error()}
	}
	var (
		b     strings.Builder
		title string
		walk  func(n *html.Node)
	)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			case atom.Title:
				if title == "" {
					title = strings.TrimSpace(nodeText(n))
				}
				return
			case atom.Br:
				b.WriteByte('\n')
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
			return
		}
		block := n.Type == html.ElementNode && isBlock(n.DataAtom)
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	walk(root)
	return Document{Title: title, Text: b.String()}, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Ul, atom.Ol, atom.Pre, atom.Tr, atom.Table, atom.Hr,
		atom.Header, atom.Footer, atom.Aside, atom.Figure, atom.Figcaption:
		return true
	}
	return false
}

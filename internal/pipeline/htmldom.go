package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses a full document or a fragment.
// Fragments are parsed in a <body> context and returned under a synthetic
// document node; the boolean reports which case applied.
func ParseHTML(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

// RenderHTML serializes a node tree produced by ParseHTML.
// Fragments render their children only, without an <html><body> wrapper.
func RenderHTML(doc *html.Node, fragment bool) (string, error) {
	var buf strings.Builder
	if !fragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Walk calls fn for every element node in document order.
func Walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// CollectIDs returns every id attribute in document order, duplicates included.
func CollectIDs(content string) ([]string, error) {
	doc, _, err := ParseHTML(content)
	if err != nil {
		return nil, err
	}
	var ids []string
	Walk(doc, func(n *html.Node) {
		if id, ok := Attr(n, "id"); ok {
			ids = append(ids, id)
		}
	})
	return ids, nil
}

// RewriteRelativePaths turns relative img[src] and a[href] paths into
// file:// URLs under baseDir. Used when the site is rendered from a temporary
// file, where relative links would no longer resolve. Anchors, URLs, absolute
// paths and paths escaping baseDir are left untouched. An empty baseDir
// returns the content unchanged.
func RewriteRelativePaths(content, baseDir string) (string, error) {
	if baseDir == "" {
		return content, nil
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, fragment, err := ParseHTML(content)
	if err != nil {
		return "", err
	}

	Walk(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Img:
			rewritePathAttr(n, "src", absBase)
		case atom.A:
			rewritePathAttr(n, "href", absBase)
		}
	})

	return RenderHTML(doc, fragment)
}

func rewritePathAttr(n *html.Node, key, base string) {
	val, ok := Attr(n, key)
	if !ok || !isRelativePath(val) {
		return
	}
	abs := filepath.Join(base, val)
	if !isUnder(abs, base) {
		return
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	SetAttr(n, key, u.String())
}

func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || filepath.IsAbs(p) {
		return false
	}
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "mailto:", "//"} {
		if strings.HasPrefix(p, prefix) {
			return false
		}
	}
	return true
}

func isUnder(path, dir string) bool {
	dir = filepath.Clean(dir)
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(path)+string(filepath.Separator), dir)
}

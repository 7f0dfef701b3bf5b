package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractText returns the visible text of an HTML fragment. Block-level
// elements and <br> become line breaks so sentences do not run together.
// Input without markup comes back with whitespace collapsed per line.
func ExtractText(fragment string) (string, error) {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && breaksLine(n.Data) {
			b.WriteByte('\n')
		}
	}
	walk(root)

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

func breaksLine(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
		"section", "article", "tr", "table", "header", "footer":
		return true
	}
	return false
}

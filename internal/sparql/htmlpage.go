package sparql

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxDetailLen bounds the length of a body summary used in errors and logs.
const maxDetailLen = 200

// looksLikeHTML reports whether body starts like an HTML document.
func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	lower := bytes.ToLower(trimmed[:min(len(trimmed), 64)])
	return bytes.HasPrefix(lower, []byte("<!doctype html")) ||
		bytes.HasPrefix(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<head")) ||
		bytes.Contains(lower, []byte("<body"))
}

// htmlSummary returns the <title> of an HTML page, or the first text inside
// its body when there is no title. It returns "" when body is not HTML.
func htmlSummary(body []byte) string {
	if !looksLikeHTML(body) {
		return ""
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var title, firstText string
	var walk func(n *html.Node, inBody bool)
	walk = func(n *html.Node, inBody bool) {
		if title != "" {
			return
		}
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "script", "style":
				return
			case "body":
				inBody = true
			}
		case html.TextNode:
			if inBody && firstText == "" {
				firstText = strings.TrimSpace(n.Data)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}
	walk(doc, false)

	if title != "" {
		return truncate(collapseSpace(title))
	}
	return truncate(collapseSpace(firstText))
}

// bodyDetail summarizes an error body for diagnostics: the HTML summary
// for pages, otherwise the first non-empty line of text.
func bodyDetail(body []byte) string {
	if s := htmlSummary(body); s != "" {
		return s
	}
	if !utf8.Valid(body) {
		return ""
	}
	for line := range strings.SplitSeq(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return truncate(line)
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDetailLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxDetailLen-3]) + "..."
}

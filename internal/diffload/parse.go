package diffload

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParseAddedText extracts the added side of a MediaWiki diff table body.
//
// Fully added lines are whole td.diff-addedline cells. Changed lines carry
// the inserted fragments in ins.diffchange spans inside the cell; only
// those spans count as added text. With merge enabled, two spans separated
// by exactly one space in the rendering are joined into one fragment, so a
// single continuous change is not counted as two short deltas. Fragments
// are concatenated line by line; HTML entities come out decoded.
func ParseAddedText(diffBody string, merge bool) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + diffBody + "</table>"))
	if err != nil {
		return "", fmt.Errorf("parse diff html: %w", err)
	}

	var fragments []string
	doc.Find("td.diff-addedline").Each(func(_ int, cell *goquery.Selection) {
		deltas := cell.Find(".diffchange")
		if deltas.Length() == 0 {
			// Whole line added.
			if text := cell.Text(); strings.TrimSpace(text) != "" {
				fragments = append(fragments, text)
			}
			return
		}
		fragments = append(fragments, cellDeltas(cell, merge)...)
	})

	return strings.Join(fragments, "\n"), nil
}

// cellDeltas walks one changed cell and returns its inserted fragments,
// merging adjacent deltas separated by a single space when merge is set.
func cellDeltas(cell *goquery.Selection, merge bool) []string {
	type piece struct {
		text  string
		delta bool
	}

	var pieces []piece
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasClass(c, "diffchange") {
				pieces = append(pieces, piece{text: nodeText(c), delta: true})
				continue
			}
			if c.Type == html.TextNode {
				pieces = append(pieces, piece{text: c.Data})
				continue
			}
			walk(c)
		}
	}
	for _, n := range cell.Nodes {
		walk(n)
	}

	var out []string
	for i := 0; i < len(pieces); i++ {
		if !pieces[i].delta {
			continue
		}
		current := pieces[i].text
		// Merge rule: delta, single-space text node, delta. Applied
		// left to right, not recursively re-examined.
		for merge && i+2 < len(pieces) &&
			pieces[i+1].text == " " && !pieces[i+1].delta &&
			pieces[i+2].delta {
			current += " " + pieces[i+2].text
			i += 2
		}
		if strings.TrimSpace(current) != "" {
			out = append(out, current)
		}
	}
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Package normalizer turns predicted and ground-truth table HTML into the
// canonical markup the tree builder consumes.
package normalizer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind tells Normalize which side of a comparison the markup comes from.
type Kind int

const (
	KindPrediction Kind = iota
	KindGroundTruth
)

func (k Kind) String() string {
	if k == KindGroundTruth {
		return "ground_truth"
	}
	return "prediction"
}

// scrubTokens are deleted verbatim, in order, from the attribute-free markup.
// The colspan/rowspan forms cover inputs that reach Clean without going
// through StripAttributes.
var scrubTokens = buildScrubTokens()

const maxSpan = 30

func buildScrubTokens() []string {
	tokens := []string{
		"<thead>", "</thead>",
		"<tbody>", "</tbody>",
		"<sup>", "</sup>",
		"<sub>", "</sub>",
		"\u00a0",
		"<p>", "</p>",
	}
	for i := 0; i <= maxSpan; i++ {
		tokens = append(tokens, fmt.Sprintf(`colspan="%d"`, i))
	}
	for i := 0; i <= maxSpan; i++ {
		tokens = append(tokens, fmt.Sprintf(`rowspan="%d"`, i))
	}
	return tokens
}

var headerCells = strings.NewReplacer("<th", "<td", "</th>", "</td>")

// Normalize produces canonical HTML for one side of a comparison. Ground
// truth is wrapped in <html>...</html>; predictions are assumed complete.
func Normalize(src string, kind Kind) string {
	out := Preprocess(src)
	if kind == KindGroundTruth {
		out = "<html>" + out + "</html>"
	}
	return out
}

// Preprocess strips attributes and then applies Clean. If the markup cannot
// be parsed at all the attribute pass is skipped and Clean still runs.
func Preprocess(src string) string {
	stripped, err := StripAttributes(src)
	if err != nil {
		stripped = src
	}
	return Clean(stripped)
}

// Clean collapses whitespace, deletes the scrub tokens and rewrites header
// cells as data cells. It works on the literal string, not on a DOM, so the
// tokens are removed from cell text too. Deleting a token can leave two
// spaces side by side, so whitespace is collapsed again at the end.
func Clean(src string) string {
	out := CollapseWhitespace(src)
	for _, tok := range scrubTokens {
		out = strings.ReplaceAll(out, tok, "")
	}
	return CollapseWhitespace(headerCells.Replace(out))
}

// CollapseWhitespace replaces every run of Unicode whitespace with a single
// space and trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripAttributes parses src as HTML, clears the attributes of every
// element and serializes the document content back to markup.
func StripAttributes(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			n.Attr = nil
		}
	})

	var sb strings.Builder
	sections := doc.Find("head, body")
	if sections.Length() == 0 {
		for _, n := range doc.Nodes {
			renderChildren(&sb, n)
		}
		return sb.String(), nil
	}
	sections.Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			renderChildren(&sb, n)
		}
	})
	return sb.String(), nil
}

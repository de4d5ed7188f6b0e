// Package parser builds labeled trees from canonical table HTML.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/tree"
)

var (
	// ErrNoTableRoot means the markup contains no <table> element.
	ErrNoTableRoot = errors.New("no table root")
	// ErrParse means the markup could not be parsed at all.
	ErrParse = errors.New("parse error")
)

const (
	ErrorTypeNoTableRoot = "no_table_root"
	ErrorTypeParse       = "parse_error"
)

// BuildError records which side of a comparison failed to become a tree.
type BuildError struct {
	Side string // "prediction" or "ground_truth"; empty when unknown
	Err  error
}

func (e *BuildError) Error() string {
	if e.Side == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Side, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ErrorType maps a build failure to the short code used in reports.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoTableRoot):
		return ErrorTypeNoTableRoot
	case errors.Is(err, ErrParse):
		return ErrorTypeParse
	default:
		return "error"
	}
}

// Parser turns canonical table HTML into a labeled tree.
type Parser struct {
	Mode models.Mode
}

// Parse builds the tree rooted at the first <table> in src.
func (p *Parser) Parse(src string) (*tree.Tree, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTableRoot
	}

	b := builder{
		structureOnly: p.Mode.StructureOnly(),
		// The HTML5 parser inserts tbody around bare rows. When the markup
		// has no tbody start tag of its own, every tbody in the DOM is
		// synthetic and is flattened into its parent.
		flattenTbody: !hasStartTag(src, "tbody"),
	}
	return tree.New(b.build(table.Nodes[0])), nil
}

// Build is a shorthand for (&Parser{Mode: mode}).Parse(src).
func Build(src string, mode models.Mode) (*tree.Tree, error) {
	p := &Parser{Mode: mode}
	return p.Parse(src)
}

type builder struct {
	structureOnly bool
	flattenTbody  bool
}

func (b *builder) build(n *html.Node) *tree.Node {
	node := tree.NewNode(b.label(n))
	b.addChildren(node, n)
	return node
}

// addChildren appends the element children of n to node in document order.
// Text and comment nodes never become tree nodes.
func (b *builder) addChildren(node *tree.Node, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if b.flattenTbody && c.Data == "tbody" {
			b.addChildren(node, c)
			continue
		}
		node.AddChild(b.build(c))
	}
}

func (b *builder) label(n *html.Node) string {
	if b.structureOnly || n.Data != "td" {
		return n.Data
	}
	return n.Data + ":" + strings.TrimSpace(nodeText(n))
}

// nodeText concatenates every descendant text node, like Selection.Text.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// hasStartTag reports whether src opens an element named tag. Comments,
// text and raw text content are tokenized as such and never match.
func hasStartTag(src, tag string) bool {
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				return true
			}
		}
	}
}

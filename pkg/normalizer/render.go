package normalizer

import (
	"strings"

	"golang.org/x/net/html"
)

// html.Render escapes quotes in text nodes, which would hide literal
// colspan="N" text from Clean. This serializer only escapes &, < and >.
// Comments are dropped; they never reach the tree.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

var rawTextElements = map[string]bool{
	"script": true, "style": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "plaintext": true,
}

func renderChildren(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(sb, c)
	}
}

func render(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if n.Parent != nil && n.Parent.Type == html.ElementNode && rawTextElements[n.Parent.Data] {
			sb.WriteString(n.Data)
			return
		}
		textEscaper.WriteString(sb, n.Data)
	case html.DoctypeNode:
		sb.WriteString("<!DOCTYPE ")
		sb.WriteString(n.Data)
		sb.WriteString(">")
	case html.DocumentNode:
		renderChildren(sb, n)
	case html.ElementNode:
		sb.WriteString("<")
		sb.WriteString(n.Data)
		for _, a := range n.Attr {
			sb.WriteString(" ")
			sb.WriteString(a.Key)
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(a.Val))
			sb.WriteString(`"`)
		}
		sb.WriteString(">")
		if voidElements[n.Data] {
			return
		}
		renderChildren(sb, n)
		sb.WriteString("</")
		sb.WriteString(n.Data)
		sb.WriteString(">")
	}
}

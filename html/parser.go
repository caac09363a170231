// Package html parses markup into dom document trees using
// golang.org/x/net/html as the underlying parser implementation.
package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mgrady/customel/dom"
)

// Parse parses an HTML string and returns the resulting document.
func Parse(content string) (*dom.Document, error) {
	return ParseReader(strings.NewReader(content))
}

// ParseReader parses HTML from an io.Reader and returns the resulting document.
func ParseReader(r io.Reader) (*dom.Document, error) {
	netNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := dom.NewDocument()
	for c := netNode.FirstChild; c != nil; c = c.NextSibling {
		if converted := convertNode(doc, c); converted != nil {
			if err := doc.AppendChild(converted); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// ParseFragment parses an HTML fragment in the context of an element and
// returns the parsed nodes, owned by the context element's document.
func ParseFragment(fragment string, context *dom.Element) ([]*dom.Node, error) {
	doc := context.OwnerDocument()
	contextNode := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(context.LocalName())),
		Data:     context.LocalName(),
	}
	netNodes, err := html.ParseFragment(strings.NewReader(fragment), contextNode)
	if err != nil {
		return nil, err
	}
	var nodes []*dom.Node
	for _, nn := range netNodes {
		if converted := convertNode(doc, nn); converted != nil {
			nodes = append(nodes, converted)
		}
	}
	return nodes, nil
}

// convertNode converts a golang.org/x/net/html node into a dom node owned
// by doc. Node kinds outside the dom package's model return nil.
func convertNode(doc *dom.Document, n *html.Node) *dom.Node {
	switch n.Type {
	case html.ElementNode:
		is := ""
		for _, attr := range n.Attr {
			if attr.Key == "is" {
				is = attr.Val
				break
			}
		}
		el := doc.CreateElementIs(n.Data, is)
		for _, attr := range n.Attr {
			if attr.Key == "is" {
				continue // already set at creation
			}
			el.SetAttribute(attr.Key, attr.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convertNode(doc, c); child != nil {
				_ = el.AppendChild(child)
			}
		}
		return el.AsNode()
	case html.TextNode:
		return doc.CreateTextNode(n.Data)
	case html.CommentNode:
		return doc.CreateComment(n.Data)
	default:
		// doctype and error nodes are dropped
		return nil
	}
}

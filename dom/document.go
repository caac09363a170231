package dom

import (
	"strings"
)

// Document represents an HTML document.
type Document Node

// NewDocument creates a new empty HTML Document.
func NewDocument() *Document {
	node := newNode(DocumentNode, "#document", nil)
	node.documentData = &documentData{
		contentType: "text/html",
	}
	doc := (*Document)(node)
	node.ownerDoc = doc
	return doc
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// ContentType returns the MIME type of the document.
func (d *Document) ContentType() string {
	if d.AsNode().documentData.contentType == "" {
		return "text/html"
	}
	return d.AsNode().documentData.contentType
}

// CreateElement creates a new element with the given tag name.
// The element is owned by this document but not yet part of its tree.
func (d *Document) CreateElement(tagName string) *Element {
	return d.CreateElementIs(tagName, "")
}

// CreateElementIs creates a new element with the given tag name and
// customized built-in extension identifier (the is option). The identifier
// is recorded at creation time and cannot change afterwards.
func (d *Document) CreateElementIs(tagName, is string) *Element {
	localName := strings.ToLower(tagName)
	node := newNode(ElementNode, strings.ToUpper(tagName), d)
	node.elementData = &elementData{
		localName: localName,
		tagName:   strings.ToUpper(tagName),
		isValue:   is,
	}
	el := (*Element)(node)
	if is != "" {
		el.SetAttribute("is", is)
	}
	return el
}

// CreateTextNode creates a new text node owned by this document.
func (d *Document) CreateTextNode(data string) *Node {
	node := newNode(TextNode, "#text", d)
	node.textData = &data
	return node
}

// CreateComment creates a new comment node owned by this document.
func (d *Document) CreateComment(data string) *Node {
	node := newNode(CommentNode, "#comment", d)
	node.commentData = &data
	return node
}

// DocumentElement returns the root element of the document, or nil.
func (d *Document) DocumentElement() *Element {
	for c := d.AsNode().firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// AppendChild adds child to the end of the document's children.
func (d *Document) AppendChild(child *Node) error {
	return d.AsNode().AppendChild(child)
}

// GetElementById returns the first element in document order whose id
// attribute equals id, or nil.
func (d *Document) GetElementById(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	d.ForEachElement(func(el *Element) {
		if found == nil && el.ID() == id {
			found = el
		}
	})
	return found
}

// GetElementsByTagName returns all elements with the given tag name in
// document order. "*" matches every element.
func (d *Document) GetElementsByTagName(tagName string) []*Element {
	localName := strings.ToLower(tagName)
	var result []*Element
	d.ForEachElement(func(el *Element) {
		if tagName == "*" || el.LocalName() == localName {
			result = append(result, el)
		}
	})
	return result
}

// ForEachElement visits every element in the document in document order.
func (d *Document) ForEachElement(visit func(*Element)) {
	for c := d.AsNode().firstChild; c != nil; c = c.nextSibling {
		forEachElement(c, visit)
	}
}

package dom

import (
	"strings"
)

// Attribute is a single name/value pair on an element. Attributes keep the
// order in which they were first set.
type Attribute struct {
	Name  string
	Value string
}

// Element represents an element in the document tree.
// Element inherits from Node and provides element-specific properties and methods.
type Element Node

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// NodeType returns ElementNode (1).
func (e *Element) NodeType() NodeType {
	return ElementNode
}

// TagName returns the tag name in uppercase.
func (e *Element) TagName() string {
	if e.AsNode().elementData != nil {
		return e.AsNode().elementData.tagName
	}
	return strings.ToUpper(e.AsNode().nodeName)
}

// LocalName returns the lowercase local name of the element.
func (e *Element) LocalName() string {
	if e.AsNode().elementData != nil {
		return e.AsNode().elementData.localName
	}
	return strings.ToLower(e.AsNode().nodeName)
}

// Is returns the customized built-in extension identifier the element was
// created with (the is="" value), or "" for ordinary elements. Per the
// custom elements specification this is fixed at creation time.
func (e *Element) Is() string {
	if e.AsNode().elementData != nil {
		return e.AsNode().elementData.isValue
	}
	return ""
}

// Attributes returns the element's attributes in the order they were first set.
func (e *Element) Attributes() []Attribute {
	data := e.AsNode().elementData
	if data == nil {
		return nil
	}
	attrs := make([]Attribute, len(data.attributes))
	copy(attrs, data.attributes)
	return attrs
}

// GetAttribute returns the value of the named attribute, or "" if absent.
func (e *Element) GetAttribute(name string) string {
	name = strings.ToLower(name)
	for _, attr := range e.AsNode().elementData.attributes {
		if attr.Name == name {
			return attr.Value
		}
	}
	return ""
}

// HasAttribute returns true if the element has the named attribute.
func (e *Element) HasAttribute(name string) bool {
	name = strings.ToLower(name)
	for _, attr := range e.AsNode().elementData.attributes {
		if attr.Name == name {
			return true
		}
	}
	return false
}

// SetAttribute sets an attribute value, creating it if it doesn't exist.
// Observers are notified even when the new value equals the old one,
// matching native attribute mutation records.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	data := e.AsNode().elementData
	for i, attr := range data.attributes {
		if attr.Name == name {
			oldValue := attr.Value
			data.attributes[i].Value = value
			notifyAttributeChanged(e, name, oldValue, value)
			return
		}
	}
	data.attributes = append(data.attributes, Attribute{Name: name, Value: value})
	notifyAttributeChanged(e, name, "", value)
}

// RemoveAttribute removes the named attribute. Removing an absent
// attribute is a no-op and produces no notification.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	data := e.AsNode().elementData
	for i, attr := range data.attributes {
		if attr.Name == name {
			oldValue := attr.Value
			data.attributes = append(data.attributes[:i], data.attributes[i+1:]...)
			notifyAttributeChanged(e, name, oldValue, "")
			return
		}
	}
}

// ID returns the element's id attribute.
func (e *Element) ID() string {
	return e.GetAttribute("id")
}

// IsConnected returns true when the element's root is its owner document.
func (e *Element) IsConnected() bool {
	return e.AsNode().IsConnected()
}

// OwnerDocument returns the Document that owns this element.
func (e *Element) OwnerDocument() *Document {
	return e.AsNode().OwnerDocument()
}

// AppendChild adds child to the end of this element's children.
func (e *Element) AppendChild(child *Node) error {
	return e.AsNode().AppendChild(child)
}

// RemoveChild removes child from this element's children.
func (e *Element) RemoveChild(child *Node) error {
	return e.AsNode().RemoveChild(child)
}

// Remove detaches the element from its parent, if any.
func (e *Element) Remove() {
	if parent := e.AsNode().parentNode; parent != nil {
		_ = parent.RemoveChild(e.AsNode())
	}
}

// TextContent returns the concatenated text of the element's descendants.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

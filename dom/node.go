package dom

import (
	"strings"
)

// Node represents a node in the document tree. Element, Document, Text and
// Comment all share this underlying struct; type-specific data hangs off the
// pointers below.
type Node struct {
	nodeType   NodeType
	nodeName   string
	ownerDoc   *Document
	parentNode *Node

	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Type-specific data (only one is non-nil based on nodeType)
	elementData  *elementData
	textData     *string
	commentData  *string
	documentData *documentData
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName  string
	tagName    string
	isValue    string // the is="" extension identifier, fixed at creation
	attributes []Attribute
}

// documentData holds data specific to Document nodes.
type documentData struct {
	contentType string
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node.
// For elements, this is the tag name in uppercase.
// For text nodes, this is "#text"; for comments, "#comment";
// for documents, "#document".
func (n *Node) NodeName() string {
	return n.nodeName
}

// OwnerDocument returns the Document that owns this node.
// For Document nodes, this returns nil.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent Element, or nil if the parent is not an element.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// ChildNodes returns a snapshot slice of the node's children.
func (n *Node) ChildNodes() []*Node {
	var children []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		children = append(children, c)
	}
	return children
}

// AsElement returns the node as an Element, or nil if it is not one.
func (n *Node) AsElement() *Element {
	if n.nodeType != ElementNode {
		return nil
	}
	return (*Element)(n)
}

// IsConnected returns true when the node's root is its owner document.
func (n *Node) IsConnected() bool {
	root := n
	for root.parentNode != nil {
		root = root.parentNode
	}
	return root.nodeType == DocumentNode
}

// AppendChild adds child to the end of this node's children.
// A child already in a tree is removed from its old position first; the
// move fires at most one disconnect and one connect notification per
// element in the subtree.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts newChild before refChild. A nil refChild appends.
func (n *Node) InsertBefore(newChild, refChild *Node) error {
	if newChild == nil {
		return ErrHierarchyRequest("node to insert is nil")
	}
	if newChild.nodeType == DocumentNode {
		return ErrHierarchyRequest("a document cannot be inserted")
	}
	for a := n; a != nil; a = a.parentNode {
		if a == newChild {
			return ErrHierarchyRequest("node cannot contain itself")
		}
	}
	if refChild != nil && refChild.parentNode != n {
		return ErrNotFound("reference child is not a child of this node")
	}
	// Inserting a node before itself keeps it in place: resolve the
	// reference to its next sibling before the removal below detaches it.
	if newChild == refChild {
		refChild = newChild.nextSibling
	}

	if newChild.parentNode != nil {
		if err := newChild.parentNode.RemoveChild(newChild); err != nil {
			return err
		}
	}

	newChild.parentNode = n
	newChild.ownerDoc = n.ownerDoc
	if refChild == nil {
		newChild.prevSibling = n.lastChild
		newChild.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		n.lastChild = newChild
	} else {
		newChild.nextSibling = refChild
		newChild.prevSibling = refChild.prevSibling
		if refChild.prevSibling != nil {
			refChild.prevSibling.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		refChild.prevSibling = newChild
	}

	if newChild.IsConnected() {
		notifyConnectedSubtree(newChild)
	}
	return nil
}

// RemoveChild removes child from this node's children.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parentNode != n {
		return ErrNotFound("node to remove is not a child of this node")
	}

	wasConnected := child.IsConnected()

	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil

	if wasConnected {
		notifyDisconnectedSubtree(child)
	}
	return nil
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.collectTextContent(&sb)
	return sb.String()
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	switch n.nodeType {
	case TextNode:
		if n.textData != nil {
			sb.WriteString(*n.textData)
		}
	case CommentNode:
		// comments contribute nothing
	default:
		for c := n.firstChild; c != nil; c = c.nextSibling {
			c.collectTextContent(sb)
		}
	}
}

// forEachElement visits n and its descendant elements in document order.
func forEachElement(n *Node, visit func(*Element)) {
	if n.nodeType == ElementNode {
		visit((*Element)(n))
	}
	for c := n.firstChild; c != nil; c = c.nextSibling {
		forEachElement(c, visit)
	}
}

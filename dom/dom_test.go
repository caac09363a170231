package dom

import (
	"testing"
)

// recordingObserver collects lifecycle notifications for assertions.
type recordingObserver struct {
	connected    []*Element
	disconnected []*Element
	attrChanges  []attrChange
}

type attrChange struct {
	el       *Element
	name     string
	oldValue string
	newValue string
}

func (r *recordingObserver) OnElementConnected(el *Element) {
	r.connected = append(r.connected, el)
}

func (r *recordingObserver) OnElementDisconnected(el *Element) {
	r.disconnected = append(r.disconnected, el)
}

func (r *recordingObserver) OnAttributeChanged(el *Element, name, oldValue, newValue string) {
	r.attrChanges = append(r.attrChanges, attrChange{el, name, oldValue, newValue})
}

func TestCreateElement(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("button")

	if el.TagName() != "BUTTON" {
		t.Errorf("TagName = %q, want BUTTON", el.TagName())
	}
	if el.LocalName() != "button" {
		t.Errorf("LocalName = %q, want button", el.LocalName())
	}
	if el.Is() != "" {
		t.Errorf("Is = %q, want empty", el.Is())
	}
	if el.IsConnected() {
		t.Error("detached element reports connected")
	}
	if el.OwnerDocument() != doc {
		t.Error("OwnerDocument mismatch")
	}
}

func TestCreateElementIs(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElementIs("button", "fancy-button")

	if el.Is() != "fancy-button" {
		t.Errorf("Is = %q, want fancy-button", el.Is())
	}
	if el.GetAttribute("is") != "fancy-button" {
		t.Errorf("is attribute = %q, want fancy-button", el.GetAttribute("is"))
	}
}

func TestAppendChildConnects(t *testing.T) {
	doc := NewDocument()
	obs := &recordingObserver{}
	RegisterLifecycleObserver(doc, obs)

	root := doc.CreateElement("html")
	child := doc.CreateElement("button")
	if err := root.AppendChild(child.AsNode()); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	if len(obs.connected) != 0 {
		t.Errorf("detached subtree produced %d connect notifications", len(obs.connected))
	}

	if err := doc.AppendChild(root.AsNode()); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	if !child.IsConnected() {
		t.Error("child not connected after document insertion")
	}
	// Document order: root before child.
	if len(obs.connected) != 2 || obs.connected[0] != root || obs.connected[1] != child {
		t.Errorf("connect notifications = %v, want [root child]", obs.connected)
	}
}

func TestRemoveChildDisconnects(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("html")
	child := doc.CreateElement("div")
	_ = root.AppendChild(child.AsNode())
	_ = doc.AppendChild(root.AsNode())

	obs := &recordingObserver{}
	RegisterLifecycleObserver(doc, obs)

	if err := root.RemoveChild(child.AsNode()); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	if child.IsConnected() {
		t.Error("child still connected after removal")
	}
	if len(obs.disconnected) != 1 || obs.disconnected[0] != child {
		t.Errorf("disconnect notifications = %v, want [child]", obs.disconnected)
	}
}

func TestMoveFiresDisconnectThenConnect(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("html")
	a := doc.CreateElement("div")
	b := doc.CreateElement("section")
	el := doc.CreateElement("button")
	_ = doc.AppendChild(root.AsNode())
	_ = root.AppendChild(a.AsNode())
	_ = root.AppendChild(b.AsNode())
	_ = a.AppendChild(el.AsNode())

	obs := &recordingObserver{}
	RegisterLifecycleObserver(doc, obs)

	// Moving within the connected tree: exactly one disconnect and one connect.
	if err := b.AppendChild(el.AsNode()); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	if len(obs.disconnected) != 1 || obs.disconnected[0] != el {
		t.Errorf("disconnect notifications = %v, want [el]", obs.disconnected)
	}
	if len(obs.connected) != 1 || obs.connected[0] != el {
		t.Errorf("connect notifications = %v, want [el]", obs.connected)
	}
}

func TestConnectDisconnectCycles(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("html")
	_ = doc.AppendChild(root.AsNode())
	el := doc.CreateElement("button")

	obs := &recordingObserver{}
	RegisterLifecycleObserver(doc, obs)

	const cycles = 3
	for i := 0; i < cycles; i++ {
		_ = root.AppendChild(el.AsNode())
		_ = root.RemoveChild(el.AsNode())
	}
	if len(obs.connected) != cycles {
		t.Errorf("connect notifications = %d, want %d", len(obs.connected), cycles)
	}
	if len(obs.disconnected) != cycles {
		t.Errorf("disconnect notifications = %d, want %d", len(obs.disconnected), cycles)
	}
}

func TestInsertBefore(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div")
	first := doc.CreateElement("span")
	second := doc.CreateElement("em")
	_ = parent.AppendChild(second.AsNode())
	if err := parent.AsNode().InsertBefore(first.AsNode(), second.AsNode()); err != nil {
		t.Fatalf("InsertBefore failed: %v", err)
	}

	children := parent.AsNode().ChildNodes()
	if len(children) != 2 || children[0] != first.AsNode() || children[1] != second.AsNode() {
		t.Errorf("children order wrong: %v", children)
	}
}

func TestInsertBeforeSelf(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("html")
	_ = doc.AppendChild(root.AsNode())
	parent := doc.CreateElement("ul")
	_ = root.AppendChild(parent.AsNode())
	a := doc.CreateElement("li")
	b := doc.CreateElement("li")
	c := doc.CreateElement("li")
	_ = parent.AppendChild(a.AsNode())
	_ = parent.AppendChild(b.AsNode())
	_ = parent.AppendChild(c.AsNode())

	obs := &recordingObserver{}
	RegisterLifecycleObserver(doc, obs)

	// Inserting a node before itself leaves it in place.
	if err := parent.AsNode().InsertBefore(b.AsNode(), b.AsNode()); err != nil {
		t.Fatalf("InsertBefore failed: %v", err)
	}
	children := parent.AsNode().ChildNodes()
	if len(children) != 3 || children[0] != a.AsNode() || children[1] != b.AsNode() || children[2] != c.AsNode() {
		t.Errorf("children order wrong: %v", children)
	}
	if b.AsNode().NextSibling() != c.AsNode() {
		t.Error("nextSibling does not point past the reinserted node")
	}
	if b.AsNode().PreviousSibling() != a.AsNode() {
		t.Error("previousSibling does not point at the preceding node")
	}
	// Treated as a move: one disconnect, one connect.
	if len(obs.disconnected) != 1 || obs.disconnected[0] != b {
		t.Errorf("disconnect notifications = %v, want [b]", obs.disconnected)
	}
	if len(obs.connected) != 1 || obs.connected[0] != b {
		t.Errorf("connect notifications = %v, want [b]", obs.connected)
	}

	// Same invariant for the last child: the resolved reference is nil.
	if err := parent.AsNode().InsertBefore(c.AsNode(), c.AsNode()); err != nil {
		t.Fatalf("InsertBefore failed: %v", err)
	}
	if last := parent.AsNode().LastChild(); last != c.AsNode() {
		t.Errorf("last child = %v, want c", last)
	}
}

func TestInsertHierarchyErrors(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div")
	child := doc.CreateElement("span")
	_ = parent.AppendChild(child.AsNode())

	if err := child.AppendChild(parent.AsNode()); err == nil {
		t.Error("inserting an ancestor into its descendant should fail")
	}
	if err := parent.AppendChild(doc.AsNode()); err == nil {
		t.Error("inserting a document should fail")
	}
	orphan := doc.CreateElement("i")
	if err := parent.AsNode().InsertBefore(doc.CreateElement("b").AsNode(), orphan.AsNode()); err == nil {
		t.Error("InsertBefore with non-child reference should fail")
	}
}

func TestAttributesOrderPreserved(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("input")
	el.SetAttribute("type", "text")
	el.SetAttribute("name", "q")
	el.SetAttribute("value", "hello")
	el.SetAttribute("type", "search") // update must not reorder

	attrs := el.Attributes()
	want := []Attribute{
		{Name: "type", Value: "search"},
		{Name: "name", Value: "q"},
		{Name: "value", Value: "hello"},
	}
	if len(attrs) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(attrs), len(want))
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Errorf("attribute %d = %+v, want %+v", i, attrs[i], want[i])
		}
	}
}

func TestAttributeNotifications(t *testing.T) {
	doc := NewDocument()
	obs := &recordingObserver{}
	RegisterLifecycleObserver(doc, obs)

	el := doc.CreateElement("div")
	el.SetAttribute("data-x", "1")
	el.SetAttribute("data-x", "1") // same value still notifies
	el.RemoveAttribute("data-x")
	el.RemoveAttribute("data-x") // absent: no notification

	want := []attrChange{
		{el, "data-x", "", "1"},
		{el, "data-x", "1", "1"},
		{el, "data-x", "1", ""},
	}
	if len(obs.attrChanges) != len(want) {
		t.Fatalf("got %d attribute notifications, want %d", len(obs.attrChanges), len(want))
	}
	for i := range want {
		if obs.attrChanges[i] != want[i] {
			t.Errorf("notification %d = %+v, want %+v", i, obs.attrChanges[i], want[i])
		}
	}
}

func TestGetElementById(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("html")
	el := doc.CreateElement("button")
	el.SetAttribute("id", "go")
	_ = doc.AppendChild(root.AsNode())
	_ = root.AppendChild(el.AsNode())

	if got := doc.GetElementById("go"); got != el {
		t.Errorf("GetElementById = %v, want el", got)
	}
	if got := doc.GetElementById("missing"); got != nil {
		t.Errorf("GetElementById(missing) = %v, want nil", got)
	}
}

func TestGetElementsByTagName(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("html")
	_ = doc.AppendChild(root.AsNode())
	b1 := doc.CreateElement("button")
	b2 := doc.CreateElement("button")
	d := doc.CreateElement("div")
	_ = root.AppendChild(b1.AsNode())
	_ = root.AppendChild(d.AsNode())
	_ = d.AppendChild(b2.AsNode())

	buttons := doc.GetElementsByTagName("button")
	if len(buttons) != 2 || buttons[0] != b1 || buttons[1] != b2 {
		t.Errorf("GetElementsByTagName(button) = %v, want [b1 b2]", buttons)
	}
	if all := doc.GetElementsByTagName("*"); len(all) != 4 {
		t.Errorf("GetElementsByTagName(*) returned %d elements, want 4", len(all))
	}
}

func TestTextContent(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("p")
	_ = el.AppendChild(doc.CreateTextNode("hello "))
	span := doc.CreateElement("span")
	_ = span.AppendChild(doc.CreateTextNode("world"))
	_ = el.AppendChild(span.AsNode())
	_ = el.AppendChild(doc.CreateComment("ignored"))

	if got := el.TextContent(); got != "hello world" {
		t.Errorf("TextContent = %q, want %q", got, "hello world")
	}
}

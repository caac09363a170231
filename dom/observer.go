package dom

// LifecycleObserver receives notifications about element lifecycle changes
// in a document: connection, disconnection, and attribute mutation. This is
// the substrate custom element reactions are built on.
type LifecycleObserver interface {
	// OnElementConnected is called after an element becomes connected to
	// its document, once per element in document order.
	OnElementConnected(el *Element)

	// OnElementDisconnected is called after an element is removed from a
	// connected tree, once per element in document order.
	OnElementDisconnected(el *Element)

	// OnAttributeChanged is called after an attribute is set or removed.
	// A removal reports newValue == "".
	OnAttributeChanged(el *Element, name, oldValue, newValue string)
}

// lifecycleObservers stores registered observers for a document.
var lifecycleObservers = make(map[*Document][]LifecycleObserver)

// RegisterLifecycleObserver registers an observer to receive lifecycle
// notifications for a document.
func RegisterLifecycleObserver(doc *Document, obs LifecycleObserver) {
	if doc == nil || obs == nil {
		return
	}
	lifecycleObservers[doc] = append(lifecycleObservers[doc], obs)
}

// UnregisterLifecycleObserver removes an observer from a document.
func UnregisterLifecycleObserver(doc *Document, obs LifecycleObserver) {
	observers := lifecycleObservers[doc]
	for i, o := range observers {
		if o == obs {
			lifecycleObservers[doc] = append(observers[:i], observers[i+1:]...)
			return
		}
	}
}

// ClearLifecycleObservers removes all observers for a document.
func ClearLifecycleObservers(doc *Document) {
	delete(lifecycleObservers, doc)
}

// notifyConnectedSubtree notifies observers about every element in the
// newly connected subtree rooted at n, in document order.
func notifyConnectedSubtree(n *Node) {
	if n.ownerDoc == nil {
		return
	}
	observers := lifecycleObservers[n.ownerDoc]
	if len(observers) == 0 {
		return
	}
	forEachElement(n, func(el *Element) {
		for _, obs := range observers {
			obs.OnElementConnected(el)
		}
	})
}

// notifyDisconnectedSubtree notifies observers about every element in the
// just removed subtree rooted at n, in document order.
func notifyDisconnectedSubtree(n *Node) {
	if n.ownerDoc == nil {
		return
	}
	observers := lifecycleObservers[n.ownerDoc]
	if len(observers) == 0 {
		return
	}
	forEachElement(n, func(el *Element) {
		for _, obs := range observers {
			obs.OnElementDisconnected(el)
		}
	})
}

// notifyAttributeChanged notifies observers about an attribute mutation.
func notifyAttributeChanged(el *Element, name, oldValue, newValue string) {
	if el.AsNode().ownerDoc == nil {
		return
	}
	for _, obs := range lifecycleObservers[el.AsNode().ownerDoc] {
		obs.OnAttributeChanged(el, name, oldValue, newValue)
	}
}

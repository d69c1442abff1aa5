// Package surface holds the element tree a notification center renders into.
//
// Elements are built structurally: text is stored verbatim and there is no
// API that parses markup, so caller-supplied content can never become
// structure. A Document is not safe for concurrent use; its owner serializes
// access.
package surface

import (
	"slices"
)

// Attr is a single element attribute.
type Attr struct {
	Key   string
	Value string
}

// Element is a node in the document tree.
type Element struct {
	Tag  string
	ID   string
	Text string

	classes  []string
	attrs    []Attr
	parent   *Element
	children []*Element
	root     bool
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// NewText creates a detached element whose content is the literal text.
func NewText(tag, text string) *Element {
	return &Element{Tag: tag, Text: text}
}

// AddClass appends classes not already present.
func (e *Element) AddClass(classes ...string) *Element {
	for _, c := range classes {
		if c != "" && !slices.Contains(e.classes, c) {
			e.classes = append(e.classes, c)
		}
	}
	return e
}

// RemoveClass drops the given classes.
func (e *Element) RemoveClass(classes ...string) *Element {
	e.classes = slices.DeleteFunc(e.classes, func(c string) bool {
		return slices.Contains(classes, c)
	})
	return e
}

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.classes, class)
}

// Classes returns the class list in insertion order.
func (e *Element) Classes() []string {
	return slices.Clone(e.classes)
}

// SetAttr sets or replaces an attribute, keeping first-insertion order.
func (e *Element) SetAttr(key, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].Key == key {
			e.attrs[i].Value = value
			return e
		}
	}
	e.attrs = append(e.attrs, Attr{Key: key, Value: value})
	return e
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns all attributes in insertion order.
func (e *Element) Attrs() []Attr {
	return slices.Clone(e.attrs)
}

// AppendChild attaches child as the last child of e, detaching it from any
// previous parent first.
func (e *Element) AppendChild(child *Element) *Element {
	if child == nil || child == e {
		return e
	}
	child.Remove()
	child.parent = e
	e.children = append(e.children, child)
	return e
}

// Append attaches several children in order.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		e.AppendChild(c)
	}
	return e
}

// Remove detaches e from its parent. It returns false if e was not attached
// to a parent, making repeated removal a no-op.
func (e *Element) Remove() bool {
	p := e.parent
	if p == nil {
		return false
	}
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == e })
	e.parent = nil
	return true
}

// RemoveChildren detaches every child and returns them.
func (e *Element) RemoveChildren() []*Element {
	removed := e.children
	for _, c := range removed {
		c.parent = nil
	}
	e.children = nil
	return removed
}

// Parent returns the parent element or nil.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// ChildCount returns the number of direct children.
func (e *Element) ChildCount() int {
	return len(e.children)
}

// Attached reports whether e is reachable from a document root.
func (e *Element) Attached() bool {
	for n := e; n != nil; n = n.parent {
		if n.root {
			return true
		}
	}
	return false
}

// Walk visits e and its descendants depth-first. Returning false from fn
// stops the walk.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// TextContent concatenates the text of e and its descendants.
func (e *Element) TextContent() string {
	var out []byte
	e.Walk(func(n *Element) bool {
		out = append(out, n.Text...)
		return true
	})
	return string(out)
}

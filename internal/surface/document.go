package surface

// SurfaceID is the reserved identifier of the display surface element.
// Host pages must not use it for anything else.
const SurfaceID = "toast-container"

// Document is the host rendering tree.
type Document struct {
	root *Element
}

// NewDocument creates an empty document with a body root.
func NewDocument() *Document {
	return &Document{root: &Element{Tag: "body", root: true}}
}

// Root returns the document root.
func (d *Document) Root() *Element {
	return d.root
}

// ElementByID finds an attached element by id.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	d.root.Walk(func(e *Element) bool {
		if e.ID == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// Surface returns the display surface if it exists.
func (d *Document) Surface() *Element {
	return d.ElementByID(SurfaceID)
}

// EnsureSurface returns the display surface, creating and attaching it to the
// root on first use. The second result reports whether it was created by this
// call; decorate is applied only then.
func (d *Document) EnsureSurface(decorate func(*Element)) (*Element, bool) {
	if s := d.Surface(); s != nil {
		return s, false
	}

	s := NewElement("div")
	s.ID = SurfaceID
	s.SetAttr("aria-live", "polite")
	if decorate != nil {
		decorate(s)
	}
	d.root.AppendChild(s)
	return s, true
}

// CountByID returns how many attached elements carry id.
func (d *Document) CountByID(id string) int {
	n := 0
	d.root.Walk(func(e *Element) bool {
		if e.ID == id {
			n++
		}
		return true
	})
	return n
}

package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSurface_Idempotent(t *testing.T) {
	doc := NewDocument()

	decorated := 0
	first, created := doc.EnsureSurface(func(e *Element) {
		decorated++
		e.AddClass("fixed")
	})
	require.NotNil(t, first)
	assert.True(t, created)

	second, created := doc.EnsureSurface(func(e *Element) { decorated++ })
	assert.False(t, created)
	assert.Same(t, first, second)

	assert.Equal(t, 1, decorated)
	assert.Equal(t, 1, doc.CountByID(SurfaceID))
	assert.Equal(t, 1, doc.Root().ChildCount())
	assert.True(t, first.HasClass("fixed"))
}

func TestEnsureSurface_RecreatedAfterRemoval(t *testing.T) {
	doc := NewDocument()
	s, _ := doc.EnsureSurface(nil)
	require.True(t, s.Remove())

	again, created := doc.EnsureSurface(nil)
	assert.True(t, created)
	assert.NotSame(t, s, again)
	assert.Equal(t, 1, doc.CountByID(SurfaceID))
}

func TestElement_AppendAndRemove(t *testing.T) {
	doc := NewDocument()
	s, _ := doc.EnsureSurface(nil)

	a := NewText("div", "a")
	b := NewText("div", "b")
	s.Append(a, b)

	assert.Equal(t, 2, s.ChildCount())
	assert.True(t, a.Attached())

	assert.True(t, a.Remove())
	assert.False(t, a.Attached())
	assert.False(t, a.Remove(), "second removal is a no-op")
	assert.Equal(t, []*Element{b}, s.Children())
}

func TestElement_AppendMovesChild(t *testing.T) {
	p1 := NewElement("div")
	p2 := NewElement("div")
	c := NewElement("span")

	p1.AppendChild(c)
	p2.AppendChild(c)

	assert.Equal(t, 0, p1.ChildCount())
	assert.Equal(t, 1, p2.ChildCount())
	assert.Same(t, p2, c.Parent())
}

func TestElement_Classes(t *testing.T) {
	e := NewElement("div").AddClass("a", "b", "a", "")
	assert.Equal(t, []string{"a", "b"}, e.Classes())

	e.RemoveClass("a", "missing")
	assert.Equal(t, []string{"b"}, e.Classes())
	assert.False(t, e.HasClass("a"))
}

func TestElement_Attrs(t *testing.T) {
	e := NewElement("button").SetAttr("type", "button").SetAttr("aria-label", "x")
	e.SetAttr("type", "submit")

	v, ok := e.Attr("type")
	assert.True(t, ok)
	assert.Equal(t, "submit", v)
	assert.Equal(t, []Attr{{"type", "submit"}, {"aria-label", "x"}}, e.Attrs())

	_, ok = e.Attr("missing")
	assert.False(t, ok)
}

func TestElement_TextIsLiteral(t *testing.T) {
	e := NewElement("div").Append(NewText("span", "<b>x</b>"))
	assert.Equal(t, "<b>x</b>", e.TextContent())
	assert.Equal(t, 1, e.ChildCount(), "markup in text never creates elements")
}

func TestElement_RemoveChildren(t *testing.T) {
	doc := NewDocument()
	s, _ := doc.EnsureSurface(nil)
	kids := []*Element{NewElement("div"), NewElement("div"), NewElement("div")}
	s.Append(kids...)

	removed := s.RemoveChildren()
	assert.Len(t, removed, 3)
	assert.Equal(t, 0, s.ChildCount())
	for _, k := range kids {
		assert.False(t, k.Attached())
		assert.Nil(t, k.Parent())
	}
}

func TestDocument_ElementByID(t *testing.T) {
	doc := NewDocument()
	s, _ := doc.EnsureSurface(nil)
	child := NewElement("div")
	child.ID = "toast-1"
	s.AppendChild(child)

	assert.Same(t, child, doc.ElementByID("toast-1"))
	assert.Nil(t, doc.ElementByID(""))

	child.Remove()
	assert.Nil(t, doc.ElementByID("toast-1"))
}

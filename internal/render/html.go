// Package render draws a surface document for browsers and terminals.
package render

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jmylchreest/toastui/internal/surface"
)

// Node converts an element subtree to an html.Node tree. Element text
// becomes a text node, so it is escaped on render and never parsed.
func Node(el *surface.Element) *html.Node {
	return convert(el, "")
}

func convert(el *surface.Element, namespace string) *html.Node {
	if el.Tag == "svg" {
		namespace = "svg"
	}

	n := &html.Node{
		Type:      html.ElementNode,
		Data:      el.Tag,
		Namespace: namespace,
	}
	if namespace == "" {
		n.DataAtom = atom.Lookup([]byte(el.Tag))
	}

	if el.ID != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: el.ID})
	}
	if classes := el.Classes(); len(classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}
	for _, a := range el.Attrs() {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Value})
	}

	if el.Text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: el.Text})
	}
	for _, child := range el.Children() {
		n.AppendChild(convert(child, namespace))
	}
	return n
}

// HTML writes the element subtree as an HTML fragment.
func HTML(w io.Writer, el *surface.Element) error {
	return html.Render(w, Node(el))
}

// ElementHTML returns the element subtree as an HTML string.
func ElementHTML(el *surface.Element) (string, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, el); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PageOptions configures a full page render.
type PageOptions struct {
	Title string
	// RootClass is set on <html>: "dark", "light" or empty to follow the
	// browser preference.
	RootClass string
	// CSS is inlined into a <style> element.
	CSS string
	// StreamPath is the websocket path the page subscribes to; empty
	// disables live updates.
	StreamPath string
	// APIPath is the toast collection endpoint used by dismiss buttons.
	APIPath string
}

// Page writes a complete HTML document whose body is the document root.
func Page(w io.Writer, doc *surface.Document, opts PageOptions) error {
	if opts.Title == "" {
		opts.Title = "toastui"
	}
	if opts.APIPath == "" {
		opts.APIPath = "/api/toasts"
	}

	root := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	root.Attr = append(root.Attr, html.Attribute{Key: "lang", Val: "en"})
	if opts.RootClass != "" {
		root.Attr = append(root.Attr, html.Attribute{Key: "class", Val: opts.RootClass})
	}

	head := elementNode(atom.Head)
	meta := elementNode(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	title := elementNode(atom.Title)
	title.AppendChild(&html.Node{Type: html.TextNode, Data: opts.Title})
	head.AppendChild(meta)
	head.AppendChild(title)
	if opts.CSS != "" {
		style := elementNode(atom.Style)
		style.AppendChild(&html.Node{Type: html.TextNode, Data: opts.CSS})
		head.AppendChild(style)
	}
	root.AppendChild(head)

	body := Node(doc.Root())
	body.Attr = append(body.Attr,
		html.Attribute{Key: "data-api", Val: opts.APIPath},
		html.Attribute{Key: "data-stream", Val: opts.StreamPath},
	)
	script := elementNode(atom.Script)
	script.AppendChild(&html.Node{Type: html.TextNode, Data: pageScript})
	body.AppendChild(script)
	root.AppendChild(body)

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	return html.Render(w, root)
}

func elementNode(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

// pageScript wires dismiss buttons to the API and applies streamed events.
// Fragments it inserts are server-rendered, so message text arrives escaped.
const pageScript = `(function () {
  var api = document.body.dataset.api;
  var stream = document.body.dataset.stream;

  function surface() {
    return document.getElementById("toast-container");
  }

  document.addEventListener("click", function (ev) {
    var btn = ev.target.closest("[data-dismiss]");
    if (!btn) return;
    fetch(api + "/" + encodeURIComponent(btn.dataset.dismiss), { method: "DELETE" });
  });

  if (!stream) return;

  function parse(fragment) {
    var tpl = document.createElement("template");
    tpl.innerHTML = fragment;
    return tpl.content.firstElementChild;
  }

  function apply(ev) {
    if (ev.surface && !surface()) {
      document.body.insertBefore(parse(ev.surface), document.body.firstChild);
    }
    var box = surface();
    if (!box) return;
    if (ev.type === "cleared") {
      box.replaceChildren();
      return;
    }
    var el = document.getElementById("toast-" + ev.toast.id);
    switch (ev.type) {
      case "added":
        if (!el) box.appendChild(parse(ev.html));
        break;
      case "shown":
      case "leaving":
        if (el) {
          var next = parse(ev.html);
          el.className = next.className;
          el.dataset.state = next.dataset.state;
        }
        break;
      case "removed":
        if (el) el.remove();
        break;
    }
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + stream);
    ws.onmessage = function (msg) { apply(JSON.parse(msg.data)); };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();`

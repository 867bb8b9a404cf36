// Package svg serializes a scene document as standalone SVG markup.
package svg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/a-h/templ"
	"github.com/conneroisu/combochart/internal/scene"
)

// Layer attributes with special meaning: a translate offset.
const (
	AttrTranslateX = "tx"
	AttrTranslateY = "ty"
)

// ContentType is the MIME type of the output.
const ContentType = "image/svg+xml"

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) str(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// Write renders doc to out. Every mark carries a data-key attribute of the
// form "layer/key" so a client can address it in events.
func Write(out io.Writer, doc *scene.Document) error {
	w := &writer{w: out}
	w.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" font-family="sans-serif">`,
		scene.FormatNumber(doc.Width), scene.FormatNumber(doc.Height),
		scene.FormatNumber(doc.Width), scene.FormatNumber(doc.Height))
	if doc.Title != "" {
		w.printf("<title>%s</title>", templ.EscapeString(doc.Title))
	}
	if len(doc.Defs) > 0 {
		w.str("<defs>")
		for _, n := range doc.Defs {
			node(w, n, "")
		}
		w.str("</defs>")
	}
	for _, l := range doc.Layers() {
		layer(w, l)
	}
	w.str("</svg>")
	return w.err
}

// Render returns doc as bytes.
func Render(doc *scene.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Component wraps doc as a templ component so it can be embedded in pages
// or served with templ.Handler.
func Component(doc *scene.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Write(w, doc)
	})
}

func layer(w *writer, l *scene.Layer) {
	w.printf(`<g data-layer="%s"`, templ.EscapeString(l.ID))
	if l.Class != "" {
		w.printf(` class="%s"`, templ.EscapeString(l.Class))
	}
	tx, okx := l.Attrs.Get(AttrTranslateX)
	ty, oky := l.Attrs.Get(AttrTranslateY)
	if okx || oky {
		w.printf(` transform="translate(%s,%s)"`, scene.FormatNumber(tx), scene.FormatNumber(ty))
	}
	w.str(">")
	for _, n := range l.Nodes() {
		node(w, n, l.ID+"/"+n.Key)
	}
	w.str("</g>")
}

func node(w *writer, n scene.Node, ref string) {
	w.printf("<%s", n.Kind)
	if ref != "" {
		w.printf(` data-key="%s"`, templ.EscapeString(ref))
	}
	attrs(w, n)
	switch {
	case len(n.Children) > 0:
		w.str(">")
		for _, c := range n.Children {
			node(w, c, "")
		}
		w.printf("</%s>", n.Kind)
	case n.Kind == scene.KindText:
		w.printf(">%s</text>", templ.EscapeString(n.Attrs.Text))
	default:
		w.str("/>")
	}
}

func attrs(w *writer, n scene.Node) {
	if len(n.Attrs.Path) > 0 {
		w.printf(` d="%s"`, n.Attrs.Path.String())
	}
	for _, k := range sortedKeys(n.Attrs.Num) {
		w.printf(` %s="%s"`, k, scene.FormatNumber(n.Attrs.Num[k]))
	}
	for _, k := range sortedKeys(n.Attrs.Str) {
		w.printf(` %s="%s"`, k, templ.EscapeString(n.Attrs.Str[k]))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

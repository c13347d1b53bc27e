package dictionary

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the tree-query capability the extractor relies on
type Node interface {
	// First returns the first descendant with the tag carrying every class, or nil
	First(tag, class string) Node
	// All returns every matching descendant in document order
	All(tag, class string) []Node
	// Text returns the text content
	Text() string
	// Attr returns the attribute value and whether it was present
	Attr(name string) (string, bool)
}

// ParseDocument parses markup into a queryable root node
func ParseDocument(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &selectionNode{sel: doc.Selection}, nil
}

type selectionNode struct {
	sel *goquery.Selection
}

func (n *selectionNode) First(tag, class string) Node {
	found := n.sel.Find(selector(tag, class)).First()
	if found.Length() == 0 {
		return nil
	}
	return &selectionNode{sel: found}
}

func (n *selectionNode) All(tag, class string) []Node {
	found := n.sel.Find(selector(tag, class))
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &selectionNode{sel: s})
	})
	return nodes
}

func (n *selectionNode) Text() string {
	return n.sel.Text()
}

func (n *selectionNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// selector builds a CSS selector from a tag and a space separated class list.
// "span", "hw dhw" becomes "span.hw.dhw".
func selector(tag, class string) string {
	var b strings.Builder
	b.WriteString(tag)
	for _, c := range strings.Fields(class) {
		b.WriteByte('.')
		b.WriteString(c)
	}
	return b.String()
}

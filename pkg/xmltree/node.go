// Package xmltree provides a small generic element tree over encoding/xml:
// element name, attributes, text and ordered children.
package xmltree

// Attr is a single element attribute. Names in the reserved xml namespace
// are spelled with their conventional prefix, e.g. "xml:lang".
type Attr struct {
	Name  string
	Value string
}

// Node is one element of a parsed document.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string // character data directly inside the element, trimmed
	Children []*Node
}

// Find returns the first child element with the given name, or nil.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns every child element with the given name in document order.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Has reports whether a child element with the given name exists.
func (n *Node) Has(name string) bool {
	return n.Find(name) != nil
}

// Attr looks up an attribute by name.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def when the attribute is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// ChildText returns the text of the first child with the given name.
// ok is false when no such child exists.
func (n *Node) ChildText(name string) (text string, ok bool) {
	c := n.Find(name)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

// ChildTexts returns the text of every child with the given name.
func (n *Node) ChildTexts(name string) []string {
	var out []string
	for _, c := range n.FindAll(name) {
		out = append(out, c.Text)
	}
	return out
}

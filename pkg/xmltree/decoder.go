package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"slices"
	"strings"
)

const xmlNamespaceURL = "http://www.w3.org/XML/1998/namespace"

// entityDecl matches general entity declarations inside a DOCTYPE internal
// subset. Parameter entities (<!ENTITY % ...>) are ignored.
var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%"']+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// EntityMode controls how entities declared in the document's DOCTYPE are
// expanded in character data.
type EntityMode int

const (
	// EntitiesUndeclared leaves the DOCTYPE alone; only the predefined XML
	// entities and those passed via WithEntities are known.
	EntitiesUndeclared EntityMode = iota
	// EntitiesAsNames expands &foo; to "foo". Dictionary formats use entities
	// as a closed tag vocabulary, and the name is the stable code.
	EntitiesAsNames
	// EntitiesAsValues expands &foo; to its declared replacement text.
	EntitiesAsValues
)

// Option configures a Decoder.
type Option func(*Decoder)

// WithEntities registers additional entity expansions.
func WithEntities(entities map[string]string) Option {
	return func(d *Decoder) {
		for k, v := range entities {
			d.xd.Entity[k] = v
		}
	}
}

// WithDeclaredEntities harvests <!ENTITY> declarations from the DOCTYPE.
func WithDeclaredEntities(mode EntityMode) Option {
	return func(d *Decoder) {
		d.entityMode = mode
	}
}

// Decoder reads elements from an XML stream and materializes them as Nodes.
type Decoder struct {
	xd         *xml.Decoder
	entityMode EntityMode
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	xd := xml.NewDecoder(r)
	xd.Entity = make(map[string]string)
	d := &Decoder{xd: xd}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Elements returns a single-use sequence of every element whose name is one
// of names, at any depth, each built as a complete subtree. Elements nested
// inside a yielded element are part of that element's subtree and are not
// yielded separately. A decode error is yielded once and ends the sequence.
func (d *Decoder) Elements(names ...string) iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		for {
			tok, err := d.xd.Token()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("xmltree: read token: %w", err))
				return
			}

			switch t := tok.(type) {
			case xml.Directive:
				d.absorbDirective(t)
			case xml.StartElement:
				if !slices.Contains(names, t.Name.Local) {
					continue
				}
				node, err := d.build(t)
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(node, nil) {
					return
				}
			}
		}
	}
}

// Root reads and returns the first top-level element.
func (d *Decoder) Root() (*Node, error) {
	for {
		tok, err := d.xd.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("xmltree: no root element: %w", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: read token: %w", err)
		}
		switch t := tok.(type) {
		case xml.Directive:
			d.absorbDirective(t)
		case xml.StartElement:
			return d.build(t)
		}
	}
}

// Parse builds the whole document tree from r. Suitable for small inputs.
func Parse(r io.Reader, opts ...Option) (*Node, error) {
	return NewDecoder(r, opts...).Root()
}

func (d *Decoder) build(start xml.StartElement) (*Node, error) {
	node := &Node{Name: start.Name.Local}
	if len(start.Attr) > 0 {
		node.Attrs = make([]Attr, 0, len(start.Attr))
		for _, a := range start.Attr {
			node.Attrs = append(node.Attrs, Attr{Name: attrName(a.Name), Value: a.Value})
		}
	}

	var text strings.Builder
	for {
		tok, err := d.xd.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("xmltree: inside <%s>: %w", node.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := d.build(t)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			node.Text = strings.TrimSpace(text.String())
			return node, nil
		}
	}
}

func (d *Decoder) absorbDirective(dir xml.Directive) {
	if d.entityMode == EntitiesUndeclared {
		return
	}
	for _, m := range entityDecl.FindAllSubmatch(dir, -1) {
		name := string(m[1])
		if _, exists := d.xd.Entity[name]; exists {
			continue
		}
		switch d.entityMode {
		case EntitiesAsNames:
			d.xd.Entity[name] = name
		case EntitiesAsValues:
			value := string(m[2])
			if len(m[3]) > 0 {
				value = string(m[3])
			}
			d.xd.Entity[name] = value
		}
	}
}

func attrName(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case xmlNamespaceURL, "xml":
		return "xml:" + n.Local
	default:
		return n.Space + ":" + n.Local
	}
}

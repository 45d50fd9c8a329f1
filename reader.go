package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
)

var ErrNotAnElement = errors.New("not an element")
var ErrNoElement = errors.New("no element")

// SyntaxError reports malformed input, e.g. a missing or mismatched end tag.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return "malformed xml: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// NodeKind is the kind of node under the cursor of a Reader.
type NodeKind int

const (
	NodeNone NodeKind = iota
	NodeElement
	NodeEndElement
	NodeText
	NodeOther
)

func (k NodeKind) String() string {
	switch k {
	case NodeNone:
		return "none"
	case NodeElement:
		return "element"
	case NodeEndElement:
		return "end element"
	case NodeText:
		return "text"
	case NodeOther:
		return "other"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is a fully consumed element. Value is nil for an empty element, a string
// for an element with text content only, a []Node for an element with child
// elements, or whatever an ElementParser returned for the element.
type Node struct {
	Name  Name
	Attrs Attrs
	Value any
}

// ElementParser consumes the element under the cursor. It must leave the cursor
// on the node following the element.
type ElementParser func(r *Reader) (any, error)

// ElementMap maps element names onto custom parsers used by Reader.ConsumeElement.
type ElementMap map[Name]ElementParser

// Reader is a forward-only cursor over the nodes of an xml document.
//
// Both <a/> and <a></a> surface as a single element node for which IsEmptyElement
// reports true. Such an element has no end node.
type Reader struct {
	dec        *xml.Decoder
	log        *slog.Logger
	elementMap ElementMap

	// one token of lookahead, used to detect empty elements
	peeked xml.Token

	kind  NodeKind
	name  Name
	attrs Attrs
	text  string
	depth int
	empty bool

	// depth of the next node
	level int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		dec:        xml.NewDecoder(r),
		log:        slog.New(slog.DiscardHandler),
		elementMap: ElementMap{},
	}
}

// WithElementMap adds the entries of elementMap to the readers element map.
func (r *Reader) WithElementMap(elementMap ElementMap) *Reader {
	maps.Copy(r.elementMap, elementMap)
	return r
}

func (r *Reader) WithSlogHandler(handler slog.Handler) *Reader {
	r.log = slog.New(handler)
	return r
}

func (r *Reader) Kind() NodeKind {
	return r.kind
}

// Name returns the name of the current element or end element.
func (r *Reader) Name() Name {
	return r.name
}

// Attrs returns the attributes of the current element. Attributes without
// namespace are keyed by local name, all others in clark notation.
func (r *Reader) Attrs() Attrs {
	return r.attrs
}

// Text returns the content of the current text node.
func (r *Reader) Text() string {
	return r.text
}

// Depth returns the nesting level of the current node. The root element has
// depth zero, an end element has the depth of its element.
func (r *Reader) Depth() int {
	return r.depth
}

func (r *Reader) IsEmptyElement() bool {
	return r.kind == NodeElement && r.empty
}

// Read moves the cursor to the next node. It returns false at the end of input.
func (r *Reader) Read() (bool, error) {
	tok, err := r.token()
	if errors.Is(err, io.EOF) {
		r.setNode(NodeNone, Name{}, nil, "")
		return false, nil
	}

	if err != nil {
		return false, &SyntaxError{Err: err}
	}

	switch tok := tok.(type) {
	case xml.StartElement:
		r.setNode(NodeElement, nameOfXML(tok.Name), attrsOf(tok.Attr), "")

		next, err := r.peek()
		if err != nil {
			return false, &SyntaxError{Err: err}
		}

		_, r.empty = next.(xml.EndElement)
		if r.empty {
			// the end element belongs to this node
			r.peeked = nil
		} else {
			r.level++
		}

	case xml.EndElement:
		r.level--
		r.setNode(NodeEndElement, nameOfXML(tok.Name), nil, "")

	case xml.CharData:
		r.setNode(NodeText, Name{}, nil, string(tok))

	default:
		r.setNode(NodeOther, Name{}, nil, "")
	}

	return true, nil
}

// Next moves the cursor to the next node that is not a descendant of the
// current node. It returns false at the end of input.
func (r *Reader) Next() (bool, error) {
	if r.kind == NodeElement && !r.empty {
		depth := r.depth

		for {
			ok, err := r.Read()
			if err != nil {
				return false, err
			}

			if !ok {
				return false, &SyntaxError{Err: io.ErrUnexpectedEOF}
			}

			if r.kind == NodeEndElement && r.depth == depth {
				break
			}
		}
	}

	return r.Read()
}

// MoveToElement advances the cursor until it is positioned on an element.
// It does nothing if the cursor already is on an element.
func (r *Reader) MoveToElement() error {
	for r.kind != NodeElement {
		ok, err := r.Read()
		if err != nil {
			return err
		}

		if !ok {
			return ErrNoElement
		}
	}

	return nil
}

// Parse moves the cursor to the root element and consumes it.
func (r *Reader) Parse() (Node, error) {
	if err := r.MoveToElement(); err != nil {
		return Node{}, err
	}

	return r.ConsumeElement()
}

// ConsumeElement consumes the element under the cursor including all of its
// descendants and leaves the cursor on the node following the element.
// If the elements name is in the element map, its parser is used to consume it.
func (r *Reader) ConsumeElement() (Node, error) {
	if r.kind != NodeElement {
		return Node{}, fmt.Errorf("consume %s node: %w", r.kind, ErrNotAnElement)
	}

	node := Node{Name: r.name, Attrs: r.attrs}

	if parse, ok := r.elementMap[r.name]; ok {
		value, err := parse(r)
		if err != nil {
			return Node{}, fmt.Errorf("parse %s: %w", node.Name, err)
		}

		node.Value = value
		return node, nil
	}

	value, err := r.consumeContent()
	if err != nil {
		return Node{}, err
	}

	node.Value = value
	return node, nil
}

// consumeContent consumes the element under the cursor without looking it up in
// the element map. Child elements are still consumed with ConsumeElement.
func (r *Reader) consumeContent() (any, error) {
	if r.empty {
		_, err := r.Read()
		return nil, err
	}

	depth := r.depth
	if _, err := r.Read(); err != nil {
		return nil, err
	}

	var text strings.Builder
	var children []Node

	for r.kind != NodeEndElement || r.depth != depth {
		switch r.kind {
		case NodeNone:
			return nil, &SyntaxError{Err: io.ErrUnexpectedEOF}

		case NodeElement:
			child, err := r.ConsumeElement()
			if err != nil {
				return nil, err
			}

			children = append(children, child)
			continue

		case NodeText:
			text.WriteString(r.text)
		}

		if _, err := r.Read(); err != nil {
			return nil, err
		}
	}

	// step past the end element
	if _, err := r.Read(); err != nil {
		return nil, err
	}

	switch {
	case children != nil:
		return children, nil
	case text.Len() > 0:
		return text.String(), nil
	default:
		return nil, nil
	}
}

func (r *Reader) setNode(kind NodeKind, name Name, attrs Attrs, text string) {
	r.kind = kind
	r.name = name
	r.attrs = attrs
	r.text = text
	r.depth = r.level
	r.empty = false
}

func (r *Reader) token() (xml.Token, error) {
	if r.peeked != nil {
		tok := r.peeked
		r.peeked = nil
		return tok, nil
	}

	tok, err := r.dec.Token()
	if err != nil {
		return nil, err
	}

	// the decoder reuses the buffers of the token on the next call
	return xml.CopyToken(tok), nil
}

func (r *Reader) peek() (xml.Token, error) {
	if r.peeked == nil {
		tok, err := r.token()
		if err != nil {
			return nil, err
		}

		r.peeked = tok
	}

	return r.peeked, nil
}

func attrsOf(attrs []xml.Attr) Attrs {
	var result Attrs

	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
			continue
		}

		key := attr.Name.Local
		if attr.Name.Space != "" {
			key = nameOfXML(attr.Name).String()
		}

		if result == nil {
			result = Attrs{}
		}

		result[key] = attr.Value
	}

	return result
}

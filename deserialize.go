package xmltree

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/elliotchance/orderedmap/v2"
)

// KeyValue consumes the children of the element under the cursor into an ordered
// map. Each child element is consumed with Reader.ConsumeElement and stored
// under its name in clark notation. If a namespace is given, children in that
// namespace are stored under their bare local name instead.
//
// If a name occurs more than once, the last value wins and the key keeps the
// position of its first occurrence. Earlier values are lost.
//
// The cursor is left on the node following the element.
func KeyValue(r *Reader, namespace ...string) (*orderedmap.OrderedMap[string, any], error) {
	if r.Kind() != NodeElement {
		return nil, fmt.Errorf("key/value scan on %s node: %w", r.Kind(), ErrNotAnElement)
	}

	parent := r.Name()
	values := orderedmap.NewOrderedMap[string, any]()

	if r.IsEmptyElement() {
		if _, err := r.Next(); err != nil {
			return nil, err
		}

		return values, nil
	}

	if _, err := r.Read(); err != nil {
		return nil, err
	}

	for r.Kind() != NodeEndElement {
		if r.Kind() == NodeElement {
			key := r.Name().key(namespace)

			node, err := r.ConsumeElement()
			if err != nil {
				return nil, fmt.Errorf("child %s of %s: %w", key, parent, err)
			}

			values.Set(key, node.Value)
			continue
		}

		ok, err := r.Read()
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, &SyntaxError{Err: io.ErrUnexpectedEOF}
		}
	}

	// step past the end of the parent
	if _, err := r.Read(); err != nil {
		return nil, err
	}

	r.log.Debug("Scanned key/value children",
		slog.String("element", parent.String()), slog.Int("count", values.Len()))

	return values, nil
}

// ElementList consumes the children of the element under the cursor and returns
// the names of the direct child elements in clark notation. If a namespace is
// given, children in that namespace are listed by their bare local name instead.
// Content of the children is skipped.
//
// The cursor is left on the node following the element.
func ElementList(r *Reader, namespace ...string) ([]string, error) {
	if r.Kind() != NodeElement {
		return nil, fmt.Errorf("element list scan on %s node: %w", r.Kind(), ErrNotAnElement)
	}

	parent := r.Name()
	values := []string{}

	if r.IsEmptyElement() {
		if _, err := r.Next(); err != nil {
			return nil, err
		}

		return values, nil
	}

	if _, err := r.Read(); err != nil {
		return nil, err
	}

	// all direct children share this depth. Next never descends, reaching a
	// smaller depth means we arrived at the end of the parent.
	baseline := r.Depth()

	for r.Depth() >= baseline {
		if r.Kind() == NodeElement {
			values = append(values, r.Name().key(namespace))
		}

		ok, err := r.Next()
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, &SyntaxError{Err: io.ErrUnexpectedEOF}
		}
	}

	// step past the end of the parent
	if _, err := r.Read(); err != nil {
		return nil, err
	}

	r.log.Debug("Scanned child elements",
		slog.String("element", parent.String()), slog.Int("count", len(values)))

	return values, nil
}

// Enum reads an element whose children are a set of flags, e.g.
// <prop><displayname/><getetag/></prop>. It behaves like ElementList.
func Enum(r *Reader, namespace ...string) ([]string, error) {
	return ElementList(r, namespace...)
}

// Repeating consumes the element under the cursor and returns the values of all
// direct children named child, in document order.
func Repeating(r *Reader, child Name) ([]any, error) {
	if r.Kind() != NodeElement {
		return nil, fmt.Errorf("repeating scan on %s node: %w", r.Kind(), ErrNotAnElement)
	}

	value, err := r.consumeContent()
	if err != nil {
		return nil, err
	}

	values := []any{}

	children, _ := value.([]Node)
	for _, node := range children {
		if node.Name == child {
			values = append(values, node.Value)
		}
	}

	return values, nil
}

// ValueObject consumes the element under the cursor and maps its children in the
// given namespace onto the struct pointed to by target, using the default Decoder.
// Children are matched by local name against the field names (or their `xml` struct
// tag). Fields tagged with `xml:",attr"` are filled from the elements attributes.
// Children of other namespaces and children without matching field are ignored.
func ValueObject(r *Reader, namespace string, target any) error {
	return defaultDecoder.ValueObject(r, namespace, target)
}

// ValueObject works like the package level ValueObject function but uses this Decoder.
func (d *Decoder) ValueObject(r *Reader, namespace string, target any) error {
	if r.Kind() != NodeElement {
		return fmt.Errorf("value object scan on %s node: %w", r.Kind(), ErrNotAnElement)
	}

	name, attrs := r.Name(), r.Attrs()

	value, err := r.consumeContent()
	if err != nil {
		return err
	}

	text, _ := value.(string)
	children, _ := value.([]Node)
	source := newTreeSource(text, children, attrs, namespace)

	if err := d.Unmarshal(source, target); err != nil {
		return fmt.Errorf("value object %s: %w", name, err)
	}

	return nil
}

package xmltree

import (
	"encoding"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"
)

var ErrInvalidShape = errors.New("invalid shape")
var ErrUnsupportedType = errors.New("unsupported type")

// InvalidShapeError reports a sequence entry that does not name its element.
type InvalidShapeError struct {
	Index  int
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("sequence entry %d: %s", e.Index, e.Reason)
}

func (e *InvalidShapeError) Unwrap() error {
	return ErrInvalidShape
}

// UnsupportedTypeError reports a value the Writer does not know how to write.
// Type is set for object-like values, Kind for everything else.
type UnsupportedTypeError struct {
	Type reflect.Type
	Kind reflect.Kind
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("type %q is not supported", e.Type)
	}

	return fmt.Sprintf("kind %q is not supported", e.Kind)
}

func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// Serializable is implemented by values that write themselves.
type Serializable interface {
	SerializeXML(w *Writer) error
}

// SerializerFunc writes arbitrary content at the current position of the writer.
type SerializerFunc func(w *Writer) error

// Entry is one element of a Sequence. It is either a NamedEntry,
// a MapEntry or an *Elements.
type Entry interface {
	isEntry()
}

// Sequence is written as one element per entry, in order.
type Sequence []Entry

// NamedEntry is written as an element with the given name and attributes and
// with Value as its content. A nil Value results in an empty element.
type NamedEntry struct {
	Name  Name
	Attrs Attrs
	Value any
}

// MapEntry is written as an element with the given name and
// with Value as its content.
type MapEntry struct {
	Name  Name
	Value any
}

// Elements maps element names onto values. Each pair is written as one element,
// in insertion order.
type Elements struct {
	values *orderedmap.OrderedMap[Name, any]
}

func NewElements() *Elements {
	return &Elements{values: orderedmap.NewOrderedMap[Name, any]()}
}

// Set adds an element. Setting a name a second time replaces its value
// but keeps its position.
func (e *Elements) Set(name Name, value any) *Elements {
	e.values.Set(name, value)
	return e
}

func (e *Elements) Len() int {
	return e.values.Len()
}

func (NamedEntry) isEntry() {}
func (MapEntry) isEntry()   {}
func (*Elements) isEntry()  {}

// Write writes value at the current position. The first matching rule wins:
//   - strings, booleans and numbers are written as text
//   - nil values are not written at all
//   - a Serializable writes itself
//   - a value whose type is in the class map is written by its ClassSerializer
//   - a SerializerFunc is called with the writer
//   - an encoding.TextMarshaler is written as text
//   - a Sequence or Entry writes one element per entry
//   - other types with a string, bool or number kind are written as text
//
// Everything else fails with an *UnsupportedTypeError. A sequence entry without
// a name fails the whole call with an *InvalidShapeError.
func (w *Writer) Write(value any) error {
	if value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)

	if rv.Type().PkgPath() == "" {
		if text, ok := scalarText(rv); ok {
			return w.WriteText(text)
		}
	}

	if isNil(rv) {
		return nil
	}

	if serializable, ok := value.(Serializable); ok {
		return serializable.SerializeXML(w)
	}

	if serialize, ok := w.classMap[rv.Type()]; ok {
		return serialize(w, value)
	}

	switch value := value.(type) {
	case SerializerFunc:
		return value(w)

	case func(*Writer) error:
		return value(w)

	case encoding.TextMarshaler:
		text, err := value.MarshalText()
		if err != nil {
			return fmt.Errorf("marshal %T as text: %w", value, err)
		}

		return w.WriteText(string(text))

	case Sequence:
		return w.writeSequence(value)

	case []Entry:
		return w.writeSequence(value)

	case Entry:
		return w.writeSequence([]Entry{value})
	}

	if text, ok := scalarText(rv); ok {
		return w.WriteText(text)
	}

	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer, reflect.Interface:
		w.log.Debug("Unsupported value", slog.String("type", rv.Type().String()))
		return &UnsupportedTypeError{Type: rv.Type()}

	default:
		w.log.Debug("Unsupported value", slog.String("kind", rv.Kind().String()))
		return &UnsupportedTypeError{Kind: rv.Kind()}
	}
}

func (w *Writer) writeSequence(entries []Entry) error {
	for idx, entry := range entries {
		var err error

		switch entry := entry.(type) {
		case NamedEntry:
			err = w.writeEntry(idx, entry.Name, entry.Attrs, entry.Value)

		case MapEntry:
			err = w.writeEntry(idx, entry.Name, nil, entry.Value)

		case *NamedEntry:
			if entry == nil {
				return &InvalidShapeError{Index: idx, Reason: "entry is nil"}
			}

			err = w.writeEntry(idx, entry.Name, entry.Attrs, entry.Value)

		case *MapEntry:
			if entry == nil {
				return &InvalidShapeError{Index: idx, Reason: "entry is nil"}
			}

			err = w.writeEntry(idx, entry.Name, nil, entry.Value)

		case *Elements:
			if entry == nil || entry.values == nil {
				return &InvalidShapeError{Index: idx, Reason: "elements are nil"}
			}

			for el := entry.values.Front(); el != nil && err == nil; el = el.Next() {
				err = w.writeEntry(idx, el.Key, nil, el.Value)
			}

		case nil:
			return &InvalidShapeError{Index: idx, Reason: "entry is nil"}

		default:
			return &InvalidShapeError{Index: idx, Reason: fmt.Sprintf("unexpected entry of type %T", entry)}
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeEntry(idx int, name Name, attrs Attrs, value any) error {
	if name.Local == "" {
		return &InvalidShapeError{Index: idx, Reason: "entry has no element name"}
	}

	if err := w.StartElement(name); err != nil {
		return err
	}

	if err := w.WriteAttributes(attrs); err != nil {
		return err
	}

	if err := w.Write(value); err != nil {
		return err
	}

	return w.EndElement()
}

func scalarText(rv reflect.Value) (string, bool) {
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true

	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true

	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), true

	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), true

	default:
		return "", false
	}
}

func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

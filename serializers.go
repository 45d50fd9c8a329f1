package xmltree

import (
	"fmt"
	"reflect"
)

// WriteEnum writes one empty element for each of the given names. Names are
// given in clark notation.
func WriteEnum(w *Writer, values []string) error {
	for _, value := range values {
		name, err := ParseName(value)
		if err != nil {
			return fmt.Errorf("write enum: %w", err)
		}

		if err := w.WriteElement(name, nil); err != nil {
			return err
		}
	}

	return nil
}

// WriteValueObject writes the exported fields of the struct obj as child
// elements in the given namespace. Fields holding a nil value are skipped,
// slices are written as one element per item and pointers to scalars are
// followed. Fields tagged with `xml:",attr"` are written as attributes of the
// current element, before any child element.
func WriteValueObject(w *Writer, obj any, namespace string) error {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return &UnsupportedTypeError{Type: rv.Type()}
	}

	fields := fieldsOf(rv.Type(), "xml")

	// attributes must be written while the start tag is still pending
	for _, field := range fields {
		value, ok := fieldValue(rv, field)
		if !ok || !field.Attr {
			continue
		}

		text, ok := scalarText(value)
		if !ok {
			return fmt.Errorf("attribute %q: %w", field.Name, &UnsupportedTypeError{Type: field.Type})
		}

		if err := w.WriteAttribute(field.Name, text); err != nil {
			return err
		}
	}

	for _, field := range fields {
		value, ok := fieldValue(rv, field)
		if !ok || field.Attr {
			continue
		}

		name := Name{Space: namespace, Local: field.Name}

		if value.Kind() == reflect.Slice && !isSequence(value.Type()) && value.Type().Elem().Kind() != reflect.Uint8 {
			for idx := range value.Len() {
				if err := w.WriteElement(name, value.Index(idx).Interface()); err != nil {
					return fmt.Errorf("field %q index %d: %w", field.Name, idx, err)
				}
			}

			continue
		}

		if err := w.WriteElement(name, value.Interface()); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
	}

	return nil
}

// fieldValue returns the value of field in rv, or false if the field is not written.
func fieldValue(rv reflect.Value, fi field) (reflect.Value, bool) {
	value := rv.FieldByIndex(fi.Index)
	if isNil(value) || (fi.OmitEmpty && value.IsZero()) {
		return reflect.Value{}, false
	}

	// optional scalars
	if value.Kind() == reflect.Pointer {
		if _, ok := scalarText(value.Elem()); ok {
			value = value.Elem()
		}
	}

	return value, true
}

// WriteRepeating writes one child element for each item.
func WriteRepeating[T any](w *Writer, child Name, items []T) error {
	for _, item := range items {
		if err := w.WriteElement(child, item); err != nil {
			return err
		}
	}

	return nil
}

var tySequence = reflect.TypeFor[Sequence]()
var tyEntries = reflect.TypeFor[[]Entry]()

func isSequence(ty reflect.Type) bool {
	return ty == tySequence || ty == tyEntries
}

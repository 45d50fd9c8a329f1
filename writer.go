package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"
)

var ErrNoOpenElement = errors.New("no open element")

// Attrs maps attribute names onto their values. Names may be given in clark
// notation to put an attribute into a namespace.
type Attrs map[string]string

// ClassSerializer writes a value of a registered type.
type ClassSerializer func(w *Writer, value any) error

// ClassMap maps a values runtime type onto the function that serializes it.
type ClassMap map[reflect.Type]ClassSerializer

// RegisterClass registers fn as the serializer for all values of type T.
func RegisterClass[T any](w *Writer, fn func(w *Writer, value T) error) {
	w.classMap[reflect.TypeFor[T]()] = func(w *Writer, value any) error {
		return fn(w, value.(T))
	}
}

type openElement struct {
	name xml.Name

	// default namespace in scope for the children of this element
	defaultNS string
}

// Writer writes an xml document node by node. A started element stays open for
// attributes until its first child, some text or its end is written.
type Writer struct {
	enc        *xml.Encoder
	log        *slog.Logger
	classMap   ClassMap
	namespaces map[string]string

	// start tag that still accepts attributes
	pending *xml.StartElement

	// stack of open elements, innermost last
	open []openElement

	// true once the namespace declarations have been written to the root element
	declared bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		enc:        xml.NewEncoder(w),
		log:        slog.New(slog.DiscardHandler),
		classMap:   ClassMap{},
		namespaces: map[string]string{},
	}
}

func (w *Writer) WithIndent(prefix, indent string) *Writer {
	w.enc.Indent(prefix, indent)
	return w
}

func (w *Writer) WithSlogHandler(handler slog.Handler) *Writer {
	w.log = slog.New(handler)
	return w
}

// WithClassMap adds the entries of classMap to the writers class map.
func (w *Writer) WithClassMap(classMap ClassMap) *Writer {
	maps.Copy(w.classMap, classMap)
	return w
}

// WithNamespaces maps namespaces onto prefixes. All namespaces are declared on
// the first element written. An empty prefix declares the default namespace.
func (w *Writer) WithNamespaces(namespaces map[string]string) *Writer {
	maps.Copy(w.namespaces, namespaces)
	return w
}

// StartElement opens a new element.
func (w *Writer) StartElement(name Name) error {
	if err := w.flushPending(); err != nil {
		return err
	}

	parentNS := ""
	if len(w.open) > 0 {
		parentNS = w.open[len(w.open)-1].defaultNS
	}

	inScope := parentNS

	var attrs []xml.Attr
	if !w.declared {
		w.declared = true
		attrs = w.declarations()

		for namespace, prefix := range w.namespaces {
			if prefix == "" {
				inScope = namespace
			}
		}
	}

	start := xml.StartElement{Attr: attrs}
	defaultNS := inScope

	prefix, mapped := w.namespaces[name.Space]
	switch {
	case mapped && prefix != "":
		start.Name = xml.Name{Local: prefix + ":" + name.Local}

	case name.Space == inScope:
		start.Name = xml.Name{Local: name.Local}

	case name.Space == "":
		// leave the default namespace of the parent, a declaration pending on
		// this element is dropped
		start.Name = xml.Name{Local: name.Local}
		start.Attr = slices.DeleteFunc(start.Attr, isDefaultNamespaceDecl)
		if parentNS != "" {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xmlns"}})
		}

		defaultNS = ""

	default:
		// the encoder declares the namespace as default namespace on the element itself
		start.Name = xml.Name{Space: name.Space, Local: name.Local}
		start.Attr = slices.DeleteFunc(start.Attr, isDefaultNamespaceDecl)
		defaultNS = name.Space
	}

	w.pending = &start
	w.open = append(w.open, openElement{name: start.Name, defaultNS: defaultNS})

	return nil
}

// EndElement closes the innermost open element.
func (w *Writer) EndElement() error {
	if len(w.open) == 0 {
		return fmt.Errorf("end element: %w", ErrNoOpenElement)
	}

	if err := w.flushPending(); err != nil {
		return err
	}

	top := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]

	return w.enc.EncodeToken(xml.EndElement{Name: top.name})
}

// WriteAttributes adds attributes to the element that was just started.
// Attributes are written in order of their names.
func (w *Writer) WriteAttributes(attrs Attrs) error {
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		if err := w.WriteAttribute(name, attrs[name]); err != nil {
			return err
		}
	}

	return nil
}

// WriteAttribute adds one attribute to the element that was just started.
func (w *Writer) WriteAttribute(name, value string) error {
	if w.pending == nil {
		return fmt.Errorf("write attribute %q: %w", name, ErrNoOpenElement)
	}

	attrName := xml.Name{Local: name}
	if strings.HasPrefix(name, "{") {
		parsed, err := ParseName(name)
		if err != nil {
			return fmt.Errorf("write attribute: %w", err)
		}

		attrName = xml.Name{Space: parsed.Space, Local: parsed.Local}
		if prefix := w.namespaces[parsed.Space]; prefix != "" {
			attrName = xml.Name{Local: prefix + ":" + parsed.Local}
		}
	}

	w.pending.Attr = append(w.pending.Attr, xml.Attr{Name: attrName, Value: value})
	return nil
}

// WriteText writes escaped character data.
func (w *Writer) WriteText(text string) error {
	if err := w.flushPending(); err != nil {
		return err
	}

	return w.enc.EncodeToken(xml.CharData(text))
}

// WriteElement writes a complete element with the given value as its content.
func (w *Writer) WriteElement(name Name, value any) error {
	if err := w.StartElement(name); err != nil {
		return err
	}

	if err := w.Write(value); err != nil {
		return err
	}

	return w.EndElement()
}

// Flush writes all buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.flushPending(); err != nil {
		return err
	}

	return w.enc.Flush()
}

func (w *Writer) writeDeclaration() error {
	return w.enc.EncodeToken(xml.ProcInst{
		Target: "xml",
		Inst:   []byte(`version="1.0" encoding="UTF-8"`),
	})
}

func (w *Writer) flushPending() error {
	if w.pending == nil {
		return nil
	}

	start := *w.pending
	w.pending = nil

	return w.enc.EncodeToken(start)
}

func (w *Writer) declarations() []xml.Attr {
	var attrs []xml.Attr
	for _, namespace := range slices.Sorted(maps.Keys(w.namespaces)) {
		name := xml.Name{Local: "xmlns"}
		if prefix := w.namespaces[namespace]; prefix != "" {
			name.Local = "xmlns:" + prefix
		}

		attrs = append(attrs, xml.Attr{Name: name, Value: namespace})
	}

	return attrs
}

func isDefaultNamespaceDecl(attr xml.Attr) bool {
	return attr.Name.Space == "" && attr.Name.Local == "xmlns"
}

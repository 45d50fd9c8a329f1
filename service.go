package xmltree

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"strings"
)

// UnexpectedRootError is returned by Service.Expect if the document has a root
// element other than the expected ones.
type UnexpectedRootError struct {
	Got  Name
	Want []Name
}

func (e *UnexpectedRootError) Error() string {
	want := make([]string, 0, len(e.Want))
	for _, name := range e.Want {
		want = append(want, name.String())
	}

	return fmt.Sprintf("unexpected root element %s, expected one of %s", e.Got, strings.Join(want, ", "))
}

// Service holds the configuration shared by all readers and writers of an
// application: the element map for parsing, the class map for writing and the
// namespace prefixes of written documents.
type Service struct {
	ElementMap ElementMap
	ClassMap   ClassMap

	// Namespaces maps namespaces onto the prefixes used when writing
	Namespaces map[string]string

	Decoder *Decoder

	log *slog.Logger
}

func NewService() *Service {
	return &Service{
		ElementMap: ElementMap{},
		ClassMap:   ClassMap{},
		Namespaces: map[string]string{},
		Decoder:    defaultDecoder,
		log:        slog.New(slog.DiscardHandler),
	}
}

func (s *Service) WithSlogHandler(handler slog.Handler) *Service {
	s.log = slog.New(handler)
	return s
}

// NewReader returns a Reader using the services element map.
func (s *Service) NewReader(r io.Reader) *Reader {
	return NewReader(r).
		WithElementMap(s.ElementMap).
		WithSlogHandler(s.log.Handler())
}

// NewWriter returns a Writer using the services class map and namespaces.
func (s *Service) NewWriter(w io.Writer) *Writer {
	return NewWriter(w).
		WithClassMap(s.ClassMap).
		WithNamespaces(s.Namespaces).
		WithSlogHandler(s.log.Handler())
}

// Parse parses a complete document and returns its root element.
func (s *Service) Parse(r io.Reader) (Node, error) {
	return s.NewReader(r).Parse()
}

// Expect parses a complete document like Parse does, but fails with an
// *UnexpectedRootError if the root element is not one of roots.
func (s *Service) Expect(r io.Reader, roots ...Name) (Node, error) {
	reader := s.NewReader(r)
	if err := reader.MoveToElement(); err != nil {
		return Node{}, err
	}

	if !slices.Contains(roots, reader.Name()) {
		s.log.Debug("Unexpected root element", slog.String("element", reader.Name().String()))
		return Node{}, &UnexpectedRootError{Got: reader.Name(), Want: roots}
	}

	return reader.ConsumeElement()
}

// Write returns a complete document with an xml declaration and a root element
// named root holding value.
func (s *Service) Write(root Name, value any) ([]byte, error) {
	var buf bytes.Buffer

	w := s.NewWriter(&buf)
	if err := w.writeDeclaration(); err != nil {
		return nil, err
	}

	if err := w.WriteElement(root, value); err != nil {
		return nil, fmt.Errorf("write %s: %w", root, err)
	}

	if err := w.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MapValueObject maps the element name onto the struct type T in both directions.
// Parsing the element yields a T filled by ValueObject, writing a T or *T writes
// its fields as child elements using WriteValueObject. Children are expected in
// the given namespace.
func MapValueObject[T any](s *Service, name Name, namespace string) {
	s.ElementMap[name] = func(r *Reader) (any, error) {
		var value T
		if err := s.Decoder.ValueObject(r, namespace, &value); err != nil {
			return nil, err
		}

		return value, nil
	}

	writeValueObject := func(w *Writer, value any) error {
		return WriteValueObject(w, value, namespace)
	}

	s.ClassMap[reflect.TypeFor[T]()] = writeValueObject
	s.ClassMap[reflect.TypeFor[*T]()] = writeValueObject
}

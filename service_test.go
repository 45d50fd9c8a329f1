package xmltree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

var (
	nameMultistatus = Name{Space: "DAV:", Local: "multistatus"}
	nameResponse    = Name{Space: "DAV:", Local: "response"}
)

func newTestService(t *testing.T) *Service {
	s := NewService().WithSlogHandler(slogt.New(t).Handler())
	s.Namespaces["DAV:"] = "d"

	MapValueObject[response](s, nameResponse, "DAV:")

	return s
}

func TestServiceWrite(t *testing.T) {
	s := newTestService(t)

	out, err := s.Write(nameMultistatus, Sequence{
		MapEntry{Name: nameResponse, Value: response{ID: "1", Href: "/a", Size: 3}},
	})

	require.NoError(t, err)
	require.Equal(t, string(out), `<?xml version="1.0" encoding="UTF-8"?>`+
		`<d:multistatus xmlns:d="DAV:"><d:response id="1"><d:href>/a</d:href><d:status></d:status>`+
		`<d:size>3</d:size><d:missing></d:missing></d:response></d:multistatus>`)
}

func TestServiceRoundTrip(t *testing.T) {
	s := newTestService(t)

	first := response{ID: "1", Href: "/a", Status: "HTTP/1.1 200 OK", Size: 3, Tags: []string{"x"}}
	second := &response{ID: "2", Href: "/b", Tags: []string{"p", "q"}}

	out, err := s.Write(nameMultistatus, Sequence{
		MapEntry{Name: nameResponse, Value: first},
		MapEntry{Name: nameResponse, Value: second},
	})

	require.NoError(t, err)

	node, err := s.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, node, Node{
		Name: nameMultistatus,
		Value: []Node{
			{Name: nameResponse, Attrs: Attrs{"id": "1"}, Value: first},
			{Name: nameResponse, Attrs: Attrs{"id": "2"}, Value: *second},
		},
	})
}

func TestServiceExpect(t *testing.T) {
	s := newTestService(t)

	document := `<d:multistatus xmlns:d="DAV:"><d:response><d:href>/a</d:href></d:response></d:multistatus>`

	node, err := s.Expect(strings.NewReader(document), nameMultistatus)
	require.NoError(t, err)
	require.Equal(t, node.Value, []Node{{Name: nameResponse, Value: response{Href: "/a"}}})

	_, err = s.Expect(strings.NewReader(document), Name{Space: "DAV:", Local: "prop"})

	var rootErr *UnexpectedRootError
	require.ErrorAs(t, err, &rootErr)
	require.Equal(t, rootErr.Got, nameMultistatus)
	require.EqualError(t, err, "unexpected root element {DAV:}multistatus, expected one of {DAV:}prop")
}

func TestServiceWriteUnsupported(t *testing.T) {
	s := newTestService(t)

	_, err := s.Write(nameMultistatus, struct{ A int }{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestServiceReaderAndWriter(t *testing.T) {
	s := newTestService(t)

	var buf bytes.Buffer

	w := s.NewWriter(&buf)
	require.NoError(t, w.WriteElement(nameResponse, response{Href: "/c"}))
	require.NoError(t, w.Flush())

	r := s.NewReader(&buf)

	node, err := r.Parse()
	require.NoError(t, err)
	require.Equal(t, node.Value, response{Href: "/c"})
}

func TestServiceWriteRootOutsideDefaultNamespace(t *testing.T) {
	s := NewService()
	s.Namespaces["DAV:"] = ""

	out, err := s.Write(Name{Local: "multistatus"}, "x")
	require.NoError(t, err)
	require.Equal(t, string(out), `<?xml version="1.0" encoding="UTF-8"?><multistatus>x</multistatus>`)
	require.Equal(t, strings.Count(string(out), "xmlns"), 0)
}

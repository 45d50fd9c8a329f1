package xmltree

import (
	"bytes"
	"testing"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Key   string
	Value any
}

func pairsOf(values *orderedmap.OrderedMap[string, any]) []pair {
	var pairs []pair
	for el := values.Front(); el != nil; el = el.Next() {
		pairs = append(pairs, pair{Key: el.Key, Value: el.Value})
	}

	return pairs
}

// atRoot returns a reader positioned on the root element.
func atRoot(t *testing.T, document string) *Reader {
	r := newTestReader(t, document)
	require.NoError(t, r.MoveToElement())
	return r
}

func TestKeyValue(t *testing.T) {
	r := atRoot(t, `<d:prop xmlns:d="DAV:" xmlns:x="urn:x">
		<d:displayname>report.pdf</d:displayname>
		<d:getcontentlength>1024</d:getcontentlength>
		<x:color/>
	</d:prop>`)

	values, err := KeyValue(r, "DAV:")
	require.NoError(t, err)
	require.Equal(t, pairsOf(values), []pair{
		{Key: "displayname", Value: "report.pdf"},
		{Key: "getcontentlength", Value: "1024"},
		{Key: "{urn:x}color", Value: nil},
	})

	require.Equal(t, r.Kind(), NodeNone)
}

func TestKeyValueClarkNames(t *testing.T) {
	r := atRoot(t, `<d:prop xmlns:d="DAV:"><d:getetag>abc</d:getetag><plain>x</plain></d:prop>`)

	values, err := KeyValue(r)
	require.NoError(t, err)
	require.Equal(t, pairsOf(values), []pair{
		{Key: "{DAV:}getetag", Value: "abc"},
		{Key: "{}plain", Value: "x"},
	})
}

func TestKeyValueDuplicateLastWins(t *testing.T) {
	r := atRoot(t, `<a><k>1</k><j>2</j><k>3</k></a>`)

	values, err := KeyValue(r, "")
	require.NoError(t, err)
	require.Equal(t, pairsOf(values), []pair{
		{Key: "k", Value: "3"},
		{Key: "j", Value: "2"},
	})
}

func TestKeyValueRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf).WithNamespaces(map[string]string{"DAV:": "d"})

	err := w.WriteElement(Name{Space: "DAV:", Local: "prop"}, NewElements().
		Set(Name{Space: "DAV:", Local: "displayname"}, "report.pdf").
		Set(Name{Space: "DAV:", Local: "getcontentlength"}, 1024).
		Set(Name{Space: "urn:x", Local: "color"}, "red"))

	require.NoError(t, err)
	require.NoError(t, w.Flush())

	values, err := KeyValue(atRoot(t, buf.String()), "DAV:")
	require.NoError(t, err)
	require.Equal(t, pairsOf(values), []pair{
		{Key: "displayname", Value: "report.pdf"},
		{Key: "getcontentlength", Value: "1024"},
		{Key: "{urn:x}color", Value: "red"},
	})
}

func TestScannersOnEmptyElement(t *testing.T) {
	for _, document := range []string{`<root><a/><next/></root>`, `<root><a></a><next/></root>`} {
		t.Run("KeyValue "+document, func(t *testing.T) {
			r := atRoot(t, document)
			_, err := r.Read()
			require.NoError(t, err)

			values, err := KeyValue(r)
			require.NoError(t, err)
			require.Equal(t, values.Len(), 0)

			require.Equal(t, r.Kind(), NodeElement)
			require.Equal(t, r.Name().Local, "next")
		})

		t.Run("ElementList "+document, func(t *testing.T) {
			r := atRoot(t, document)
			_, err := r.Read()
			require.NoError(t, err)

			values, err := ElementList(r)
			require.NoError(t, err)
			require.NotNil(t, values)
			require.Empty(t, values)

			require.Equal(t, r.Kind(), NodeElement)
			require.Equal(t, r.Name().Local, "next")
		})
	}
}

func TestScannersLeaveCursorOnNextSibling(t *testing.T) {
	r := atRoot(t, `<root><a><k>1</k></a><b><x/></b><next/></root>`)

	_, err := r.Read()
	require.NoError(t, err)

	values, err := KeyValue(r)
	require.NoError(t, err)
	require.Equal(t, values.Len(), 1)
	require.Equal(t, r.Name().Local, "b")

	names, err := ElementList(r)
	require.NoError(t, err)
	require.Equal(t, names, []string{"{}x"})
	require.Equal(t, r.Name().Local, "next")
	require.Equal(t, r.Depth(), 1)
}

func TestElementList(t *testing.T) {
	r := atRoot(t, `<d:prop xmlns:d="DAV:">
		<d:displayname><d:deep/></d:displayname>
		<d:getetag/>
		text
		<other>1</other>
	</d:prop>`)

	names, err := ElementList(r, "DAV:")
	require.NoError(t, err)
	require.Equal(t, names, []string{"displayname", "getetag", "{}other"})
}

func TestEnum(t *testing.T) {
	r := atRoot(t, `<d:privilege xmlns:d="DAV:"><d:read/><d:write/></d:privilege>`)

	names, err := Enum(r, "DAV:")
	require.NoError(t, err)
	require.Equal(t, names, []string{"read", "write"})
}

func TestScannerInsideElementParser(t *testing.T) {
	elementMap := ElementMap{
		Name{Space: "DAV:", Local: "resourcetype"}: func(r *Reader) (any, error) {
			return ElementList(r, "DAV:")
		},
	}

	r := atRoot(t, `<d:prop xmlns:d="DAV:">
		<d:resourcetype><d:collection/></d:resourcetype>
		<d:displayname>files</d:displayname>
	</d:prop>`).WithElementMap(elementMap)

	values, err := KeyValue(r, "DAV:")
	require.NoError(t, err)
	require.Equal(t, pairsOf(values), []pair{
		{Key: "resourcetype", Value: []string{"collection"}},
		{Key: "displayname", Value: "files"},
	})
}

func TestScannersOnTextNode(t *testing.T) {
	r := atRoot(t, `<a>text</a>`)
	_, err := r.Read()
	require.NoError(t, err)

	_, err = KeyValue(r)
	require.ErrorIs(t, err, ErrNotAnElement)

	_, err = ElementList(r)
	require.ErrorIs(t, err, ErrNotAnElement)

	_, err = Repeating(r, Name{Local: "a"})
	require.ErrorIs(t, err, ErrNotAnElement)

	var target struct{}
	require.ErrorIs(t, ValueObject(r, "", &target), ErrNotAnElement)
}

func TestScannersOnMalformedInput(t *testing.T) {
	var syntaxErr *SyntaxError

	_, err := KeyValue(atRoot(t, `<a><k>1</k>`))
	require.ErrorAs(t, err, &syntaxErr)

	_, err = ElementList(atRoot(t, `<a><k>1</k><j>`))
	require.ErrorAs(t, err, &syntaxErr)

	_, err = KeyValue(atRoot(t, `<a><k>1</j></a>`))
	require.ErrorAs(t, err, &syntaxErr)
}

func TestRepeating(t *testing.T) {
	r := atRoot(t, `<d:multistatus xmlns:d="DAV:">
		<d:response>a</d:response>
		<d:responsedescription>ignored</d:responsedescription>
		<d:response/>
		<d:response>b</d:response>
	</d:multistatus>`)

	values, err := Repeating(r, Name{Space: "DAV:", Local: "response"})
	require.NoError(t, err)
	require.Equal(t, values, []any{"a", nil, "b"})
}

type owner struct {
	Name string `xml:"name"`
}

type response struct {
	ID      string   `xml:"id,attr"`
	Href    string   `xml:"href"`
	Status  string   `xml:"status"`
	Size    int64    `xml:"size"`
	Tags    []string `xml:"tag"`
	Owner   *owner   `xml:"owner"`
	Missing string   `xml:"missing"`
}

func TestValueObject(t *testing.T) {
	r := atRoot(t, `<root><d:response xmlns:d="DAV:" xmlns:x="urn:x" id="7">
		<d:href>/files/</d:href>
		<d:status> ok </d:status>
		<d:size> 12 </d:size>
		<d:tag>a</d:tag>
		<d:tag>b</d:tag>
		<d:owner><d:name>albert</d:name></d:owner>
		<d:missing/>
		<x:href>ignored</x:href>
	</d:response><next/></root>`)

	_, err := r.Read()
	require.NoError(t, err)

	var value response
	require.NoError(t, ValueObject(r, "DAV:", &value))
	require.Equal(t, value, response{
		ID:     "7",
		Href:   "/files/",
		Status: " ok ",
		Size:   12,
		Tags:   []string{"a", "b"},
		Owner:  &owner{Name: "albert"},
	})

	require.Equal(t, r.Name().Local, "next")
}

func TestValueObjectRoundTrip(t *testing.T) {
	name := "albert"

	var buf bytes.Buffer

	w := NewWriter(&buf).WithNamespaces(map[string]string{"DAV:": "d"})
	RegisterClass(w, func(w *Writer, value resource) error {
		return WriteValueObject(w, value, "DAV:")
	})

	written := resource{ID: "1", Href: "/a", ETag: "abc", Size: 3, Tags: []string{"x", "y"}, Owner: &name}
	require.NoError(t, w.WriteElement(Name{Space: "DAV:", Local: "resource"}, written))
	require.NoError(t, w.Flush())

	var read resource
	require.NoError(t, ValueObject(atRoot(t, buf.String()), "DAV:", &read))
	require.Equal(t, read, written)
}

func TestValueObjectInvalidValue(t *testing.T) {
	r := atRoot(t, `<response><size>large</size></response>`)

	var value response
	err := ValueObject(r, "", &value)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestValueObjectInElementMap(t *testing.T) {
	elementMap := ElementMap{
		Name{Local: "owner"}: func(r *Reader) (any, error) {
			var value owner
			err := ValueObject(r, "", &value)
			return value, err
		},
	}

	r := atRoot(t, `<props><owner><name>albert</name></owner></props>`).WithElementMap(elementMap)

	values, err := KeyValue(r, "")
	require.NoError(t, err)
	require.Equal(t, pairsOf(values), []pair{{Key: "owner", Value: owner{Name: "albert"}}})
}

// Package xmltree bridges Go values and a streaming, namespace-aware XML tree.
//
// Serialization goes through a [Writer]. [Writer.Write] dispatches on the shape of the
// value it is given: scalars become text, values implementing [Serializable] write
// themselves, types registered in the writers [ClassMap] are handed to their
// [ClassSerializer], a [SerializerFunc] is invoked with the writer, and a [Sequence]
// of entries becomes one element per entry. Entries are either a [NamedEntry] (name,
// attributes and a nested value) or a [MapEntry] / [Elements] that map element names
// onto nested values. Nesting is unlimited.
//
// Deserialization goes through a [Reader], a forward-only cursor over the nodes of
// a document. The scanners [KeyValue] and [ElementList] consume the children of the
// element under the cursor and leave the cursor right after that element. They are
// typically called from an [ElementParser] registered in an [ElementMap]:
//
//	reader := xmltree.NewReader(body).WithElementMap(xmltree.ElementMap{
//	    xmltree.MustParseName("{DAV:}prop"): func(r *xmltree.Reader) (any, error) {
//	        return xmltree.ElementList(r, "DAV:")
//	    },
//	})
//
// Element names are passed around in clark notation, "{namespace}local". A [Name]
// converts between the textual and the structured form.
//
// [ValueObject] maps the children of an element onto a struct using a [Decoder],
// which walks the target type and pulls data out of a [Source].
package xmltree

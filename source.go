package xmltree

import "iter"

// Source is the abstract access to a scanned value, used by the [Decoder] to fill
// a go value. The [Decoder] walks the target type and pulls data out of the
// [Source] using the method that matches the kind of the target.
//
// If a [Source] can not be represented as the requested type, the method must
// return [ErrNotSupported].
//
// Sources produced by [ValueObject] expose the children of an element through
// [Source.Get] and [Source.KeyValues], repeated children through [Source.Iter],
// and text content through the primitive accessors. Two implementations are
// available to build your own:
//
//  1. [TextSource] parses its text using the strconv package.
//  2. [EmptySource] returns [ErrNotSupported] for all methods.
type Source interface {
	// Bool returns the current value as a bool.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Bool() (bool, error)

	// Int returns the current value as an int64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Int() (int64, error)

	// Uint returns the current value as an uint64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Uint() (uint64, error)

	// Float returns the current value as a float64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Float() (float64, error)

	// String returns the current value as a string.
	// Returns error ErrNotSupported if the value can not be represented as such.
	String() (string, error)

	// Get returns a child value of this [Source] if it exists.
	// Returns error [ErrNotSupported] if the current [Source] does not have any
	// child values. If the [Source] does have children, but just not the
	// requested child, [ErrNoValue] must be returned.
	Get(key string) (Source, error)

	// KeyValues interprets the [Source] as a map and iterates over the
	// elements within. It yields a pair of key and value [Source] instances.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	KeyValues() (iter.Seq2[Source, Source], error)

	// Iter interprets the [Source] as a slice and iterates over the
	// elements within.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	Iter() (iter.Seq[Source], error)
}

// IntSource extends the [Source] interface by methods for extracting integers of
// a specific bit size. The [Decoder] prefers these methods over [Source.Int] and
// [Source.Uint] if available, so that range errors are reported by the source.
type IntSource interface {
	Source

	Int8() (int8, error)
	Int16() (int16, error)
	Int32() (int32, error)
	Int64() (int64, error)

	Uint8() (uint8, error)
	Uint16() (uint16, error)
	Uint32() (uint32, error)
	Uint64() (uint64, error)
}

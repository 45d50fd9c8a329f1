package xmltree

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// TextSource adapts the text content of an element to a Source. Numbers and
// booleans are parsed using the strconv package after trimming surrounding
// whitespace, strings are returned as is.
type TextSource string

var _ IntSource = TextSource("")

func (s TextSource) Int8() (int8, error) {
	return parseInt[int8](s, 8)
}

func (s TextSource) Int16() (int16, error) {
	return parseInt[int16](s, 16)
}

func (s TextSource) Int32() (int32, error) {
	return parseInt[int32](s, 32)
}

func (s TextSource) Int64() (int64, error) {
	return parseInt[int64](s, 64)
}

func (s TextSource) Uint8() (uint8, error) {
	return parseUint[uint8](s, 8)
}

func (s TextSource) Uint16() (uint16, error) {
	return parseUint[uint16](s, 16)
}

func (s TextSource) Uint32() (uint32, error) {
	return parseUint[uint32](s, 32)
}

func (s TextSource) Uint64() (uint64, error) {
	return parseUint[uint64](s, 64)
}

func (s TextSource) Bool() (bool, error) {
	parsedValue, err := strconv.ParseBool(s.trimmed())
	return handleSyntaxErr(s.trimmed(), parsedValue, err)
}

func (s TextSource) Int() (int64, error) {
	return s.Int64()
}

func (s TextSource) Uint() (uint64, error) {
	return s.Uint64()
}

func (s TextSource) Float() (float64, error) {
	parsedValue, err := strconv.ParseFloat(s.trimmed(), 64)
	return handleSyntaxErr(s.trimmed(), parsedValue, err)
}

func (s TextSource) String() (string, error) {
	return string(s), nil
}

func (s TextSource) Get(key string) (Source, error) {
	return nil, ErrNotSupported
}

func (s TextSource) KeyValues() (iter.Seq2[Source, Source], error) {
	return nil, ErrNotSupported
}

func (s TextSource) Iter() (iter.Seq[Source], error) {
	return nil, ErrNotSupported
}

func (s TextSource) trimmed() string {
	return strings.TrimSpace(string(s))
}

func parseInt[T int8 | int16 | int32 | int64](s TextSource, bitSize int) (T, error) {
	intValue, err := strconv.ParseInt(s.trimmed(), 10, bitSize)
	return handleSyntaxErr(s.trimmed(), T(intValue), err)
}

func parseUint[T uint8 | uint16 | uint32 | uint64](s TextSource, bitSize int) (T, error) {
	intValue, err := strconv.ParseUint(s.trimmed(), 10, bitSize)
	return handleSyntaxErr(s.trimmed(), T(intValue), err)
}

func handleSyntaxErr[T any](inputValue string, value T, err error) (T, error) {
	var zeroValue T
	if errors.Is(err, strconv.ErrSyntax) {
		err := fmt.Errorf("parse %q: %w", inputValue, err)
		return zeroValue, errors.Join(err, ErrNotSupported)
	}

	if err != nil {
		return zeroValue, err
	}

	return value, nil
}

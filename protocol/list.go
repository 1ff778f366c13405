package protocol

import (
	"bytes"
	"reflect"
)

// Separator is the byte between the elements of a list.
type Separator byte

const (
	// Pipe separates top level lists, e.g. the entries of a reply.
	Pipe Separator = '|'

	// Comma separates some embedded multi value fields, e.g. group ids.
	Comma Separator = ','
)

// Split splits data on sep. Empty segments are kept, so "a|" yields "a" and
// "".
func (sep Separator) Split(data []byte) [][]byte {
	return bytes.Split(data, []byte{byte(sep)})
}

// UnmarshalList decodes a list separated by sep into the slice pointed to by
// v. Every element is decoded on its own and the first failure aborts.
func UnmarshalList(data []byte, sep Separator, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(v)}
	}

	if rv.Elem().Kind() != reflect.Slice {
		return &UnsupportedTypeError{Type: rv.Elem().Type()}
	}

	return decodeList(data, rv.Elem(), sep)
}

// AppendList appends the elements of the slice v separated by sep.
func AppendList(dst []byte, sep Separator, v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return dst, &UnsupportedTypeError{Type: rv.Type()}
	}

	return encodeList(dst, rv, sep)
}

func decodeList(data []byte, v reflect.Value, sep Separator) error {
	if len(data) == 0 {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	segments := sep.Split(data)
	list := reflect.MakeSlice(v.Type(), len(segments), len(segments))

	for i, segment := range segments {
		// Elements of a list never carry a list of the same separator, so
		// nested slices fall back to commas.
		if err := decodeValue(segment, list.Index(i), Comma); err != nil {
			return err
		}
	}

	v.Set(list)
	return nil
}

func encodeList(dst []byte, v reflect.Value, sep Separator) ([]byte, error) {
	var err error

	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			dst = append(dst, byte(sep))
		}

		if dst, err = encodeValue(dst, v.Index(i), Comma); err != nil {
			return dst, err
		}
	}

	return dst, nil
}

package protocol

import (
	"reflect"
	"strconv"
)

// Unmarshaler is implemented by types that decode themselves from wire text.
type Unmarshaler interface {
	UnmarshalQuery(data []byte) error
}

// Marshaler is implemented by types that append their own wire text. The
// output is not escaped any further.
type Marshaler interface {
	AppendQuery(dst []byte) []byte
}

var (
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
)

// Unmarshal decodes wire text into the value pointed to by v.
//
// Strings are unescaped, booleans use the ServerQuery convention ('0' is
// true), integers are parsed in base 10 at the width of the target, slices
// are pipe separated lists and structs are records whose fields are matched
// by their `query` tag. Types implementing Unmarshaler decode themselves.
//
// A nil v is accepted and discards the data.
func Unmarshal(data []byte, v interface{}) error {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(v)}
	}

	return decodeValue(data, rv.Elem(), Pipe)
}

// Marshal returns the wire text of v.
func Marshal(v interface{}) ([]byte, error) {
	return AppendValue(nil, v)
}

// AppendValue appends the wire text of v to dst.
func AppendValue(dst []byte, v interface{}) ([]byte, error) {
	if v == nil {
		return dst, nil
	}

	return encodeValue(dst, reflect.ValueOf(v), Pipe)
}

// DecodeBool decodes a ServerQuery boolean, where '0' means true and '1'
// means false.
func DecodeBool(data []byte) (bool, error) {
	if len(data) == 0 {
		return false, &DecodeError{Kind: UnexpectedEOF}
	}

	switch data[0] {
	case '0':
		return true, nil
	case '1':
		return false, nil
	default:
		return false, &DecodeError{Kind: UnexpectedByte, Byte: data[0]}
	}
}

// AppendBool is the inverse of DecodeBool.
func AppendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, '0')
	}

	return append(dst, '1')
}

func decodeValue(data []byte, v reflect.Value, sep Separator) error {
	if v.Kind() != reflect.Ptr && v.CanAddr() && v.Addr().Type().Implements(unmarshalerType) {
		return v.Addr().Interface().(Unmarshaler).UnmarshalQuery(data)
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}

		return decodeValue(data, v.Elem(), sep)

	case reflect.String:
		s, err := Unescape(data)
		if err != nil {
			return err
		}

		v.SetString(s)
		return nil

	case reflect.Bool:
		b, err := DecodeBool(data)
		if err != nil {
			return err
		}

		v.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(string(data), 10, v.Type().Bits())
		if err != nil {
			return &ParseIntError{Value: string(data), Err: err}
		}

		v.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(string(data), 10, v.Type().Bits())
		if err != nil {
			return &ParseIntError{Value: string(data), Err: err}
		}

		v.SetUint(n)
		return nil

	case reflect.Slice:
		return decodeList(data, v, sep)

	case reflect.Struct:
		return decodeRecord(data, v)

	default:
		return &UnsupportedTypeError{Type: v.Type()}
	}
}

func encodeValue(dst []byte, v reflect.Value, sep Separator) ([]byte, error) {
	if v.Type().Implements(marshalerType) {
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return dst, nil
		}

		return v.Interface().(Marshaler).AppendQuery(dst), nil
	}

	if v.CanAddr() && v.Addr().Type().Implements(marshalerType) {
		return v.Addr().Interface().(Marshaler).AppendQuery(dst), nil
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return dst, nil
		}

		return encodeValue(dst, v.Elem(), sep)

	case reflect.String:
		return AppendEscaped(dst, v.String()), nil

	case reflect.Bool:
		return AppendBool(dst, v.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(dst, v.Int(), 10), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(dst, v.Uint(), 10), nil

	case reflect.Slice, reflect.Array:
		return encodeList(dst, v, sep)

	case reflect.Struct:
		return encodeRecord(dst, v)

	default:
		return dst, &UnsupportedTypeError{Type: v.Type()}
	}
}

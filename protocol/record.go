package protocol

import (
	"bytes"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag holding the wire name of a record field.
//
//	type Version struct {
//		Version  string `query:"version"`
//		Build    uint64 `query:"build"`
//		Groups   []uint64 `query:"client_servergroups,comma"`
//		Internal string `query:"-"`
//	}
//
// Untagged exported fields use their lower cased Go name, untagged embedded
// structs contribute their own fields.
const TagName = "query"

type recordField struct {
	name  string
	index []int
	sep   Separator
}

// recordFields is the decode table of a record type, in declaration order
// and keyed by wire name.
type recordFields struct {
	list   []recordField
	byName map[string]recordField
}

var fieldCache sync.Map // map[reflect.Type]*recordFields

func cachedFields(t reflect.Type) *recordFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*recordFields)
	}

	f, _ := fieldCache.LoadOrStore(t, buildFields(t))
	return f.(*recordFields)
}

func buildFields(t reflect.Type) *recordFields {
	fields := &recordFields{byName: make(map[string]recordField)}
	collectFields(t, nil, fields)
	return fields
}

// collectFields adds the fields of t to fields. Untagged embedded structs are
// flattened, so shared groups of keys can be declared once.
func collectFields(t reflect.Type, prefix []int, fields *recordFields) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			// unexported
			continue
		}

		tag := sf.Tag.Get(TagName)
		if tag == "-" {
			continue
		}

		index := make([]int, len(prefix)+1)
		copy(index, prefix)
		index[len(prefix)] = i

		if sf.Anonymous && tag == "" && sf.Type.Kind() == reflect.Struct {
			collectFields(sf.Type, index, fields)
			continue
		}

		name, opts := tag, ""
		if comma := strings.IndexByte(tag, ','); comma >= 0 {
			name, opts = tag[:comma], tag[comma+1:]
		}

		if name == "" {
			name = strings.ToLower(sf.Name)
		}

		field := recordField{name: name, index: index, sep: Pipe}
		if opts == "comma" {
			field.sep = Comma
		}

		fields.list = append(fields.list, field)
		fields.byName[name] = field
	}
}

// splitPair splits a `key=value` token on the first '=' only, values may
// contain more of them.
func splitPair(token []byte) (key, value []byte, hasValue bool) {
	eq := bytes.IndexByte(token, '=')
	if eq < 0 {
		return token, nil, false
	}

	return token[:eq], token[eq+1:], true
}

func decodeRecord(data []byte, v reflect.Value) error {
	fields := cachedFields(v.Type())
	v.Set(reflect.Zero(v.Type()))

	for _, token := range bytes.Split(data, []byte{' '}) {
		if len(token) == 0 {
			continue
		}

		key, value, hasValue := splitPair(token)

		field, ok := fields.byName[string(key)]
		if !ok || !hasValue {
			continue
		}

		if err := decodeValue(value, v.FieldByIndex(field.index), field.sep); err != nil {
			return &FieldError{Field: field.name, Err: err}
		}
	}

	return nil
}

func encodeRecord(dst []byte, v reflect.Value) ([]byte, error) {
	var err error

	for i, field := range cachedFields(v.Type()).list {
		if i > 0 {
			dst = append(dst, ' ')
		}

		dst = append(dst, field.name...)
		dst = append(dst, '=')

		if dst, err = encodeValue(dst, v.FieldByIndex(field.index), field.sep); err != nil {
			return dst, err
		}
	}

	return dst, nil
}

package protocol

import (
	"bytes"
	"sort"
)

// Value is the optional value of an entry key. A key sent without `=` has
// an invalid Value, which is different from the key being absent.
type Value struct {
	String string
	Valid  bool
}

// Some returns a valid Value holding s.
func Some(s string) Value {
	return Value{String: s, Valid: true}
}

// Entry is one record worth of `key[=value]` tokens. Values are kept as
// raw, still escaped, wire text.
type Entry map[string]Value

// ParseEntry tokenizes a single entry.
func ParseEntry(data []byte) Entry {
	entry := make(Entry)

	for _, token := range bytes.Split(data, []byte{' '}) {
		if len(token) == 0 {
			continue
		}

		key, value, hasValue := splitPair(token)
		entry[string(key)] = Value{String: string(value), Valid: hasValue}
	}

	return entry
}

// Has reports whether key was sent, with or without a value.
func (e Entry) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Get returns the unescaped value of key. ok is false when the key is
// absent or was sent without a value.
func (e Entry) Get(key string) (value string, ok bool) {
	v, ok := e[key]
	if !ok || !v.Valid {
		return "", false
	}

	value, err := Unescape([]byte(v.String))
	if err != nil {
		return "", false
	}

	return value, true
}

// Unmarshal decodes the value of key into v. A key that is absent or has no
// value leaves v untouched.
func (e Entry) Unmarshal(key string, v interface{}) error {
	value, ok := e[key]
	if !ok || !value.Valid {
		return nil
	}

	if err := Unmarshal([]byte(value.String), v); err != nil {
		return &FieldError{Field: key, Err: err}
	}

	return nil
}

// Keys returns the keys of the entry in sorted order.
func (e Entry) Keys() []string {
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}

func (e *Entry) UnmarshalQuery(data []byte) error {
	*e = ParseEntry(data)
	return nil
}

// AppendQuery writes the entry with its keys sorted.
func (e Entry) AppendQuery(dst []byte) []byte {
	for i, key := range e.Keys() {
		if i > 0 {
			dst = append(dst, ' ')
		}

		dst = append(dst, key...)

		if value := e[key]; value.Valid {
			dst = append(dst, '=')
			dst = append(dst, value.String...)
		}
	}

	return dst
}

// Response is the ordered list of entries a command returned. Commands that
// return a list produce several entries, all others produce one.
type Response []Entry

// ParseResponse splits a reply on '|' and tokenizes every entry. An empty
// reply has no entries.
func ParseResponse(data []byte) Response {
	if len(data) == 0 {
		return Response{}
	}

	segments := Pipe.Split(data)
	resp := make(Response, 0, len(segments))

	for _, segment := range segments {
		resp = append(resp, ParseEntry(segment))
	}

	return resp
}

// First returns the first entry, or an empty one.
func (r Response) First() Entry {
	if len(r) == 0 {
		return Entry{}
	}

	return r[0]
}

func (r *Response) UnmarshalQuery(data []byte) error {
	*r = ParseResponse(data)
	return nil
}

func (r Response) AppendQuery(dst []byte) []byte {
	for i, entry := range r {
		if i > 0 {
			dst = append(dst, byte(Pipe))
		}

		dst = entry.AppendQuery(dst)
	}

	return dst
}

var (
	_ Unmarshaler = (*Entry)(nil)
	_ Marshaler   = Entry(nil)
	_ Unmarshaler = (*Response)(nil)
	_ Marshaler   = Response(nil)
)

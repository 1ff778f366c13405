package protocol

import "strings"

// escapes maps each escape letter to the byte it stands for.
var escapes = [256]byte{
	'\\': '\\',
	'/':  '/',
	's':  ' ',
	'p':  '|',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}

// escapeLetters is the inverse of escapes.
var escapeLetters = [256]byte{
	'\\': '\\',
	'/':  '/',
	' ':  's',
	'|':  'p',
	'\a': 'a',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'\v': 'v',
}

// Unescape reverses the ServerQuery string escaping.
func Unescape(buf []byte) (string, error) {
	var b strings.Builder
	b.Grow(len(buf))

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}

		i++
		if i == len(buf) {
			return "", &DecodeError{Kind: UnexpectedEOF}
		}

		unescaped := escapes[buf[i]]
		if unescaped == 0 {
			return "", &DecodeError{Kind: UnexpectedByte, Byte: buf[i]}
		}

		b.WriteByte(unescaped)
	}

	return b.String(), nil
}

// AppendEscaped appends the escaped form of s to dst.
func AppendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if letter := escapeLetters[s[i]]; letter != 0 {
			dst = append(dst, '\\', letter)
			continue
		}

		dst = append(dst, s[i])
	}

	return dst
}

// Escape returns the escaped form of s.
func Escape(s string) string {
	return string(AppendEscaped(make([]byte, 0, len(s)), s))
}

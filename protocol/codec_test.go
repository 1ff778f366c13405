package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/tsquery/protocol"
)

var _ = Describe("Codec", func() {
	Describe("booleans", func() {
		It("decodes '0' as true and '1' as false", func() {
			var b bool

			Expect(protocol.Unmarshal([]byte("0"), &b)).To(Succeed())
			Expect(b).To(BeTrue())

			Expect(protocol.Unmarshal([]byte("1"), &b)).To(Succeed())
			Expect(b).To(BeFalse())
		})

		It("encodes with the same convention", func() {
			Expect(protocol.Marshal(true)).To(Equal([]byte("0")))
			Expect(protocol.Marshal(false)).To(Equal([]byte("1")))
		})

		It("rejects empty and unknown values", func() {
			var b bool
			var decodeErr *protocol.DecodeError

			err := protocol.Unmarshal([]byte(""), &b)
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(decodeErr.Kind).To(Equal(protocol.UnexpectedEOF))

			err = protocol.Unmarshal([]byte("2"), &b)
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(decodeErr.Kind).To(Equal(protocol.UnexpectedByte))
		})
	})

	Describe("integers", func() {
		It("decodes at the width of the target", func() {
			var small uint8
			var signed int32
			var id protocol.ClientID

			Expect(protocol.Unmarshal([]byte("255"), &small)).To(Succeed())
			Expect(small).To(Equal(uint8(255)))

			Expect(protocol.Unmarshal([]byte("-42"), &signed)).To(Succeed())
			Expect(signed).To(Equal(int32(-42)))

			Expect(protocol.Unmarshal([]byte("7"), &id)).To(Succeed())
			Expect(id).To(Equal(protocol.ClientID(7)))
		})

		It("reports a ParseIntError, not a DecodeError", func() {
			var small uint8

			err := protocol.Unmarshal([]byte("256"), &small)

			var parseErr *protocol.ParseIntError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Value).To(Equal("256"))

			var decodeErr *protocol.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeFalse())

			var n int
			err = protocol.Unmarshal([]byte("abc"), &n)
			Expect(errors.As(err, &parseErr)).To(BeTrue())
		})
	})

	Describe("lists", func() {
		It("decodes pipe separated lists", func() {
			var ids []uint64

			Expect(protocol.Unmarshal([]byte("1|2|3"), &ids)).To(Succeed())
			Expect(ids).To(Equal([]uint64{1, 2, 3}))
		})

		It("decodes comma separated lists", func() {
			var names []string

			Expect(protocol.UnmarshalList([]byte(`a,b\sc`), protocol.Comma, &names)).To(Succeed())
			Expect(names).To(Equal([]string{"a", "b c"}))
		})

		It("decodes an empty input as an empty list", func() {
			var ids []uint64

			Expect(protocol.Unmarshal([]byte(""), &ids)).To(Succeed())
			Expect(ids).To(BeEmpty())
		})

		It("fails when any element fails", func() {
			var ids []uint64

			err := protocol.Unmarshal([]byte("1|x|3"), &ids)

			var parseErr *protocol.ParseIntError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
		})

		It("encodes with the requested separator", func() {
			Expect(protocol.Marshal([]uint64{1, 2, 3})).To(Equal([]byte("1|2|3")))

			out, err := protocol.AppendList(nil, protocol.Comma, []protocol.ServerGroupID{6, 8})
			Expect(err).To(Succeed())
			Expect(string(out)).To(Equal("6,8"))
		})
	})

	Describe("Unmarshal()", func() {
		It("ignores a nil target", func() {
			Expect(protocol.Unmarshal([]byte("anything"), nil)).To(Succeed())
		})

		It("requires a pointer", func() {
			var s string

			err := protocol.Unmarshal([]byte("x"), s)

			var invalidErr *protocol.InvalidUnmarshalError
			Expect(errors.As(err, &invalidErr)).To(BeTrue())
		})

		It("rejects types without a wire form", func() {
			var f float64

			err := protocol.Unmarshal([]byte("1.5"), &f)

			var unsupportedErr *protocol.UnsupportedTypeError
			Expect(errors.As(err, &unsupportedErr)).To(BeTrue())
		})

		It("allocates pointer targets", func() {
			var s *string

			Expect(protocol.Unmarshal([]byte(`a\sb`), &s)).To(Succeed())
			Expect(s).NotTo(BeNil())
			Expect(*s).To(Equal("a b"))
		})
	})
})

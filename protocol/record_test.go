package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/tsquery/protocol"
)

type serverVersion struct {
	Version  string `query:"version"`
	Build    uint64 `query:"build"`
	Platform string `query:"platform"`
}

type clientRecord struct {
	ID      protocol.ClientID        `query:"clid"`
	Groups  []protocol.ServerGroupID `query:"client_servergroups,comma"`
	Away    bool                     `query:"client_away"`
	Name    string
	Ignored string `query:"-"`
}

var _ = Describe("Records", func() {
	It("decodes tagged fields", func() {
		var v serverVersion

		err := protocol.Unmarshal([]byte("version=3.13.7 build=1655727713 platform=Linux"), &v)
		Expect(err).To(Succeed())
		Expect(v).To(Equal(serverVersion{
			Version:  "3.13.7",
			Build:    1655727713,
			Platform: "Linux",
		}))
	})

	It("defaults missing fields and ignores unknown keys", func() {
		v := serverVersion{Build: 12}

		err := protocol.Unmarshal([]byte("version=1 unknown=x flag"), &v)
		Expect(err).To(Succeed())
		Expect(v).To(Equal(serverVersion{Version: "1"}))
	})

	It("keeps '=' inside values", func() {
		var v serverVersion

		Expect(protocol.Unmarshal([]byte("platform=a=b"), &v)).To(Succeed())
		Expect(v.Platform).To(Equal("a=b"))
	})

	It("decodes comma lists, untagged names and skips ignored fields", func() {
		var c clientRecord

		err := protocol.Unmarshal([]byte("clid=3 client_servergroups=6,8 client_away=0 name=bob ignored=x"), &c)
		Expect(err).To(Succeed())
		Expect(c).To(Equal(clientRecord{
			ID:     3,
			Groups: []protocol.ServerGroupID{6, 8},
			Away:   true,
			Name:   "bob",
		}))
	})

	It("wraps a malformed value in a FieldError", func() {
		var v serverVersion

		err := protocol.Unmarshal([]byte("version=1 build=abc"), &v)

		var fieldErr *protocol.FieldError
		Expect(errors.As(err, &fieldErr)).To(BeTrue())
		Expect(fieldErr.Field).To(Equal("build"))

		var parseErr *protocol.ParseIntError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
	})

	It("encodes fields in declaration order", func() {
		out, err := protocol.Marshal(serverVersion{Version: "3.13.7", Build: 1, Platform: "Mac OS"})
		Expect(err).To(Succeed())
		Expect(string(out)).To(Equal(`version=3.13.7 build=1 platform=Mac\sOS`))

		var back serverVersion
		Expect(protocol.Unmarshal(out, &back)).To(Succeed())
		Expect(back).To(Equal(serverVersion{Version: "3.13.7", Build: 1, Platform: "Mac OS"}))
	})

	It("decodes what it encodes", func() {
		for _, c := range []clientRecord{
			{ID: 3, Groups: []protocol.ServerGroupID{6, 8}, Away: true, Name: "bob the|builder\n"},
			{ID: 18446744073709551615, Groups: []protocol.ServerGroupID{2}, Away: false, Name: "a=b /\\\a\v"},
			{ID: 0},
		} {
			out, err := protocol.Marshal(c)
			Expect(err).To(Succeed())

			var back clientRecord
			Expect(protocol.Unmarshal(out, &back)).To(Succeed())
			Expect(back).To(Equal(c))
		}
	})
})

package codec_test

import (
	"github.com/mucharafal/py4j/codec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("argument line codec", func() {
	DescribeTable("decodes well-formed lines",
		func(line string, kind codec.Kind) {
			v, err := codec.DecodeArgLine(line)
			Expect(err).ToNot(HaveOccurred())
			Expect(v.Kind).To(Equal(kind))
		},
		Entry("int", "i42", codec.KindInt),
		Entry("long", "l9000000000", codec.KindLong),
		Entry("double", "d3.14", codec.KindDouble),
		Entry("boolean true", "bTrue", codec.KindBoolean),
		Entry("boolean false", "bFalse", codec.KindBoolean),
		Entry("string", "shello", codec.KindString),
		Entry("char", "cA", codec.KindChar),
		Entry("null", "n", codec.KindNull),
		Entry("reference", "ro3", codec.KindReference),
		Entry("bytes", "L"+`aGVsbG8=`, codec.KindBytes),
		Entry("decimal", "D12.50", codec.KindDecimal),
	)

	It("rejects unknown tags", func() {
		_, err := codec.DecodeArgLine("zbogus")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty line", func() {
		_, err := codec.DecodeArgLine("")
		Expect(err).To(HaveOccurred())
	})

	It("rejects oversized integers", func() {
		_, err := codec.DecodeArgLine("i99999999999999999999")
		Expect(err).To(HaveOccurred())
	})

	It("round-trips string escaping", func() {
		raw := "line1\nline2\r\\tab"
		escaped := codec.EscapeString(raw)
		Expect(escaped).ToNot(ContainSubstring("\n"))
		Expect(codec.UnescapeString(escaped)).To(Equal(raw))
	})

	It("encodes a string argument back to its wire form", func() {
		line := codec.EncodeArgLine(codec.Str("hi\nthere"))
		Expect(line).To(Equal(`shi\nthere`))
	})

	It("round-trips every Value kind through encode/decode", func() {
		values := []codec.Value{
			codec.Null(),
			codec.Int(7),
			codec.Long(-123456789012),
			codec.Double(2.5),
			codec.Bool(true),
			codec.Bool(false),
			codec.Str("a\\b\nc"),
			codec.Char('Z'),
			codec.Ref("o42"),
			codec.Bytes([]byte("payload")),
			codec.Decimal("99.990"),
		}
		for _, v := range values {
			line := codec.EncodeArgLine(v)
			got, err := codec.DecodeArgLine(line)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(v))
		}
	})
})

package codec_test

import (
	"bufio"
	"bytes"

	"github.com/mucharafal/py4j/codec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("request framing", func() {
	It("writes and reads back a full command", func() {
		buf := &bytes.Buffer{}
		w := bufio.NewWriter(buf)

		err := codec.WriteCommand(w, "c", "constructor", codec.Str("java.lang.StringBuilder"))
		Expect(err).ToNot(HaveOccurred())

		r := bufio.NewReader(buf)
		group, err := codec.ReadLine(r)
		Expect(err).ToNot(HaveOccurred())
		Expect(group).To(Equal("c"))

		sub, err := codec.ReadLine(r)
		Expect(err).ToNot(HaveOccurred())
		Expect(sub).To(Equal("constructor"))

		args, err := codec.ReadArgs(r)
		Expect(err).ToNot(HaveOccurred())
		Expect(args).To(HaveLen(1))
		Expect(args[0].Str).To(Equal("java.lang.StringBuilder"))
	})

	It("stops at the terminal e line with zero arguments", func() {
		r := bufio.NewReader(bytes.NewBufferString("e\n"))
		args, err := codec.ReadArgs(r)
		Expect(err).ToNot(HaveOccurred())
		Expect(args).To(BeEmpty())
	})

	It("propagates a decode error for a malformed argument", func() {
		r := bufio.NewReader(bytes.NewBufferString("zzz\ne\n"))
		_, err := codec.ReadArgs(r)
		Expect(err).To(HaveOccurred())
	})
})

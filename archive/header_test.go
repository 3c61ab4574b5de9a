package archive_test

import (
	"archive/tar"
	"strings"

	"github.com/cirocosta/snapper/archive"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Header", func() {

	Describe("ParseHeader", func() {

		var (
			block []byte
			hdr   archive.Header
			err   error
		)

		JustBeforeEach(func() {
			hdr, err = archive.ParseHeader(block)
		})

		Context("with a block that is not 512 bytes long", func() {
			BeforeEach(func() {
				block = make([]byte, 100)
			})

			It("fails", func() {
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a ustar header", func() {
			BeforeEach(func() {
				block = buildTar(entry{name: "a.out", body: "x\ny\nz"})[:archive.BlockSize]
			})

			It("succeeds", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("decodes every field", func() {
				Expect(hdr.Name).To(Equal("a.out"))
				Expect(hdr.Size).To(BeEquivalentTo(5))
				Expect(hdr.TypeFlag).To(BeEquivalentTo('0'))
				Expect(hdr.Magic).To(HavePrefix("ustar"))
				Expect(hdr.IsRegular()).To(BeTrue())
				Expect(hdr.ContentBlocks()).To(BeEquivalentTo(1))
			})

			It("carries a checksum matching the computed one", func() {
				Expect(hdr.Checksum).To(Equal(archive.ComputeChecksum(block)))
			})
		})

		Context("with a name split into prefix and name", func() {
			var long string

			BeforeEach(func() {
				long = strings.Repeat("d", 80) + "/" + strings.Repeat("f", 60) + ".out"
				block = buildTar(entry{name: long, body: "content"})[:archive.BlockSize]
			})

			It("joins prefix and name", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(hdr.Name).To(Equal(long))
			})
		})

		Context("with a directory", func() {
			BeforeEach(func() {
				block = buildTar(entry{name: "logs/", typeflag: tar.TypeDir})[:archive.BlockSize]
			})

			It("is a directory", func() {
				Expect(hdr.IsDirectory()).To(BeTrue())
				Expect(hdr.IsRegular()).To(BeFalse())
			})
		})
	})

	table.DescribeTable("size field parsing",
		func(raw string, expected int) {
			block := make([]byte, archive.BlockSize)
			block[0] = 'f'
			copy(block[124:136], raw)

			hdr, err := archive.ParseHeader(block)
			Expect(err).NotTo(HaveOccurred())
			Expect(hdr.Size).To(BeEquivalentTo(expected))
		},
		table.Entry("NUL terminated", "00000000012\x00", 10),
		table.Entry("space terminated", "12 ", 10),
		table.Entry("leading space", " 12", 0),
		table.Entry("non octal suffix", "178", 15),
		table.Entry("garbage", "zz", 0),
		table.Entry("empty", "", 0),
	)

	Describe("ComputeChecksum", func() {
		It("counts the checksum field as spaces", func() {
			block := make([]byte, archive.BlockSize)
			Expect(archive.ComputeChecksum(block)).To(BeEquivalentTo(8 * ' '))

			copy(block[148:156], "77777777")
			Expect(archive.ComputeChecksum(block)).To(BeEquivalentTo(8 * ' '))

			block[0] = 1
			Expect(archive.ComputeChecksum(block)).To(BeEquivalentTo(8*' ' + 1))
		})
	})

	table.DescribeTable("CleanName",
		func(name, expected string) {
			Expect(archive.CleanName(name)).To(Equal(expected))
		},
		table.Entry("plain", "a.out", "a.out"),
		table.Entry("dot slash", "./a.out", "a.out"),
		table.Entry("absolute", "/var/a.out", "var/a.out"),
		table.Entry("many slashes", "///a.out", "a.out"),
		table.Entry("dot slash then slashes", ".//a.out", "a.out"),
		table.Entry("only one dot slash removed", "././a.out", "./a.out"),
		table.Entry("embedded NUL", "a.out\x00junk", "a.out"),
	)
})

package archive_test

import (
	"time"

	"code.cloudfoundry.org/lager/lagertest"
	"github.com/cirocosta/snapper/archive"
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractTarGz", func() {

	var (
		opts       archive.Options
		compressed []byte
		res        archive.Extraction
		err        error
	)

	BeforeEach(func() {
		opts = archive.DefaultOptions()
	})

	JustBeforeEach(func() {
		res, err = archive.ExtractTarGz(lagertest.NewTestLogger("test"), compressed, opts)
	})

	Context("with a well-formed snapshot", func() {
		BeforeEach(func() {
			compressed = gzipped(buildTar(
				entry{name: "metadata.out", body: "SNAP_VERSION=1.0.0"},
				entry{name: "a.out", body: "x\ny\nz"},
			))
		})

		It("returns the real members", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Synthetic).To(BeFalse())
			Expect(res.Files).To(HaveLen(2))
			Expect(res.Files[1]).To(Equal(archive.ExtractedFile{Filename: "a.out", Content: "x\ny\nz"}))
		})
	})

	Context("with a payload that is not gzip", func() {
		BeforeEach(func() {
			compressed = []byte("definitely not gzip")
		})

		It("fails with a decompression error", func() {
			Expect(err).To(HaveOccurred())

			_, ok := errors.Cause(err).(*archive.DecompressionError)
			Expect(ok).To(BeTrue())
		})

		Context("with the legacy fallback", func() {
			BeforeEach(func() {
				opts.LegacyFallback = true
			})

			It("substitutes the flagged fallback set", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Synthetic).To(BeTrue())
				Expect(res.Reason).To(Equal("decompression-failed"))
				Expect(res.Files).To(HaveLen(5))
				Expect(res.Files[0].Filename).To(Equal("metadata.out"))
				Expect(res.Files[0].Content).To(ContainSubstring("SNAP_SYNTHETIC=true"))
			})
		})
	})

	Context("with an archive that has no members", func() {
		BeforeEach(func() {
			compressed = gzipped(make([]byte, 2*archive.BlockSize))
		})

		It("returns no files", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Synthetic).To(BeFalse())
			Expect(res.Files).To(BeEmpty())
		})

		Context("with the legacy fallback", func() {
			BeforeEach(func() {
				opts.LegacyFallback = true
			})

			It("substitutes the fallback set", func() {
				Expect(res.Synthetic).To(BeTrue())
				Expect(res.Reason).To(Equal("no-files-extracted"))
			})
		})
	})

	Context("with an archive missing metadata.out", func() {
		BeforeEach(func() {
			compressed = gzipped(buildTar(entry{name: "a.out", body: "a"}))
		})

		It("returns the members as they are", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Synthetic).To(BeFalse())
			Expect(res.Files).To(HaveLen(1))
		})

		Context("with the legacy fallback", func() {
			BeforeEach(func() {
				opts.LegacyFallback = true
			})

			It("substitutes the fallback set", func() {
				Expect(res.Synthetic).To(BeTrue())
				Expect(res.Reason).To(Equal("metadata-missing"))
			})
		})
	})

	Context("with metadata.out inside a directory", func() {
		BeforeEach(func() {
			opts.LegacyFallback = true
			compressed = gzipped(buildTar(entry{name: "snap/metadata.out", body: "SNAP_VERSION=2"}))
		})

		It("accepts the archive", func() {
			Expect(res.Synthetic).To(BeFalse())
			Expect(res.Files[0].Filename).To(Equal("snap/metadata.out"))
		})
	})
})

var _ = Describe("FallbackFiles", func() {
	It("stamps the metadata with the given time", func() {
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

		files := archive.FallbackFiles(now)
		Expect(archive.HasMetadata(files)).To(BeTrue())
		Expect(files[0].Content).To(ContainSubstring("TIMESTAMP=2024-03-01T10:00:00.000Z"))
	})
})

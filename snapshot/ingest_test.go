package snapshot_test

import (
	"context"
	"time"

	"code.cloudfoundry.org/lager/lagertest"
	"github.com/cirocosta/snapper/archive"
	"github.com/cirocosta/snapper/snapshot"
	"github.com/cirocosta/snapper/store"
	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ingester", func() {

	var (
		ctx      context.Context
		logger   *lagertest.TestLogger
		backend  *recordingStore
		ingester *snapshot.Ingester
		now      = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = lagertest.NewTestLogger("test")

		s, err := store.Open(store.Config{InMemory: true})
		Expect(err).NotTo(HaveOccurred())

		backend = &recordingStore{Store: s, failing: map[string]bool{}}
		ingester = &snapshot.Ingester{
			Store:   backend,
			Logger:  logger,
			Options: archive.DefaultOptions(),
			Workers: 2,
			Now:     func() time.Time { return now },
		}
	})

	AfterEach(func() {
		Expect(backend.Store.Close()).To(Succeed())
	})

	Describe("Ingest", func() {
		var (
			name string
			data []byte
			res  snapshot.Archive
			err  error
		)

		JustBeforeEach(func() {
			res, err = ingester.Ingest(ctx, name, data)
		})

		Context("with a valid tar.gz snapshot", func() {
			BeforeEach(func() {
				name = "x.tar.gz"
				data = tarGz(
					member{"metadata.out", "SNAP_VERSION=1.0.0\nSNAP_HOSTNAME=h1"},
					member{"a.out", "x\ny\nz"},
				)
			})

			It("stores the member and the metadata record", func() {
				Expect(err).NotTo(HaveOccurred())

				records, err := backend.GetAll(ctx, "x.tar.gz")
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))

				Expect(records[0].Member).To(Equal(store.MetadataMember))
				Expect(records[0].Content).To(Equal("SNAP_VERSION=1.0.0\nSNAP_HOSTNAME=h1"))
				Expect(records[0].Metadata).To(Equal(map[string]string{
					"SNAP_VERSION":  "1.0.0",
					"SNAP_HOSTNAME": "h1",
				}))
				Expect(records[0].FileSizeBytes).To(Equal(int64(len(data))))
				Expect(records[0].Digest).To(Equal(digest.FromBytes(data).String()))

				Expect(records[1]).To(Equal(store.Record{
					Archive:      "x.tar.gz",
					Member:       "a.out",
					Content:      "x\ny\nz",
					LineCount:    3,
					LastAccessed: now,
				}))
			})

			It("summarizes the archive", func() {
				Expect(res.Name).To(Equal("x.tar.gz"))
				Expect(res.NumFiles).To(Equal(2))
				Expect(res.LineCount).To(Equal(5))
				Expect(res.SizeBytes).To(Equal(int64(len(data))))
				Expect(res.Metadata.Hostname()).To(Equal("h1"))
				Expect(res.LastOpened).To(Equal(now))
				Expect(res.Synthetic).To(BeFalse())
				Expect(res.Failed).To(BeEmpty())
			})

			Context("when ingested again with other members", func() {
				JustBeforeEach(func() {
					Expect(err).NotTo(HaveOccurred())

					_, err = ingester.Ingest(ctx, name, tarGz(
						member{"metadata.out", "SNAP_VERSION=1.0.1"},
						member{"b.out", "b"},
					))
				})

				It("replaces the previous records", func() {
					Expect(err).NotTo(HaveOccurred())

					records, err := backend.GetAll(ctx, "x.tar.gz")
					Expect(err).NotTo(HaveOccurred())
					Expect(records).To(HaveLen(2))
					Expect(records[0].Metadata).To(HaveKeyWithValue("SNAP_VERSION", "1.0.1"))
					Expect(records[1].Member).To(Equal("b.out"))
				})
			})

			Context("with some member writes failing", func() {
				BeforeEach(func() {
					data = tarGz(
						member{"metadata.out", "SNAP_VERSION=1.0.0"},
						member{"a.out", "a"},
						member{"b.out", "b"},
						member{"c.out", "c"},
					)
					backend.failing["b.out"] = true
				})

				It("stores every other member", func() {
					Expect(err).NotTo(HaveOccurred())

					records, err := backend.GetAll(ctx, "x.tar.gz")
					Expect(err).NotTo(HaveOccurred())

					var stored []string
					for _, r := range records {
						stored = append(stored, r.Member)
					}

					Expect(stored).To(Equal([]string{store.MetadataMember, "a.out", "c.out"}))
				})

				It("reports and logs the failed member", func() {
					Expect(res.Failed).To(Equal([]string{"b.out"}))
					Expect(logger.LogMessages()).To(ContainElement(ContainSubstring("store-member-failed")))
				})
			})
		})

		Context("with a tar.gz snapshot lacking metadata.out", func() {
			BeforeEach(func() {
				name = "x.tar.gz"
				data = tarGz(member{"a.out", "x"})
			})

			It("fails without touching the store", func() {
				_, ok := errors.Cause(err).(*snapshot.MissingMetadataError)
				Expect(ok).To(BeTrue())
				Expect(backend.writes()).To(BeZero())
			})

			Context("with the legacy fallback enabled", func() {
				BeforeEach(func() {
					ingester.Options.LegacyFallback = true
				})

				It("stores the flagged fallback set", func() {
					Expect(err).NotTo(HaveOccurred())
					Expect(res.Synthetic).To(BeTrue())
					Expect(res.Metadata.Synthetic()).To(BeTrue())
					Expect(res.NumFiles).To(Equal(5))
				})
			})
		})

		Context("with metadata.out only nested in a directory", func() {
			BeforeEach(func() {
				name = "x.tgz"
				data = tarGz(
					member{"snap/metadata.out", "SNAP_VERSION=1.0.0"},
					member{"snap/a.out", "x"},
				)
			})

			It("fails with a missing metadata error", func() {
				_, ok := errors.Cause(err).(*snapshot.MissingMetadataError)
				Expect(ok).To(BeTrue())
				Expect(backend.writes()).To(BeZero())
			})
		})

		Context("with metadata.out lacking SNAP_VERSION", func() {
			BeforeEach(func() {
				name = "x.tar.gz"
				data = tarGz(
					member{"metadata.out", "SNAP_HOSTNAME=h1"},
					member{"a.out", "x"},
				)
			})

			It("fails without touching the store", func() {
				_, ok := errors.Cause(err).(*snapshot.MissingVersionError)
				Expect(ok).To(BeTrue())
				Expect(backend.writes()).To(BeZero())
			})
		})

		Context("with an unsupported extension", func() {
			BeforeEach(func() {
				name = "x.rar"
				data = []byte("whatever")
			})

			It("fails before decoding", func() {
				_, ok := errors.Cause(err).(*snapshot.UnsupportedFormatError)
				Expect(ok).To(BeTrue())
				Expect(backend.writes()).To(BeZero())
			})
		})

		Context("with a corrupted tar.gz", func() {
			BeforeEach(func() {
				name = "x.tar.gz"
				data = []byte("not gzip at all")
			})

			It("surfaces the decompression error", func() {
				_, ok := errors.Cause(err).(*archive.DecompressionError)
				Expect(ok).To(BeTrue())
				Expect(backend.writes()).To(BeZero())
			})
		})

		Context("with a zip snapshot", func() {
			BeforeEach(func() {
				name = "y.zip"
				data = zipped(
					member{"metadata.out", "SNAP_VERSION=2.0.0"},
					member{"disk.out", "1\n2"},
				)
			})

			It("stores its members", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Metadata.Version()).To(Equal("2.0.0"))

				records, err := backend.GetAll(ctx, "y.zip")
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
				Expect(records[1].Member).To(Equal("disk.out"))
				Expect(records[1].LineCount).To(Equal(2))
			})
		})
	})

	Context("with two ingested archives", func() {
		BeforeEach(func() {
			_, err := ingester.Ingest(ctx, "a.tar.gz", tarGz(
				member{"metadata.out", "SNAP_VERSION=1\nSNAP_HOSTNAME=alpha"},
				member{"log.out", "a\nb\nc"},
				member{"only-a.out", "1"},
			))
			Expect(err).NotTo(HaveOccurred())

			ingester.Now = func() time.Time { return now.Add(time.Hour) }

			_, err = ingester.Ingest(ctx, "b.tar.gz", tarGz(
				member{"metadata.out", "SNAP_VERSION=1\nSNAP_HOSTNAME=beta"},
				member{"log.out", "a\nx\nc"},
			))
			Expect(err).NotTo(HaveOccurred())
		})

		Describe("List", func() {
			It("summarizes them, newest first", func() {
				archives, err := ingester.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(archives).To(HaveLen(2))
				Expect(archives[0].Name).To(Equal("b.tar.gz"))
				Expect(archives[1].Name).To(Equal("a.tar.gz"))
				Expect(archives[1].NumFiles).To(Equal(3))
			})

			It("supports searching by metadata", func() {
				archives, err := ingester.List(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(archives[0].Matches("BETA")).To(BeTrue())
				Expect(archives[1].Matches("beta")).To(BeFalse())
				Expect(archives[1].Matches("a.tar")).To(BeTrue())
			})
		})

		Describe("CompareArchives", func() {
			It("compares the members, leaving metadata out", func() {
				res, err := ingester.CompareArchives(ctx, "a.tar.gz", "b.tar.gz")
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Results).To(HaveLen(2))

				Expect(res.Results[0].FileName).To(Equal("log.out"))
				Expect(res.Results[0].Different).To(BeTrue())
				Expect(res.Magnitudes).To(HaveKeyWithValue("log.out", 1))

				Expect(res.Results[1].FileName).To(Equal("only-a.out"))
				Expect(res.Results[1].InFirstOnly).To(BeTrue())
			})

			It("fails for an unknown archive", func() {
				_, err := ingester.CompareArchives(ctx, "a.tar.gz", "missing.zip")

				notFound, ok := errors.Cause(err).(*snapshot.ArchiveNotFoundError)
				Expect(ok).To(BeTrue())
				Expect(notFound.Name).To(Equal("missing.zip"))
			})
		})

		Describe("Remove", func() {
			It("removes only the named archive", func() {
				Expect(ingester.Remove(ctx, "a.tar.gz")).To(Succeed())

				archives, err := ingester.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(archives).To(HaveLen(1))
				Expect(archives[0].Name).To(Equal("b.tar.gz"))

				_, err = ingester.Load(ctx, "a.tar.gz")
				Expect(err).To(HaveOccurred())
			})
		})
	})
})

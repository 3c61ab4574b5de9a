// Package snapshot drives the lifecycle of snapshot archives: validating and
// extracting them into the content store, summarizing what is stored and
// comparing two stored archives.
//
package snapshot

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/snapper/archive"
	"github.com/cirocosta/snapper/compare"
	"github.com/cirocosta/snapper/store"
	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 8

// ContentStore is where the members of ingested archives are kept.
//
type ContentStore interface {
	Put(ctx context.Context, record store.Record) error
	GetAll(ctx context.Context, archive string) ([]store.Record, error)
	Delete(ctx context.Context, archive string) error
	Archives(ctx context.Context) ([]string, error)
}

// Archive summarizes an ingested snapshot archive.
//
type Archive struct {
	Name       string    `yaml:"name"`
	SizeBytes  int64     `yaml:"size_bytes"`
	LineCount  int       `yaml:"line_count"`
	NumFiles   int       `yaml:"num_files"`
	LastOpened time.Time `yaml:"last_opened"`
	Digest     string    `yaml:"digest,omitempty"`
	Metadata   Metadata  `yaml:"metadata,omitempty"`
	Synthetic  bool      `yaml:"synthetic,omitempty"`

	// Failed lists the members whose write to the store failed during
	// ingestion.
	//
	Failed []string `yaml:"failed,omitempty"`
}

// Matches searches `term` (case-insensitively) in the archive name and its
// identifying metadata.
//
func (a Archive) Matches(term string) bool {
	return strings.Contains(strings.ToLower(a.Name), strings.ToLower(term)) ||
		a.Metadata.Matches(term)
}

type Ingester struct {
	Store   ContentStore
	Logger  lager.Logger
	Options archive.Options

	// Workers bounds the number of concurrent store writes of a single
	// ingestion. Defaults to DefaultWorkers.
	//
	Workers int

	// Now is the clock used for access timestamps. Defaults to time.Now.
	//
	Now func() time.Time
}

// Ingest validates `data` as a snapshot archive named `name` and replaces
// whatever was stored under that name with its members.
//
// Nothing is written unless the archive has a supported format, a top-level
// `metadata.out` and a SNAP_VERSION in it. Once writing starts, a member that
// fails to be stored is logged and reported in the summary without stopping
// the others.
//
func (i *Ingester) Ingest(ctx context.Context, name string, data []byte) (res Archive, err error) {
	logger := i.Logger.Session("ingest", lager.Data{
		"archive": name,
		"size":    len(data),
	})

	logger.Info("start")
	defer logger.Info("finished")

	format, err := DetectFormat(name)
	if err != nil {
		return
	}

	extraction, err := i.extract(logger, format, data)
	if err != nil {
		err = errors.Wrapf(err,
			"failed extracting %s", name)
		return
	}

	metadataFile, found := findMetadata(extraction.Files)
	if !found {
		err = &MissingMetadataError{Archive: name}
		return
	}

	metadata := ParseMetadata(metadataFile.Content)

	err = metadata.Validate()
	if err != nil {
		err = errors.Wrapf(err,
			"failed validating metadata of %s", name)
		return
	}

	if extraction.Synthetic {
		logger.Info("synthetic-snapshot", lager.Data{"reason": extraction.Reason})
	}

	now := i.now()
	records := []store.Record{{
		Archive:       name,
		Member:        store.MetadataMember,
		Content:       metadataFile.Content,
		LineCount:     lineCount(metadataFile.Content),
		LastAccessed:  now,
		FileSizeBytes: int64(len(data)),
		Digest:        digest.FromBytes(data).String(),
		Metadata:      metadata,
		Synthetic:     extraction.Synthetic,
	}}

	for _, file := range extraction.Files {
		if file.IsDirectory || file.Filename == archive.MetadataFilename {
			continue
		}

		records = append(records, store.Record{
			Archive:      name,
			Member:       file.Filename,
			Content:      file.Content,
			LineCount:    lineCount(file.Content),
			LastAccessed: now,
		})
	}

	err = i.Store.Delete(ctx, name)
	if err != nil {
		err = errors.Wrapf(err,
			"failed removing previous records of %s", name)
		return
	}

	failed := i.write(ctx, logger, records)

	res = summarize(name, records)
	res.Failed = failed

	logger.Info("stored", lager.Data{
		"records": len(records),
		"failed":  len(failed),
	})

	return
}

func (i *Ingester) extract(logger lager.Logger, format Format, data []byte) (res archive.Extraction, err error) {
	switch format {
	case FormatZip:
		res.Files, err = archive.DecodeZip(logger, data, i.Options)
	case FormatTarGz:
		res, err = archive.ExtractTarGz(logger, data, i.Options)
	}

	return
}

// write stores every record concurrently, waiting for all of them, and
// returns the members that could not be stored.
//
func (i *Ingester) write(ctx context.Context, logger lager.Logger, records []store.Record) (failed []string) {
	var (
		g  errgroup.Group
		mu sync.Mutex
	)

	g.SetLimit(i.workers())

	for _, record := range records {
		record := record

		g.Go(func() error {
			err := i.Store.Put(ctx, record)
			if err != nil {
				logger.Error("store-member-failed", err, lager.Data{"member": record.Member})

				mu.Lock()
				failed = append(failed, record.Member)
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	sort.Strings(failed)
	return
}

func (i *Ingester) workers() int {
	if i.Workers <= 0 {
		return DefaultWorkers
	}

	return i.Workers
}

func (i *Ingester) now() time.Time {
	if i.Now == nil {
		return time.Now()
	}

	return i.Now()
}

// List summarizes every stored archive, most recently opened first.
//
func (i *Ingester) List(ctx context.Context) (archives []Archive, err error) {
	names, err := i.Store.Archives(ctx)
	if err != nil {
		err = errors.Wrapf(err,
			"failed listing archives")
		return
	}

	for _, name := range names {
		var records []store.Record

		records, err = i.Store.GetAll(ctx, name)
		if err != nil {
			err = errors.Wrapf(err,
				"failed retrieving records of %s", name)
			return
		}

		archives = append(archives, summarize(name, records))
	}

	sort.SliceStable(archives, func(a, b int) bool {
		if !archives[a].LastOpened.Equal(archives[b].LastOpened) {
			return archives[a].LastOpened.After(archives[b].LastOpened)
		}

		return archives[a].Name < archives[b].Name
	})

	return
}

// Load retrieves the records of a stored archive, including its metadata
// record.
//
func (i *Ingester) Load(ctx context.Context, name string) (records []store.Record, err error) {
	records, err = i.Store.GetAll(ctx, name)
	if err != nil {
		err = errors.Wrapf(err,
			"failed retrieving records of %s", name)
		return
	}

	if len(records) == 0 {
		err = &ArchiveNotFoundError{Name: name}
		return
	}

	return
}

// CompareArchives compares the members of two stored archives. Metadata
// records take no part in the comparison.
//
func (i *Ingester) CompareArchives(ctx context.Context, first, second string) (res *compare.Comparison, err error) {
	logger := i.Logger.Session("compare", lager.Data{
		"first":  first,
		"second": second,
	})

	a, err := i.Load(ctx, first)
	if err != nil {
		return
	}

	b, err := i.Load(ctx, second)
	if err != nil {
		return
	}

	res = compare.Compare(members(a), members(b))

	logger.Debug("compared", lager.Data{"files": len(res.Results)})
	return
}

// Remove deletes every record of an archive.
//
func (i *Ingester) Remove(ctx context.Context, name string) (err error) {
	err = i.Store.Delete(ctx, name)
	if err != nil {
		err = errors.Wrapf(err,
			"failed removing %s", name)
		return
	}

	i.Logger.Info("removed", lager.Data{"archive": name})
	return
}

func members(records []store.Record) (res []compare.Member) {
	for _, record := range records {
		if record.IsMetadata() {
			continue
		}

		res = append(res, compare.Member{
			Name:      record.Member,
			Content:   record.Content,
			LineCount: record.LineCount,
		})
	}

	return
}

// summarize aggregates the records of an archive. Counts include the
// metadata record since it holds the content of `metadata.out`.
//
func summarize(name string, records []store.Record) (res Archive) {
	res.Name = name

	for _, record := range records {
		res.NumFiles++
		res.LineCount += record.LineCount

		if record.LastAccessed.After(res.LastOpened) {
			res.LastOpened = record.LastAccessed
		}

		if !record.IsMetadata() {
			continue
		}

		res.SizeBytes = record.FileSizeBytes
		res.Digest = record.Digest
		res.Metadata = Metadata(record.Metadata)
		res.Synthetic = record.Synthetic
	}

	return
}

func findMetadata(files []archive.ExtractedFile) (file archive.ExtractedFile, found bool) {
	for _, f := range files {
		if f.Filename == archive.MetadataFilename && !f.IsDirectory {
			return f, true
		}
	}

	return
}

func lineCount(content string) int {
	return len(strings.Split(content, "\n"))
}

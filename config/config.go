package config

import (
	"os"
	"path/filepath"

	"github.com/cirocosta/snapper/archive"
	"github.com/pkg/errors"
)

const (
	DefaultStoreDir = ".snapper"
	DefaultWorkers  = 8
)

// Config aggregates the settings of snapper. Every block is optional; the
// ones left out take their defaults.
//
// Example:
//
// ```
// store {
//   path = "${home}/.snapper"
// }
//
// decoder {
//   checksum_policy = "strict"
//   legacy_fallback = false
// }
// ```
//
type Config struct {
	Store   *Store   `hcl:"store,block"`
	Decoder *Decoder `hcl:"decoder,block"`
	Ingest  *Ingest  `hcl:"ingest,block"`
}

// Store is where ingested snapshots are persisted.
//
type Store struct {
	Path     string `hcl:"path,optional"`
	InMemory bool   `hcl:"in_memory,optional"`
}

// Decoder tunes how archives are decoded.
//
type Decoder struct {
	// ChecksumPolicy is either `tolerant` (mismatches are logged) or
	// `strict` (mismatches fail the decode).
	//
	ChecksumPolicy string `hcl:"checksum_policy,optional"`

	// LegacyFallback substitutes a canned snapshot for archives that cannot
	// be decoded or that lack `metadata.out`.
	//
	LegacyFallback bool `hcl:"legacy_fallback,optional"`

	TextExtensions []string `hcl:"text_extensions,optional"`
}

type Ingest struct {
	Workers int `hcl:"workers,optional"`
}

// Default is the configuration used when no file is given.
//
func Default() (cfg *Config) {
	cfg = new(Config)
	cfg.applyDefaults()

	return
}

func (c *Config) applyDefaults() {
	if c.Store == nil {
		c.Store = new(Store)
	}

	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath()
	}

	if c.Decoder == nil {
		c.Decoder = new(Decoder)
	}

	if c.Decoder.ChecksumPolicy == "" {
		c.Decoder.ChecksumPolicy = string(archive.ChecksumTolerant)
	}

	if len(c.Decoder.TextExtensions) == 0 {
		c.Decoder.TextExtensions = append([]string(nil), archive.DefaultTextExtensions...)
	}

	if c.Ingest == nil {
		c.Ingest = new(Ingest)
	}

	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = DefaultWorkers
	}
}

func (c *Config) validate() (err error) {
	switch archive.ChecksumPolicy(c.Decoder.ChecksumPolicy) {
	case archive.ChecksumTolerant, archive.ChecksumStrict:
	default:
		err = errors.Errorf("unknown checksum policy %q (expected %q or %q)",
			c.Decoder.ChecksumPolicy, archive.ChecksumTolerant, archive.ChecksumStrict)
		return
	}

	return
}

// DecoderOptions converts the decoder block into the options understood by
// the archive decoders.
//
func (c *Config) DecoderOptions() archive.Options {
	return archive.Options{
		ChecksumPolicy: archive.ChecksumPolicy(c.Decoder.ChecksumPolicy),
		TextExtensions: c.Decoder.TextExtensions,
		LegacyFallback: c.Decoder.LegacyFallback,
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultStoreDir
	}

	return filepath.Join(home, DefaultStoreDir)
}

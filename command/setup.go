package command

import (
	"fmt"
	"io"
	"os"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/snapper/config"
	"github.com/cirocosta/snapper/report"
	"github.com/cirocosta/snapper/snapshot"
	"github.com/cirocosta/snapper/store"
	"github.com/fatih/color"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/pkg/errors"
)

// loadConfig reads the configuration file (if any) and applies the global
// flags on top of it.
//
func loadConfig() (cfg *config.Config, err error) {
	if Snapper.Verbose {
		sink.SetMinLevel(lager.DEBUG)
	}

	if Snapper.ConfigFile == "" {
		cfg = config.Default()
	} else {
		cfg, err = config.ParseFile(Snapper.ConfigFile, Snapper.Variables)
		if err != nil {
			diagsErr, ok := errors.Cause(err).(hcl.Diagnostics)
			if ok && len(diagsErr) > 0 {
				color.NoColor = false

				pretty, prettyErr := config.PrettyDiagnosticFile(Snapper.ConfigFile, diagsErr[0])
				if prettyErr == nil {
					fmt.Fprintln(os.Stderr, pretty)
				}
			}

			err = errors.Wrapf(err,
				"failed to parse config file %s", Snapper.ConfigFile)
			return
		}
	}

	if Snapper.StorePath != "" {
		cfg.Store.Path = Snapper.StorePath
	}

	if Snapper.InMemory {
		cfg.Store.InMemory = true
	}

	return
}

// openIngester opens the content store and wires an ingester on top of it.
// The returned function closes the store.
//
func openIngester() (ingester *snapshot.Ingester, closeFn func() error, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return
	}

	s, err := store.Open(store.Config{
		Path:       cfg.Store.Path,
		InMemory:   cfg.Store.InMemory,
		SyncWrites: true,
		Logger:     logger,
	})
	if err != nil {
		err = errors.Wrapf(err,
			"failed opening content store at %s", cfg.Store.Path)
		return
	}

	ingester = &snapshot.Ingester{
		Store:   s,
		Logger:  logger,
		Options: cfg.DecoderOptions(),
		Workers: cfg.Ingest.Workers,
	}
	closeFn = s.Close

	return
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// writer opens the destination of a command's output, `-` being stdout.
//
func writer(fname string) (w io.WriteCloser, err error) {
	if fname == "-" || fname == "" {
		w = nopWriteCloser{os.Stdout}
		return
	}

	w, err = os.Create(fname)
	if err != nil {
		err = errors.Wrapf(err,
			"failed creating output file %s", fname)
		return
	}

	return
}

// writeDocument marshals a report document into `fname`.
//
func writeDocument(fname string, doc interface{}) (err error) {
	b, err := report.ToYAML(doc)
	if err != nil {
		return
	}

	w, err := writer(fname)
	if err != nil {
		return
	}

	defer w.Close()

	_, err = fmt.Fprintf(w, "%s", string(b))
	if err != nil {
		err = errors.Wrapf(err,
			"failed writing document to %s", fname)
		return
	}

	return
}

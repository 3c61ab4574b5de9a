package command

import (
	"context"
	"io/ioutil"
	"path/filepath"

	"github.com/cirocosta/snapper/report"
	"github.com/cirocosta/snapper/snapshot"
	"github.com/pkg/errors"
)

type ingestCommand struct {
	Output string `long:"output" short:"o" default:"-" description:"where to write the summary of the ingested archives to ('-' for stdout)"`

	Positional struct {
		Files []string `positional-arg-name:"FILE" required:"1" description:".zip, .tar.gz or .tgz snapshot archives"`
	} `positional-args:"yes"`
}

func (c *ingestCommand) Execute(args []string) (err error) {
	ctx := context.TODO()

	ingester, closeFn, err := openIngester()
	if err != nil {
		return
	}

	defer closeFn()

	summaries := []snapshot.Archive{}

	for _, file := range c.Positional.Files {
		var (
			data    []byte
			summary snapshot.Archive
		)

		data, err = ioutil.ReadFile(file)
		if err != nil {
			err = errors.Wrapf(err,
				"failed reading archive %s", file)
			return
		}

		summary, err = ingester.Ingest(ctx, filepath.Base(file), data)
		if err != nil {
			err = errors.Wrapf(err,
				"failed ingesting %s", file)
			return
		}

		summaries = append(summaries, summary)
	}

	err = writeDocument(c.Output, report.NewArchivesV1(summaries))
	return
}

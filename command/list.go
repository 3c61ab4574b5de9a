package command

import (
	"context"

	"github.com/cirocosta/snapper/report"
	"github.com/cirocosta/snapper/snapshot"
)

type listCommand struct {
	Search string `long:"search" short:"s" description:"only list archives whose name or metadata contain this term"`
	Output string `long:"output" short:"o" default:"-" description:"where to write the list to ('-' for stdout)"`
}

func (c *listCommand) Execute(args []string) (err error) {
	ctx := context.TODO()

	ingester, closeFn, err := openIngester()
	if err != nil {
		return
	}

	defer closeFn()

	archives, err := ingester.List(ctx)
	if err != nil {
		return
	}

	matching := []snapshot.Archive{}
	for _, archive := range archives {
		if archive.Matches(c.Search) {
			matching = append(matching, archive)
		}
	}

	err = writeDocument(c.Output, report.NewArchivesV1(matching))
	return
}

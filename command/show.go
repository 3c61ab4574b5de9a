package command

import (
	"context"

	"github.com/cirocosta/snapper/report"
	"github.com/cirocosta/snapper/snapshot"
)

type showCommand struct {
	Archive string `long:"archive" short:"a" required:"true" description:"name of the stored archive"`
	Content bool   `long:"content"                          description:"include the content of every member"`
	Output  string `long:"output"  short:"o" default:"-"    description:"where to write the members to ('-' for stdout)"`
}

func (c *showCommand) Execute(args []string) (err error) {
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

	var summary snapshot.Archive
	for _, archive := range archives {
		if archive.Name == c.Archive {
			summary = archive
		}
	}

	records, err := ingester.Load(ctx, c.Archive)
	if err != nil {
		return
	}

	err = writeDocument(c.Output, report.NewMembersV1(summary, records, c.Content))
	return
}

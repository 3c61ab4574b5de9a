package command

import (
	"context"

	"github.com/cirocosta/snapper/report"
)

type compareCommand struct {
	First  string `long:"first"  required:"true" description:"name of the first stored archive"`
	Second string `long:"second" required:"true" description:"name of the second stored archive"`
	Output string `long:"output" short:"o" default:"-" description:"where to write the comparison to ('-' for stdout)"`
}

func (c *compareCommand) Execute(args []string) (err error) {
	ctx := context.TODO()

	ingester, closeFn, err := openIngester()
	if err != nil {
		return
	}

	defer closeFn()

	comparison, err := ingester.CompareArchives(ctx, c.First, c.Second)
	if err != nil {
		return
	}

	err = writeDocument(c.Output, report.NewComparisonV1(c.First, c.Second, comparison))
	return
}

package command

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cirocosta/snapper/linediff"
	"github.com/cirocosta/snapper/report"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

type diffCommand struct {
	First  string `long:"first"  required:"true" description:"name of the first stored archive"`
	Second string `long:"second" required:"true" description:"name of the second stored archive"`
	File   string `long:"file"   short:"f"       description:"file to diff (defaults to the first file that differs)"`
	Offset int    `long:"offset"                 description:"move this many files down (negative: up) the comparison from the chosen file"`
	Format string `long:"format" default:"diff" choice:"diff" choice:"side" choice:"unified" choice:"yaml" description:"how to render the diff"`
	Output string `long:"output" short:"o" default:"-" description:"where to write the diff to ('-' for stdout)"`
}

func (c *diffCommand) Execute(args []string) (err error) {
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

	name := c.File
	if name == "" {
		selected, found := comparison.Select()
		if !found {
			err = errors.Errorf("archives %s and %s have no files to diff", c.First, c.Second)
			return
		}

		name = selected.FileName
	}

	target, found := comparison.Neighbor(name, c.Offset)
	if !found {
		err = errors.Errorf("no file at offset %d from %s", c.Offset, name)
		return
	}

	name = target.FileName

	switch c.Format {
	case "side":
		err = writeDocument(c.Output, report.NewDiffV1(c.First, c.Second, name, comparison, true))
		return
	case "yaml":
		err = writeDocument(c.Output, report.NewDiffV1(c.First, c.Second, name, comparison, false))
		return
	}

	w, err := writer(c.Output)
	if err != nil {
		return
	}

	defer w.Close()

	lines := comparison.Diff(name)

	if c.Format == "unified" {
		var b []byte

		b, err = linediff.Unified(name, lines)
		if err != nil {
			return
		}

		_, err = w.Write(b)
		if err != nil {
			err = errors.Wrapf(err,
				"failed writing diff to %s", c.Output)
		}

		return
	}

	lines = append([]linediff.Line{{Content: name, Kind: linediff.KindHeader}}, lines...)

	err = renderDiff(w, lines)
	if err != nil {
		err = errors.Wrapf(err,
			"failed writing diff to %s", c.Output)
		return
	}

	return
}

// renderDiff prints every line prefixed by its numbers on each side and a
// marker, coloring removals and additions.
//
func renderDiff(w io.Writer, lines []linediff.Line) (err error) {
	var (
		bold  = color.New(color.Bold).SprintFunc()
		red   = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
	)

	for _, line := range lines {
		var text string

		switch line.Kind {
		case linediff.KindHeader:
			text = bold(line.Content)
		case linediff.KindRemoved:
			text = red(fmt.Sprintf("%4s %4s - %s", number(line.Left), "", line.Content))
		case linediff.KindAdded:
			text = green(fmt.Sprintf("%4s %4s + %s", "", number(line.Right), line.Content))
		default:
			text = fmt.Sprintf("%4s %4s   %s", number(line.Left), number(line.Right), line.Content)
		}

		_, err = fmt.Fprintln(w, text)
		if err != nil {
			return
		}
	}

	return
}

func number(n int) string {
	if n == 0 {
		return ""
	}

	return strconv.Itoa(n)
}

package linediff

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/sourcegraph/go-diff/diff"
)

// Row is a line of one pane of a side-by-side view.
//
type Row struct {
	Number  int    `yaml:"number"`
	Content string `yaml:"content"`
	Changed bool   `yaml:"changed"`
}

// SideBySide lays both texts out in two independent panes, flagging a left
// row as changed when its line number shows up among the removed lines and a
// right row when it shows up among the added ones.
//
// The panes are not aligned with each other: a row index on the left does
// not necessarily correspond to the same row index on the right.
//
func SideBySide(first, second string, lines []Line) (left, right []Row) {
	removed := map[int]bool{}
	added := map[int]bool{}

	for _, line := range lines {
		switch line.Kind {
		case KindRemoved:
			removed[line.Left] = true
		case KindAdded:
			added[line.Right] = true
		}
	}

	for idx, content := range Split(first) {
		left = append(left, Row{Number: idx + 1, Content: content, Changed: removed[idx+1]})
	}

	for idx, content := range Split(second) {
		right = append(right, Row{Number: idx + 1, Content: content, Changed: added[idx+1]})
	}

	return
}

// Unified renders an aligned diff as a single-hunk unified diff of `name`.
//
func Unified(name string, lines []Line) (res []byte, err error) {
	if len(lines) == 0 {
		return
	}

	var (
		body bytes.Buffer
		hunk = new(diff.Hunk)
	)

	for _, line := range lines {
		switch line.Kind {
		case KindSame:
			body.WriteByte(' ')
			hunk.OrigLines++
			hunk.NewLines++
		case KindRemoved:
			body.WriteByte('-')
			hunk.OrigLines++
		case KindAdded:
			body.WriteByte('+')
			hunk.NewLines++
		default:
			continue
		}

		body.WriteString(line.Content)
		body.WriteByte('\n')
	}

	if hunk.OrigLines > 0 {
		hunk.OrigStartLine = 1
	}

	if hunk.NewLines > 0 {
		hunk.NewStartLine = 1
	}

	hunk.Body = body.Bytes()

	res, err = diff.PrintFileDiff(&diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    []*diff.Hunk{hunk},
	})
	if err != nil {
		err = errors.Wrapf(err,
			"failed rendering unified diff for %s", name)
		return
	}

	return
}

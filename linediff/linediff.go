// Package linediff aligns two texts line by line with a greedy walk that
// looks at most three lines ahead on either side to resynchronize.
//
// The result is not a minimal edit script: reordered blocks produce more
// changes than strictly needed. The window size and the order in which the
// two sides are searched are part of the output format and must not change.
//
package linediff

import (
	"strings"
)

// Window is how many lines ahead the walk searches to resynchronize.
//
const Window = 3

type Kind string

const (
	KindSame    Kind = "same"
	KindAdded   Kind = "added"
	KindRemoved Kind = "removed"
	KindHeader  Kind = "header"
)

// Line is a single row of an aligned diff.
//
type Line struct {
	// Left is the 1-based line number in the first text, 0 when the line
	// does not exist there.
	//
	Left int `yaml:"left,omitempty"`

	// Right is the 1-based line number in the second text, 0 when the line
	// does not exist there.
	//
	Right int `yaml:"right,omitempty"`

	Content string `yaml:"content"`
	Kind    Kind   `yaml:"kind"`
}

// Split breaks a text into lines on `\n`, with no other normalization.
//
func Split(text string) []string {
	return strings.Split(text, "\n")
}

// Compute aligns `first` against `second`.
//
// When only one of them has content, every one of its lines is reported as
// removed (first) or added (second) with no alignment attempt. When neither
// has content there is nothing to report.
//
func Compute(first, second string) (lines []Line) {
	switch {
	case first == "" && second == "":
		return
	case second == "":
		for idx, line := range Split(first) {
			lines = append(lines, Line{Left: idx + 1, Content: line, Kind: KindRemoved})
		}
		return
	case first == "":
		for idx, line := range Split(second) {
			lines = append(lines, Line{Right: idx + 1, Content: line, Kind: KindAdded})
		}
		return
	}

	lines = Align(Split(first), Split(second))
	return
}

// Align walks both line sequences at once.
//
// On a mismatch it first searches the next Window lines of `b` for the
// current line of `a` (emitting the skipped lines of `b` as added), then the
// next Window lines of `a` for the current line of `b` (emitting the skipped
// lines of `a` as removed). If neither resynchronizes, the current lines are
// reported as removed and added and both cursors move on.
//
func Align(a, b []string) (lines []Line) {
	i, j := 0, 0

	for i < len(a) || j < len(b) {
		if i < len(a) && j < len(b) && a[i] == b[j] {
			lines = append(lines, Line{Left: i + 1, Right: j + 1, Content: a[i], Kind: KindSame})
			i++
			j++
			continue
		}

		if k := lookahead(b, j, a, i); k > 0 {
			for l := 0; l < k; l++ {
				lines = append(lines, Line{Right: j + l + 1, Content: b[j+l], Kind: KindAdded})
			}
			j += k
			continue
		}

		if k := lookahead(a, i, b, j); k > 0 {
			for l := 0; l < k; l++ {
				lines = append(lines, Line{Left: i + l + 1, Content: a[i+l], Kind: KindRemoved})
			}
			i += k
			continue
		}

		if i < len(a) {
			lines = append(lines, Line{Left: i + 1, Content: a[i], Kind: KindRemoved})
			i++
		}

		if j < len(b) {
			lines = append(lines, Line{Right: j + 1, Content: b[j], Kind: KindAdded})
			j++
		}
	}

	return
}

// lookahead searches seq[pos+1 .. pos+Window] for other[at] and returns the
// offset of the first match, or 0.
//
func lookahead(seq []string, pos int, other []string, at int) int {
	if at >= len(other) {
		return 0
	}

	for k := 1; k <= Window && pos+k < len(seq); k++ {
		if seq[pos+k] == other[at] {
			return k
		}
	}

	return 0
}

// Magnitude counts the rows that differ. A removed line immediately followed
// by an added line is a replacement and counts once.
//
func Magnitude(lines []Line) (count int) {
	for idx := 0; idx < len(lines); idx++ {
		switch lines[idx].Kind {
		case KindSame, KindHeader:
			continue
		case KindRemoved:
			if idx+1 < len(lines) && lines[idx+1].Kind == KindAdded {
				idx++
			}
		}

		count++
	}

	return
}

// Reconstruct joins the lines of the given kinds back into a text.
//
func Reconstruct(lines []Line, kinds ...Kind) string {
	var parts []string

	for _, line := range lines {
		for _, kind := range kinds {
			if line.Kind == kind {
				parts = append(parts, line.Content)
				break
			}
		}
	}

	return strings.Join(parts, "\n")
}

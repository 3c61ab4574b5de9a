// Package compare classifies the members of two snapshots as identical,
// different or present on a single side, and orders them for review.
//
package compare

import (
	"sort"

	"github.com/cirocosta/snapper/linediff"
)

// Member is a file of one of the snapshots being compared.
//
type Member struct {
	Name      string
	Content   string
	LineCount int
}

// Result is the classification of a single filename.
//
type Result struct {
	FileName        string `yaml:"file_name"`
	InFirstOnly     bool   `yaml:"in_first_only"`
	InSecondOnly    bool   `yaml:"in_second_only"`
	Different       bool   `yaml:"different"`
	FirstLineCount  int    `yaml:"first_line_count,omitempty"`
	SecondLineCount int    `yaml:"second_line_count,omitempty"`
}

// OneSided tells whether the file exists in just one of the snapshots.
//
func (r Result) OneSided() bool {
	return r.InFirstOnly || r.InSecondOnly
}

// Comparison holds the ordered results of comparing two snapshots along with
// the magnitude of the differences of each file.
//
type Comparison struct {
	Results    []Result
	Magnitudes map[string]int

	first  map[string]Member
	second map[string]Member
}

// Compare classifies every filename found in either snapshot.
//
// Files present on a single side have their line count as magnitude;
// identical files have zero; files whose content differs have the
// magnitude of their line diff, never less than one.
//
func Compare(first, second []Member) *Comparison {
	c := &Comparison{
		Magnitudes: map[string]int{},
		first:      index(first),
		second:     index(second),
	}

	for _, file := range first {
		other, found := c.second[file.Name]

		if !found {
			c.Results = append(c.Results, Result{
				FileName:       file.Name,
				InFirstOnly:    true,
				FirstLineCount: file.LineCount,
			})
			c.Magnitudes[file.Name] = file.LineCount
			continue
		}

		different := file.Content != other.Content

		c.Results = append(c.Results, Result{
			FileName:        file.Name,
			Different:       different,
			FirstLineCount:  file.LineCount,
			SecondLineCount: other.LineCount,
		})

		if !different {
			c.Magnitudes[file.Name] = 0
			continue
		}

		magnitude := linediff.Magnitude(linediff.Compute(file.Content, other.Content))
		if magnitude < 1 {
			magnitude = 1
		}

		c.Magnitudes[file.Name] = magnitude
	}

	for _, file := range second {
		if _, found := c.first[file.Name]; found {
			continue
		}

		c.Results = append(c.Results, Result{
			FileName:        file.Name,
			InSecondOnly:    true,
			SecondLineCount: file.LineCount,
		})
		c.Magnitudes[file.Name] = file.LineCount
	}

	sort.SliceStable(c.Results, func(i, j int) bool {
		return less(c.Results[i], c.Results[j])
	})

	return c
}

// less orders different files first, then files present on a single side,
// then identical ones, breaking ties by filename.
//
func less(a, b Result) bool {
	if a.Different != b.Different {
		return a.Different
	}

	if a.OneSided() != b.OneSided() {
		return a.OneSided()
	}

	return a.FileName < b.FileName
}

func index(members []Member) map[string]Member {
	res := make(map[string]Member, len(members))

	for _, member := range members {
		res[member.Name] = member
	}

	return res
}

// Select picks the file to show first: the first different file, or the
// first file overall if none differ.
//
func (c *Comparison) Select() (res Result, found bool) {
	if len(c.Results) == 0 {
		return
	}

	for _, r := range c.Results {
		if r.Different {
			res, found = r, true
			return
		}
	}

	res, found = c.Results[0], true
	return
}

// Neighbor returns the result `delta` positions away from `name` in display
// order.
//
func (c *Comparison) Neighbor(name string, delta int) (res Result, found bool) {
	for idx, r := range c.Results {
		if r.FileName != name {
			continue
		}

		target := idx + delta
		if target < 0 || target >= len(c.Results) {
			return
		}

		res, found = c.Results[target], true
		return
	}

	return
}

// Contents returns the content of `name` on each side, empty where the file
// does not exist.
//
func (c *Comparison) Contents(name string) (first, second string) {
	return c.first[name].Content, c.second[name].Content
}

// Diff computes the line diff of a single file.
//
func (c *Comparison) Diff(name string) []linediff.Line {
	return linediff.Compute(c.Contents(name))
}

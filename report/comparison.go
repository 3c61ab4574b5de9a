package report

import (
	"github.com/cirocosta/snapper/compare"
	"github.com/cirocosta/snapper/linediff"
)

type ComparedFile struct {
	compare.Result `yaml:",inline"`

	Magnitude int `yaml:"magnitude"`
}

type Comparison struct {
	First    string         `yaml:"first"`
	Second   string         `yaml:"second"`
	Selected string         `yaml:"selected,omitempty"`
	Files    []ComparedFile `yaml:"files"`
}

type ComparisonV1 struct {
	Kind string     `yaml:"kind"`
	Data Comparison `yaml:"data"`
}

func NewComparisonV1(first, second string, comparison *compare.Comparison) ComparisonV1 {
	doc := ComparisonV1{
		Kind: ComparisonV1Kind,
		Data: Comparison{
			First:  first,
			Second: second,
			Files:  []ComparedFile{},
		},
	}

	if selected, found := comparison.Select(); found {
		doc.Data.Selected = selected.FileName
	}

	for _, res := range comparison.Results {
		doc.Data.Files = append(doc.Data.Files, ComparedFile{
			Result:    res,
			Magnitude: comparison.Magnitudes[res.FileName],
		})
	}

	return doc
}

type Diff struct {
	File      string `yaml:"file"`
	First     string `yaml:"first"`
	Second    string `yaml:"second"`
	Magnitude int    `yaml:"magnitude"`

	Lines []linediff.Line `yaml:"lines,omitempty"`
	Left  []linediff.Row  `yaml:"left,omitempty"`
	Right []linediff.Row  `yaml:"right,omitempty"`
}

type DiffV1 struct {
	Kind string `yaml:"kind"`
	Data Diff   `yaml:"data"`
}

// NewDiffV1 describes the diff of a single file. With `sideBySide` the
// document carries the two panes instead of the aligned lines.
//
func NewDiffV1(first, second, file string, comparison *compare.Comparison, sideBySide bool) DiffV1 {
	lines := comparison.Diff(file)

	doc := DiffV1{
		Kind: DiffV1Kind,
		Data: Diff{
			File:      file,
			First:     first,
			Second:    second,
			Magnitude: comparison.Magnitudes[file],
		},
	}

	if !sideBySide {
		doc.Data.Lines = lines
		return doc
	}

	a, b := comparison.Contents(file)
	doc.Data.Left, doc.Data.Right = linediff.SideBySide(a, b, lines)

	return doc
}

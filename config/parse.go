package config

import (
	"bufio"
	"io/ioutil"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hcl/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// ParseFile reads and parses the configuration at `filename`.
//
func ParseFile(filename string, vars map[string]string) (cfg *Config, err error) {
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		err = errors.Wrapf(err,
			"failed reading config file %s", filename)
		return
	}

	return Parse(content, filename, vars)
}

// Parse parses the contents of a given file `filename`, interpolating
// variables (`vars`) and filling in defaults for whatever is left out.
//
// The variable `home` is always available, defaulting to the user's home
// directory unless `vars` overrides it.
//
func Parse(content []byte, filename string, vars map[string]string) (cfg *Config, err error) {
	f, diags := hclsyntax.ParseConfig(content, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to parse")
		return
	}

	cfg = new(Config)

	diags = gohcl.DecodeBody(f.Body, createEvalContext(vars), cfg)
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to decode")
		return
	}

	cfg.applyDefaults()

	err = cfg.validate()
	if err != nil {
		err = errors.Wrapf(err, "invalid config %s", filename)
		return
	}

	return
}

type Lines struct {
	lines []string
}

func NewLines(content string) (l *Lines) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	l = new(Lines)

	for scanner.Scan() {
		l.lines = append(l.lines, scanner.Text())
	}

	return
}

func (l *Lines) At(i int) string {
	return l.lines[i]
}

func (l *Lines) Len() int {
	return len(l.lines)
}

// AddLineAt inserts `line` so that it ends up at index `i`, appending when
// `i` is past the end.
//
func (l *Lines) AddLineAt(i int, line string) {
	if i >= len(l.lines) {
		l.lines = append(l.lines, line)
		return
	}

	l.lines = append(l.lines[:i], append([]string{line}, l.lines[i:]...)...)
}

func (l *Lines) String() string {
	return strings.Join(l.lines, "\n")
}

// PrettyDiagnosticFile is PrettyDiagnostic for a diagnostic about the file
// at `filename`.
//
func PrettyDiagnosticFile(filename string, diag *hcl.Diagnostic) (res string, err error) {
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		err = errors.Wrapf(err,
			"failed reading config file %s", filename)
		return
	}

	res = PrettyDiagnostic(string(content), diag)
	return
}

// PrettyDiagnostic generates a human-readable pretty diagnostic, underlining
// the subject of the diagnostic right below the line it starts at.
//
func PrettyDiagnostic(content string, diag *hcl.Diagnostic) (res string) {
	var (
		lines     = NewLines(content)
		red       = color.New(color.FgRed, color.Bold).SprintFunc()
		lineBytes = []byte{}
	)

	if diag.Subject == nil {
		res = lines.String() + "\n" + red(diag.Summary)
		return
	}

	end := diag.Subject.End.Column
	if diag.Subject.End.Line != diag.Subject.Start.Line || end <= diag.Subject.Start.Column {
		end = diag.Subject.Start.Column + 1
	}

	for i := 1; i < diag.Subject.Start.Column; i++ {
		lineBytes = append(lineBytes, ' ')
	}

	for i := diag.Subject.Start.Column; i < end; i++ {
		lineBytes = append(lineBytes, '^')
	}

	lines.AddLineAt(diag.Subject.Start.Line, red(string(lineBytes)))

	res = lines.String()
	return
}

func createEvalContext(vars map[string]string) *hcl.EvalContext {
	var variables = map[string]cty.Value{}

	if home, err := os.UserHomeDir(); err == nil {
		variables["home"] = cty.StringVal(home)
	}

	for key, value := range vars {
		variables[key] = cty.StringVal(value)
	}

	return &hcl.EvalContext{Variables: variables}
}

// Package template models job scripts that carry directives for several
// batch schedulers at once.
//
// A script is held as an ordered list of tagged lines. Specializing a script
// for one scheduler drops the lines tagged for the other and replaces the
// partition placeholder; because directives are tagged when the script is
// parsed, removing them never touches body lines and applying the same
// specialization twice is a no-op.
package template

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Kind tags a script line.
type Kind int

const (
	Body Kind = iota
	SlurmDirective
	LsfDirective
)

func (k Kind) String() string {
	switch k {
	case SlurmDirective:
		return "SLURM"
	case LsfDirective:
		return "LSF"
	default:
		return "body"
	}
}

// Directive signatures: the sentinel must start the line (after optional
// indentation) and be followed by whitespace and at least one option token.
var (
	slurmDirectiveRe = regexp.MustCompile(`^\s*#SBATCH\s+\S`)
	lsfDirectiveRe   = regexp.MustCompile(`^\s*#BSUB\s+\S`)
)

// ErrNoScript is returned when a script file does not exist.
var ErrNoScript = errors.New("script file not found")

// Line is one script line without its terminating newline.
type Line struct {
	Kind Kind
	Text string
}

// Template is a parsed script.
type Template struct {
	Lines []Line
	// trailingNewline records whether the source ended with "\n".
	trailingNewline bool
}

// Classify returns the kind of a single line.
func Classify(text string) Kind {
	switch {
	case slurmDirectiveRe.MatchString(text):
		return SlurmDirective
	case lsfDirectiveRe.MatchString(text):
		return LsfDirective
	default:
		return Body
	}
}

// Parse reads a script. Line endings other than "\n" are kept in the line text
// so rendering reproduces the input byte for byte.
func Parse(r io.Reader) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}
	return parseString(string(data)), nil
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoScript, path)
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func parseString(content string) *Template {
	t := &Template{}
	if content == "" {
		return t
	}
	parts := strings.Split(content, "\n")
	if parts[len(parts)-1] == "" {
		t.trailingNewline = true
		parts = parts[:len(parts)-1]
	}
	t.Lines = make([]Line, len(parts))
	for i, text := range parts {
		t.Lines[i] = Line{Kind: Classify(text), Text: text}
	}
	return t
}

// Render returns the script text.
func (t *Template) Render() []byte {
	var b strings.Builder
	for i, l := range t.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	if t.trailingNewline && len(t.Lines) > 0 {
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Drop returns a copy of t without the lines of the given kind.
// Dropping Body is not meaningful and returns an unchanged copy.
func (t *Template) Drop(kind Kind) *Template {
	out := &Template{trailingNewline: t.trailingNewline, Lines: make([]Line, 0, len(t.Lines))}
	for _, l := range t.Lines {
		if kind != Body && l.Kind == kind {
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	return out
}

// Substitute returns a copy of t with every occurrence of token replaced by
// value. A missing token is not an error. Line kinds are kept from the
// original parse.
func (t *Template) Substitute(token, value string) *Template {
	out := &Template{trailingNewline: t.trailingNewline, Lines: make([]Line, len(t.Lines))}
	copy(out.Lines, t.Lines)
	if token == "" {
		return out
	}
	for i := range out.Lines {
		out.Lines[i].Text = strings.ReplaceAll(out.Lines[i].Text, token, value)
	}
	return out
}

// Directives lists the text of every line of the given kind, in order.
func (t *Template) Directives(kind Kind) []string {
	var out []string
	for _, l := range t.Lines {
		if l.Kind == kind {
			out = append(out, l.Text)
		}
	}
	return out
}

// Contains reports whether any line contains s.
func (t *Template) Contains(s string) bool {
	for _, l := range t.Lines {
		if strings.Contains(l.Text, s) {
			return true
		}
	}
	return false
}

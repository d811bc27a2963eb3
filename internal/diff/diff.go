// Package diff computes line-level unified diffs using the sergi/go-diff
// library and renders them as text, optionally colored for a terminal.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Added line
	LineRemoved                 // Removed line
)

// Line represents a single line in the diff
type Line struct {
	Type    LineType
	Content string
	// NoEOL marks the last line of an input that lacks a trailing newline.
	NoEOL bool
}

// Hunk represents a group of changes
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Result is the diff between two inputs
type Result struct {
	OldLabel string
	NewLabel string
	Hunks    []Hunk
}

// HasChanges reports whether the inputs differ.
func (r *Result) HasChanges() bool {
	return len(r.Hunks) > 0
}

// Stats returns the number of added and removed lines.
func (r *Result) Stats() (added, removed int) {
	for _, h := range r.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			}
		}
	}
	return added, removed
}

// Engine provides diff computation
type Engine struct {
	dmp     *diffmatchpatch.DiffMatchPatch
	context int
}

// Option configures an Engine
type Option func(*Engine)

// WithContext sets the number of context lines around each change
func WithContext(lines int) Option {
	return func(e *Engine) {
		if lines >= 0 {
			e.context = lines
		}
	}
}

// NewEngine creates a new diff engine
func NewEngine(opts ...Option) *Engine {
	dmp := diffmatchpatch.New()
	// A timeout would make the result depend on machine speed.
	dmp.DiffTimeout = 0

	e := &Engine{dmp: dmp, context: DefaultContext}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute diffs oldContent against newContent line by line. The result is
// fully determined by its inputs.
func (e *Engine) Compute(oldLabel, newLabel, oldContent, newContent string) *Result {
	ops := e.operations(oldContent, newContent)
	return &Result{
		OldLabel: oldLabel,
		NewLabel: newLabel,
		Hunks:    groupIntoHunks(ops, e.context),
	}
}

// operation represents a single line operation
type operation struct {
	typ     LineType
	line    string // including its newline, if any
	oldLine int    // old lines consumed before this operation
	newLine int    // new lines consumed before this operation
}

// operations runs the diff with every distinct line mapped to one rune, so
// the character diff is a line diff.
func (e *Engine) operations(oldContent, newContent string) []operation {
	enc := newLineEncoder()
	a := enc.encode(oldContent)
	b := enc.encode(newContent)

	diffs := e.dmp.DiffMainRunes(a, b, false)

	var ops []operation
	var removed, added []string
	oldN, newN := 0, 0

	flush := func() {
		for _, l := range removed {
			ops = append(ops, operation{typ: LineRemoved, line: l, oldLine: oldN, newLine: newN})
			oldN++
		}
		for _, l := range added {
			ops = append(ops, operation{typ: LineAdded, line: l, oldLine: oldN, newLine: newN})
			newN++
		}
		removed, added = removed[:0], added[:0]
	}

	for _, d := range diffs {
		lines := enc.decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			removed = append(removed, lines...)
		case diffmatchpatch.DiffInsert:
			added = append(added, lines...)
		case diffmatchpatch.DiffEqual:
			flush()
			for _, l := range lines {
				ops = append(ops, operation{typ: LineContext, line: l, oldLine: oldN, newLine: newN})
				oldN++
				newN++
			}
		}
	}
	flush()

	return ops
}

// groupIntoHunks groups operations into hunks with context. Changes separated
// by no more than twice the context length share a hunk.
func groupIntoHunks(ops []operation, context int) []Hunk {
	var hunks []Hunk

	i := 0
	for i < len(ops) {
		if ops[i].typ == LineContext {
			i++
			continue
		}

		start := max(0, i-context)
		end := i
		j := i
		for j < len(ops) {
			if ops[j].typ != LineContext {
				j++
				end = j
				continue
			}
			k := j
			for k < len(ops) && ops[k].typ == LineContext {
				k++
			}
			if k == len(ops) || k-j > 2*context {
				break
			}
			j = k
		}
		stop := min(len(ops), end+context)

		hunks = append(hunks, newHunk(ops[start:stop]))
		i = stop
	}

	return hunks
}

func newHunk(ops []operation) Hunk {
	h := Hunk{Lines: make([]Line, 0, len(ops))}
	for _, op := range ops {
		content, hasEOL := strings.CutSuffix(op.line, "\n")
		h.Lines = append(h.Lines, Line{Type: op.typ, Content: content, NoEOL: !hasEOL})
		if op.typ != LineAdded {
			h.OldCount++
		}
		if op.typ != LineRemoved {
			h.NewCount++
		}
	}

	// Unified diff convention: an empty range starts at the line before it.
	h.OldStart = ops[0].oldLine
	if h.OldCount > 0 {
		h.OldStart++
	}
	h.NewStart = ops[0].newLine
	if h.NewCount > 0 {
		h.NewStart++
	}
	return h
}

// lineEncoder maps distinct lines to distinct runes.
type lineEncoder struct {
	index map[string]rune
	lines []string
}

func newLineEncoder() *lineEncoder {
	return &lineEncoder{index: make(map[string]rune)}
}

func (le *lineEncoder) encode(text string) []rune {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	runes := make([]rune, 0, len(lines))
	for _, l := range lines {
		r, ok := le.index[l]
		if !ok {
			r = indexToRune(len(le.lines))
			le.index[l] = r
			le.lines = append(le.lines, l)
		}
		runes = append(runes, r)
	}
	return runes
}

func (le *lineEncoder) decode(text string) []string {
	lines := make([]string, 0, len(text))
	for _, r := range text {
		lines = append(lines, le.lines[runeToIndex(r)])
	}
	return lines
}

// UTF-16 surrogates are not valid runes and would not survive the library's
// string conversions, so the encoding skips over them.
const (
	surrogateMin = 0xD800
	surrogateLen = 0x800
)

func indexToRune(i int) rune {
	if i >= surrogateMin {
		i += surrogateLen
	}
	return rune(i)
}

func runeToIndex(r rune) int {
	i := int(r)
	if i >= surrogateMin+surrogateLen {
		i -= surrogateLen
	}
	return i
}

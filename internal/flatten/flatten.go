// Package flatten inlines a Solidity file and everything it imports into a
// single source unit. Imports are resolved textually; nothing is compiled.
package flatten

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pendergraft/ethlift/internal/project"
	"github.com/pendergraft/ethlift/internal/remapping"
)

// Common errors returned by the flattener. Every failure also matches
// ErrFlattenFailed.
var (
	ErrFlattenFailed    = errors.New("flatten failed")
	ErrUnresolvedImport = errors.New("unresolved import")
	ErrImportCycle      = errors.New("import cycle")
)

// Error reports the file being flattened when a failure occurred.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrFlattenFailed, e.File, e.Err)
}

// Unwrap exposes both ErrFlattenFailed and the underlying cause.
func (e *Error) Unwrap() []error {
	return []error{ErrFlattenFailed, e.Err}
}

var (
	// importPattern matches the four Solidity import forms. Groups 1-4 hold
	// the path in double or single quotes. It runs over source with comments
	// blanked, so matches still need a statement boundary check.
	importPattern = regexp.MustCompile(`\bimport\s+(?:(?:"([^"]+)"|'([^']+)')(?:\s+as\s+\w+)?|(?:\*\s+as\s+\w+|\{[^}]*\}|\w+(?:\s+as\s+\w+)?)\s+from\s+(?:"([^"]+)"|'([^']+)'))\s*;`)

	licensePattern       = regexp.MustCompile(`(?m)^[ \t]*//\s*SPDX-License-Identifier:.*\r?\n?`)
	versionPragmaPattern = regexp.MustCompile(`(?m)^[ \t]*pragma\s+solidity\s+[^;]+;[ \t]*\r?\n?`)
	sharedPragmaPattern  = regexp.MustCompile(`(?m)^[ \t]*pragma\s+(?:experimental|abicoder)\s+[^;]+;[ \t]*\r?\n?`)
	blankRunPattern      = regexp.MustCompile(`\n{3,}`)
)

// Result is a flattened source unit.
type Result struct {
	Source string
	// Files lists every inlined file in the order it was first included,
	// starting with the target.
	Files []string
}

// Option configures a Flattener
type Option func(*Flattener)

// WithLogger sets the logger used for resolution tracing
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flattener) {
		f.logger = logger
	}
}

// Flattener inlines imports using a project's remapping table.
type Flattener struct {
	cfg    *project.Config
	logger *slog.Logger
}

// New creates a Flattener for the given project.
func New(cfg *project.Config, opts ...Option) *Flattener {
	f := &Flattener{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Flatten returns target with every import replaced by the imported file's
// flattened content. Each file is included once; later imports of an
// already included file are dropped. Target is relative to the project root.
func (f *Flattener) Flatten(target string) (*Result, error) {
	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.cfg.Root, path)
	}
	path = filepath.Clean(path)

	w := &walk{
		visiting: make(map[string]bool),
		done:     make(map[string]bool),
	}
	source, err := f.flattenFile(w, path, true)
	if err != nil {
		return nil, err
	}

	source = dedupeSharedPragmas(source)
	source = blankRunPattern.ReplaceAllString(source, "\n\n")

	return &Result{Source: source, Files: w.order}, nil
}

type walk struct {
	visiting map[string]bool
	done     map[string]bool
	order    []string
}

func (f *Flattener) flattenFile(w *walk, path string, entry bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{File: path, Err: err}
	}

	w.visiting[path] = true
	defer delete(w.visiting, path)
	w.order = append(w.order, path)

	content := string(data)
	if !entry {
		content = licensePattern.ReplaceAllString(content, "")
		content = versionPragmaPattern.ReplaceAllString(content, "")
	}

	code, bare := maskSource(content)

	var sb strings.Builder
	last := 0
	for _, m := range importPattern.FindAllStringSubmatchIndex(code, -1) {
		if !statementStart(bare, m[0]) {
			continue
		}

		// Drop the statement with its indentation and line break; an import
		// sharing a line with other code is cut out of it instead.
		start := m[0]
		for start > last && (content[start-1] == ' ' || content[start-1] == '\t') {
			start--
		}
		sb.WriteString(content[last:start])
		last = lineEnd(content, m[1])

		importPath := firstGroup(content, m)
		resolved, err := f.resolve(path, importPath)
		if err != nil {
			return "", &Error{File: path, Err: err}
		}

		if w.visiting[resolved] {
			return "", &Error{File: path, Err: fmt.Errorf("%w: %s imports %s", ErrImportCycle, path, resolved)}
		}
		if w.done[resolved] {
			continue
		}

		f.logger.Debug("inlining import", "from", path, "import", importPath, "resolved", resolved)
		inlined, err := f.flattenFile(w, resolved, false)
		if err != nil {
			return "", err
		}
		if out := sb.String(); out != "" && !strings.HasSuffix(out, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString(inlined)
		if !strings.HasSuffix(inlined, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(content[last:])

	w.done[path] = true
	return sb.String(), nil
}

// maskSource returns two copies of src with the same byte offsets: code has
// comments blanked, bare additionally blanks the contents of string literals.
// Line breaks are kept in both.
func maskSource(src string) (code, bare string) {
	c := []byte(src)
	b := []byte(src)

	blank := func(buf []byte, i int) {
		if buf[i] != '\n' {
			buf[i] = ' '
		}
	}

	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			for ; i < len(src) && src[i] != '\n'; i++ {
				blank(c, i)
				blank(b, i)
			}
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			stop := len(src)
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			for ; i < stop; i++ {
				blank(c, i)
				blank(b, i)
			}
		case src[i] == '"' || src[i] == '\'':
			quote := src[i]
			for i++; i < len(src) && src[i] != quote && src[i] != '\n'; i++ {
				if src[i] == '\\' && i+1 < len(src) && src[i+1] != '\n' {
					blank(b, i)
					i++
				}
				blank(b, i)
			}
			if i < len(src) && src[i] == quote {
				i++
			}
		default:
			i++
		}
	}
	return string(c), string(b)
}

// statementStart reports whether the import keyword at i begins a statement:
// it sits outside any string and follows only whitespace, ';' or '}'.
func statementStart(bare string, i int) bool {
	if !strings.HasPrefix(bare[i:], "import") {
		return false
	}
	j := i - 1
	for j >= 0 && strings.IndexByte(" \t\r\n", bare[j]) >= 0 {
		j--
	}
	return j < 0 || bare[j] == ';' || bare[j] == '}'
}

// lineEnd extends i over trailing blanks and a single line break.
func lineEnd(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if strings.HasPrefix(s[i:], "\r\n") {
		return i + 2
	}
	if i < len(s) && (s[i] == '\n' || s[i] == '\r') {
		return i + 1
	}
	return i
}

func firstGroup(s string, m []int) string {
	for g := 1; g*2+1 < len(m); g++ {
		if m[g*2] >= 0 {
			return s[m[g*2]:m[g*2+1]]
		}
	}
	return ""
}

// resolve maps an import path to a file on disk. Relative imports resolve
// against the importing file, then the longest matching remapping applies,
// then the project root and the source directory are tried in turn.
func (f *Flattener) resolve(importer, importPath string) (string, error) {
	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		candidate := filepath.Join(filepath.Dir(importer), filepath.FromSlash(importPath))
		if !isFile(candidate) {
			return "", fmt.Errorf("%w %q: %s does not exist", ErrUnresolvedImport, importPath, candidate)
		}
		return candidate, nil
	}

	if e, ok := f.match(importer, importPath); ok {
		rest := strings.TrimPrefix(importPath, e.Alias)
		candidate := filepath.Join(e.Path, filepath.FromSlash(rest))
		if !isFile(candidate) {
			return "", fmt.Errorf("%w %q: remapping %s points to missing file %s", ErrUnresolvedImport, importPath, e, candidate)
		}
		return candidate, nil
	}

	for _, base := range []string{f.cfg.Root, f.cfg.Sources} {
		candidate := filepath.Join(base, filepath.FromSlash(importPath))
		if isFile(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w %q: no remapping matches and no such file under %s", ErrUnresolvedImport, importPath, f.cfg.Root)
}

// match returns the remapping with the longest alias that prefixes importPath
// at a path boundary and whose context, if any, contains importer.
func (f *Flattener) match(importer, importPath string) (remapping.Entry, bool) {
	var best remapping.Entry
	found := false

	rel, err := filepath.Rel(f.cfg.Root, importer)
	if err != nil {
		rel = importer
	}
	rel = filepath.ToSlash(rel)

	for _, e := range f.cfg.Remappings {
		if e.Context != "" && !strings.HasPrefix(rel, e.Context) {
			continue
		}
		if !strings.HasPrefix(importPath, e.Alias) {
			continue
		}
		rest := importPath[len(e.Alias):]
		if !strings.HasSuffix(e.Alias, "/") && rest != "" && !strings.HasPrefix(rest, "/") {
			continue
		}
		if !found || len(e.Alias) > len(best.Alias) || (len(e.Alias) == len(best.Alias) && len(e.Context) > len(best.Context)) {
			best = e
			found = true
		}
	}
	return best, found
}

// dedupeSharedPragmas keeps the first occurrence of each experimental or
// abicoder pragma.
func dedupeSharedPragmas(source string) string {
	seen := make(map[string]bool)
	return sharedPragmaPattern.ReplaceAllStringFunc(source, func(line string) string {
		key := strings.Join(strings.Fields(line), " ")
		if seen[key] {
			return ""
		}
		seen[key] = true
		return line
	})
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

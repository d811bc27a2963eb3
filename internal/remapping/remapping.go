// Package remapping parses and translates Solidity import remappings.
//
// Two conventions are supported. The native (Foundry) form is
// "[context:]alias=path" and maps an import prefix straight to a directory.
// The legacy (Brownie) form is "alias=org/repo@version" and names a package
// that Brownie installs under ~/.brownie/packages.
package remapping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Common errors returned by the remapping functions.
var (
	ErrMalformedRemapping    = errors.New("malformed remapping")
	ErrHomeDirectoryNotFound = errors.New("home directory not found")
)

// PackagesDir is the Brownie package cache, relative to the user's home directory.
const PackagesDir = ".brownie/packages"

// Entry is a single alias-to-path substitution rule.
type Entry struct {
	// Context restricts the entry to imports made from files under this
	// prefix. Empty means the entry applies everywhere.
	Context string
	Alias   string
	Path    string
}

// String renders the entry in the native "[context:]alias=path" form.
func (e Entry) String() string {
	if e.Context != "" {
		return e.Context + ":" + e.Alias + "=" + e.Path
	}
	return e.Alias + "=" + e.Path
}

// Legacy is a parsed Brownie remapping.
type Legacy struct {
	Alias       string // "@openzeppelin"
	Library     string // "openzeppelin-contracts"
	LibraryPath string // "OpenZeppelin/openzeppelin-contracts@4.8.0"
}

// ParseLegacy parses a Brownie remapping of the form alias=org/repo@version.
func ParseLegacy(spec string) (Legacy, error) {
	parts := strings.Split(spec, "=")
	if len(parts) != 2 {
		return Legacy{}, malformed(spec, "expected exactly one '='")
	}
	alias, target := parts[0], parts[1]
	if alias == "" {
		return Legacy{}, malformed(spec, "empty alias")
	}

	versioned := strings.Split(target, "@")
	if len(versioned) != 2 {
		return Legacy{}, malformed(spec, "expected exactly one '@' after '='")
	}
	repoPath, version := versioned[0], versioned[1]
	if version == "" {
		return Legacy{}, malformed(spec, "empty version")
	}

	repo := strings.Split(repoPath, "/")
	if len(repo) != 2 {
		return Legacy{}, malformed(spec, "package must be in org/repo form")
	}
	if repo[0] == "" || repo[1] == "" {
		return Legacy{}, malformed(spec, "empty organization or repository")
	}

	return Legacy{
		Alias:       alias,
		Library:     repo[1],
		LibraryPath: repoPath + "@" + version,
	}, nil
}

// Translate converts Brownie remappings into entries rooted in home's package
// cache. Order is preserved and duplicates are kept. Any malformed spec fails
// the whole translation.
func Translate(specs []string, home string) ([]Entry, error) {
	parsed := make([]Legacy, 0, len(specs))
	for _, spec := range specs {
		l, err := ParseLegacy(spec)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, l)
	}

	if home == "" {
		return nil, ErrHomeDirectoryNotFound
	}

	entries := make([]Entry, 0, len(parsed))
	for _, l := range parsed {
		entries = append(entries, Entry{
			Alias: l.Alias,
			Path:  filepath.Join(home, PackagesDir, filepath.FromSlash(l.LibraryPath)),
		})
	}
	return entries, nil
}

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrHomeDirectoryNotFound
	}
	return home, nil
}

// Parse parses a native remapping of the form [context:]alias=path.
func Parse(s string) (Entry, error) {
	s = strings.TrimSpace(s)
	eq := strings.Index(s, "=")
	if eq <= 0 {
		return Entry{}, malformed(s, "expected alias=path")
	}

	lhs, path := s[:eq], s[eq+1:]
	if path == "" {
		return Entry{}, malformed(s, "empty path")
	}

	var context string
	if colon := strings.Index(lhs, ":"); colon >= 0 {
		context, lhs = lhs[:colon], lhs[colon+1:]
	}
	if lhs == "" {
		return Entry{}, malformed(s, "empty alias")
	}

	return Entry{Context: context, Alias: lhs, Path: path}, nil
}

func malformed(spec, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedRemapping, spec, reason)
}

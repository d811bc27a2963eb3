package explorer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SourceFile is one file of a verified source tree.
type SourceFile struct {
	Path    string
	Content string
}

// SourceCode is the verified source of a contract as published.
type SourceCode struct {
	ContractName    string
	CompilerVersion string
	License         string
	Proxy           bool
	Implementation  string
	// Files is sorted by path. Single-file verifications hold one entry
	// named after the contract.
	Files []SourceFile
}

// Source joins every file's content in path order, separated by newlines.
func (s *SourceCode) Source() string {
	parts := make([]string, len(s.Files))
	for i, f := range s.Files {
		parts[i] = f.Content
	}
	return strings.Join(parts, "\n")
}

type sourceEntry struct {
	Content string `json:"content"`
}

// standardInput is the solc standard JSON input, of which only the sources
// matter here.
type standardInput struct {
	Language string                 `json:"language"`
	Sources  map[string]sourceEntry `json:"sources"`
}

// parseSourceCode decodes the SourceCode field. Etherscan stores plain
// Solidity for single-file verifications, a JSON object of files for
// multi-file ones, and standard JSON input wrapped in an extra pair of
// braces for standard-json verifications.
func parseSourceCode(contractName, raw string) ([]SourceFile, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return []SourceFile{{Path: contractName + ".sol", Content: raw}}, nil
	}

	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}

	var input standardInput
	if err := json.Unmarshal([]byte(trimmed), &input); err != nil {
		return nil, fmt.Errorf("decoding multi-file source: %w", err)
	}

	sources := input.Sources
	if len(sources) == 0 {
		if err := json.Unmarshal([]byte(trimmed), &sources); err != nil {
			return nil, fmt.Errorf("decoding multi-file source: %w", err)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("multi-file source has no files")
	}

	files := make([]SourceFile, 0, len(sources))
	for path, src := range sources {
		files = append(files, SourceFile{Path: path, Content: src.Content})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

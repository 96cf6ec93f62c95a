package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ExcludeRule represents a single ignore-file pattern.
type ExcludeRule struct {
	Pattern  string
	Negation bool
	DirOnly  bool
}

// LoadExcludeRules parses .gitignore from the module root; generated and
// vendored trees listed there should not be scanned for module declarations.
func LoadExcludeRules(root string) []ExcludeRule {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var rules []ExcludeRule
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		r := ExcludeRule{}
		if strings.HasPrefix(line, "!") {
			r.Negation = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			r.DirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		r.Pattern = line
		rules = append(rules, r)
	}
	return rules
}

// IsExcluded checks if a package path relative to the module root matches any
// rule. Later rules win, so negations re-include.
func IsExcluded(relPath string, rules []ExcludeRule) bool {
	relPath = filepath.ToSlash(relPath)

	excluded := false
	for _, r := range rules {
		if matchRule(relPath, r.Pattern) {
			excluded = !r.Negation
		}
	}
	return excluded
}

// matchRule performs simplified gitignore matching.
func matchRule(path, pattern string) bool {
	// Leading / anchors to the module root.
	if strings.HasPrefix(pattern, "/") {
		matched, _ := filepath.Match(pattern[1:], path)
		return matched
	}

	// A pattern containing / matches from the root, including as a directory
	// prefix.
	if strings.Contains(pattern, "/") {
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
		return strings.HasPrefix(path, pattern+"/") || strings.HasPrefix(path, pattern)
	}

	// Bare patterns match any path segment.
	if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
		return true
	}
	for _, part := range strings.Split(path, "/") {
		if matched, _ := filepath.Match(pattern, part); matched {
			return true
		}
	}
	return false
}

// Package main implements dimod, the module-descriptor assembly stage of a
// compile-time dependency injection code generator.
//
// dimod scans a Go module for named struct types carrying //dimod:module or
// //dimod:producer directives, classifies their tagged methods into binding
// buckets, resolves the transitive set of included modules (declared includes,
// embedded supertypes, and generated companion modules contributed via
// //dimod:contributes), and emits the resulting descriptors for downstream
// binding-graph construction.
//
// Assembly flow:
//
//  1. Read go.mod → module path; overlay dimod.yaml if present
//  2. Load scan packages with full type info
//  3. Index annotated types and methods into a symbol table
//  4. Assemble a descriptor per module declaration (memoized per identity)
//  5. Print the descriptor tree, or JSON with -json
//
// Usage:
//
//	//go:generate go run github.com/leafdi/dimod@latest
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable debug logging")
	jsonOut := flag.Bool("json", false, "emit descriptors as JSON")
	flag.Parse()

	log := newLogger(*verbose)

	moduleRoot, err := findModuleRoot()
	if err != nil {
		log.Fatal().Err(err).Msg("dimod")
	}

	cfg, err := BuildConfig(moduleRoot)
	if err != nil {
		log.Fatal().Err(err).Msg("dimod")
	}
	if !*verbose {
		if level, parseErr := zerolog.ParseLevel(cfg.Log.Level); parseErr == nil && cfg.Log.Level != "" {
			log = log.Level(level)
		}
	}
	log.Debug().Str("module", cfg.Module).Str("root", moduleRoot).Msg("configured")

	rules := LoadExcludeRules(moduleRoot)

	scanner := NewScanner(cfg, moduleRoot, rules, log)
	table, err := scanner.Scan()
	if err != nil {
		log.Fatal().Err(err).Msg("scan")
	}

	modules := table.Modules()
	log.Info().Int("modules", len(modules)).Msg("module declarations discovered")
	if len(modules) == 0 {
		return
	}

	factory := NewFactory(table, log)
	factory.ContributesMarkerType = cfg.Marker

	cache, err := NewAssemblyCache(factory, cfg.CacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("cache")
	}

	var descriptors []*ModuleDescriptor
	failed := false
	for _, m := range modules {
		d, err := cache.Assemble(m)
		if err != nil {
			log.Error().Err(err).Stringer("module", m).Msg("assembly failed")
			failed = true
			continue
		}
		descriptors = append(descriptors, d)
	}
	if failed {
		os.Exit(1)
	}

	if *jsonOut {
		if err := WriteJSON(os.Stdout, descriptors); err != nil {
			log.Fatal().Err(err).Msg("encode")
		}
		return
	}
	WriteTree(os.Stdout, descriptors)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// findModuleRoot walks up from cwd to find the directory containing go.mod.
func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("go.mod not found in any parent directory")
}

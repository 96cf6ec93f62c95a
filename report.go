package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// descriptorReport is the JSON shape of one assembled descriptor. The core
// aggregate stays free of serialization tags; downstream stages consume it
// in-process.
type descriptorReport struct {
	Module           string              `json:"module"`
	Kind             string              `json:"kind"`
	Bindings         []declarationReport `json:"bindings,omitempty"`
	Delegates        []declarationReport `json:"delegates,omitempty"`
	Multibindings    []declarationReport `json:"multibindings,omitempty"`
	OptionalBindings []declarationReport `json:"optional_bindings,omitempty"`
	Subcomponents    []string            `json:"subcomponents,omitempty"`
	Includes         []descriptorReport  `json:"includes,omitempty"`
}

type declarationReport struct {
	Member string `json:"member"`
	Key    string `json:"key,omitempty"`
}

func toReport(d *ModuleDescriptor) descriptorReport {
	r := descriptorReport{
		Module:           d.Module.String(),
		Kind:             d.Kind.String(),
		Bindings:         toDeclarationReports(d.Bindings),
		Delegates:        toDeclarationReports(d.Delegates),
		Multibindings:    toDeclarationReports(d.Multibindings),
		OptionalBindings: toDeclarationReports(d.OptionalBindings),
	}
	for _, s := range d.Subcomponents {
		r.Subcomponents = append(r.Subcomponents, s.Name)
	}
	for _, inc := range d.Includes {
		r.Includes = append(r.Includes, toReport(inc))
	}
	return r
}

func toDeclarationReports(decls []BindingDeclaration) []declarationReport {
	var out []declarationReport
	for _, d := range decls {
		out = append(out, declarationReport{Member: d.Member, Key: d.Key})
	}
	return out
}

// WriteJSON dumps assembled descriptors as an indented JSON array.
func WriteJSON(w io.Writer, descriptors []*ModuleDescriptor) error {
	reports := make([]descriptorReport, 0, len(descriptors))
	for _, d := range descriptors {
		reports = append(reports, toReport(d))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// WriteTree prints a human-readable descriptor tree.
func WriteTree(w io.Writer, descriptors []*ModuleDescriptor) {
	for _, d := range descriptors {
		writeTree(w, d, 0)
	}
}

func writeTree(w io.Writer, d *ModuleDescriptor, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s [%s]\n", indent, d.Module, d.Kind)
	writeBucket(w, indent, "bindings", d.Bindings)
	writeBucket(w, indent, "delegates", d.Delegates)
	writeBucket(w, indent, "multibindings", d.Multibindings)
	writeBucket(w, indent, "optional", d.OptionalBindings)
	for _, s := range d.Subcomponents {
		fmt.Fprintf(w, "%s  subcomponent %s (%s)\n", indent, s.Name, s.Member)
	}
	for _, inc := range d.Includes {
		writeTree(w, inc, depth+1)
	}
}

func writeBucket(w io.Writer, indent, label string, decls []BindingDeclaration) {
	for _, d := range decls {
		if d.Key != "" {
			fmt.Fprintf(w, "%s  %s: %s → %s\n", indent, label, d.Member, d.Key)
			continue
		}
		fmt.Fprintf(w, "%s  %s: %s\n", indent, label, d.Member)
	}
}

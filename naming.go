package main

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NamingStrategy derives the fully qualified name of the generated companion
// module for a contributes-marked member function. The strategy is supplied
// by configuration so the resolver stays independent of any one generator's
// convention.
type NamingStrategy func(m Member) string

// DefaultNaming implements the companion generator's convention: the package
// of the declaring type, the declaring type's class-file name, an underscore,
// and the member name in upper camel case.
//
//	demoapp.FeedModule + contributeWorker → demoapp.FeedModule_ContributeWorker
func DefaultNaming(m Member) string {
	return m.PkgPath + "." + classFileName(m.Declaring) + "_" + upperCamel(m.Name)
}

// classFileName flattens a possibly nested type name, joining segments with
// underscores.
func classFileName(t TypeRef) string {
	return strings.ReplaceAll(t.Name, ".", "_")
}

// upperCamel converts a lowerCamelCase name to UpperCamelCase.
func upperCamel(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

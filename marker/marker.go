// Package marker carries the type whose presence in a compilation enables
// implicit module inclusion. Projects using the companion-module generator
// blank-import this package; builds that never import it skip the implicit
// step entirely.
package marker

// Contributes is the implicit-inclusion marker type. It has no behavior; the
// descriptor assembler only checks whether it resolves.
type Contributes struct{}

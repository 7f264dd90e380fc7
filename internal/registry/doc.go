// Package registry compiles the static catalog of test phases and cases.
//
// Suite tables are CUE documents embedded in the binary. Compiling a table
// unifies it with the structural schema in tables/schema.cue, decodes it, and
// then validates the semantics that the harness depends on:
//
//   - phase ids are unique, and case ids are unique within their phase
//   - a require-all-critical phase contains only critical cases
//   - a require-fraction phase contains no critical cases
//   - at most one phase is require-all-critical
//   - every rule has a known kind, predicate and well-formed arguments
//
// Any violation is a *ConfigError. Compiled registries are read-only.
package registry

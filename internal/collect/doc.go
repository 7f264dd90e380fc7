// Package collect supplies responses to the harness.
//
// A Source is a pull interface: each call to Next yields the next
// (phase, case, response) entry or io.EOF once the source is exhausted. The
// scoring pipeline only ever sees the harness.Responses that Drain builds, so
// canned maps, response files and an operator at a terminal are
// interchangeable.
//
// Recorder persists what a Source produced as a YAML transcript so a run can
// be audited after the fact.
package collect

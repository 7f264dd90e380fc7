// Package rule scores a single free-text response against a rule.
//
// A rule is one of two closed variants:
//
//   - Lexical: every required term must appear and no forbidden term may
//     appear.
//   - Predicate: a named pure function from the predicate table decides,
//     using the rule's Terms and Min as auxiliary data.
//
// Matching is case-insensitive and Unicode-normalized (NFC), so "Confirm",
// "CONFIRM" and "confirm" are the same term. Evaluation never fails: an
// empty response is simply a response that contains nothing.
package rule

// Package forms holds the per-service quote form catalog and the rules that
// run over an in-progress answer set: which fields are visible, whether a
// value is acceptable, and how fields split across the two wizard steps.
//
// Form definitions live in catalog/*.yaml and are embedded into the binary.
// Every document is checked against catalog/formconfig.schema.json and then
// against the cross-field rules in Check before the registry accepts it.
package forms

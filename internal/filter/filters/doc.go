// Package filters contains the concrete filter types of the pipeline.
//
// Each type supplies a schema, the predicate that decides whether its
// configuration has any effect, and the pixel transform. Types are made
// available to the application through RegisterAll.
package filters

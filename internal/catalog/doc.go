// Package catalog holds the fixed Device and GameEvent definitions.
//
// Raw catalog data is YAML. Every entry is unified with a closed CUE
// schema (schema.cue) at the load boundary; entries that fail structural
// or enum checks, or that repeat an id, are dropped and reported rather
// than passed to the engine.
//
// Catalog values are read-only once loaded. Accessors hand out copies of
// the top-level slices; callers must not mutate nested tag or choice
// slices.
package catalog

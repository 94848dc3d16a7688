// Package registry maintains the authoritative table of editable
// scene entities, keyed by hierarchical path.
//
// A registry is resolved once from a static template list plus a
// recursive scan of the live scene tree. After resolution it is the
// single source of truth for entity metadata: duplication, cascading
// deletion, hidden/locked state, display names and original-transform
// backups all flow through it. Cascading operations update every
// dependent index for every affected descendant before returning.
//
// The registry is owned by the single UI mutator and performs no
// locking of its own.
package registry

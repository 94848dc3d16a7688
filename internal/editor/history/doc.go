// Package history records invertible edit operations in a bounded
// undo/redo log.
//
// Commands are produced only by user-visible mutations; applying a
// remote snapshot never records history. The log is session-scoped
// and cleared on factory reset. Like the registry it is owned by the
// single UI mutator and performs no locking.
package history

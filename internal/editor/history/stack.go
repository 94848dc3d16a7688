package history

import (
	"errors"
	"time"

	"github.com/dshills/stagehand/internal/scene/registry"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 50

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// Log manages undo/redo state for a scene editing session.
type Log struct {
	undoStack []*undoEntry
	redoStack []*undoEntry

	maxEntries int
}

// NewLog creates a new command log.
func NewLog(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{maxEntries: maxEntries}
}

// Push records an already-applied command on the undo stack.
// The redo stack is always cleared; the oldest entry is dropped when
// the stack exceeds its bound.
func (l *Log) Push(cmd Command) {
	l.undoStack = append(l.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})
	l.redoStack = nil

	if len(l.undoStack) > l.maxEntries {
		excess := len(l.undoStack) - l.maxEntries
		l.undoStack = l.undoStack[excess:]
	}
}

// Undo reverts the most recent command and moves it to the redo
// stack. The reverted command is returned so callers can inspect what
// changed.
func (l *Log) Undo(r *registry.Registry) (Command, error) {
	if len(l.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}

	entry := l.undoStack[len(l.undoStack)-1]
	l.undoStack = l.undoStack[:len(l.undoStack)-1]

	if err := entry.command.Undo(r); err != nil {
		// Restore entry on failure.
		l.undoStack = append(l.undoStack, entry)
		return nil, err
	}

	l.redoStack = append(l.redoStack, entry)
	return entry.command, nil
}

// Redo re-applies the most recently undone command and moves it back
// to the undo stack.
func (l *Log) Redo(r *registry.Registry) (Command, error) {
	if len(l.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}

	entry := l.redoStack[len(l.redoStack)-1]
	l.redoStack = l.redoStack[:len(l.redoStack)-1]

	if err := entry.command.Execute(r); err != nil {
		l.redoStack = append(l.redoStack, entry)
		return nil, err
	}

	l.undoStack = append(l.undoStack, entry)
	return entry.command, nil
}

// CanUndo returns true if undo is available.
func (l *Log) CanUndo() bool { return len(l.undoStack) > 0 }

// CanRedo returns true if redo is available.
func (l *Log) CanRedo() bool { return len(l.redoStack) > 0 }

// UndoCount returns the number of undo operations available.
func (l *Log) UndoCount() int { return len(l.undoStack) }

// RedoCount returns the number of redo operations available.
func (l *Log) RedoCount() int { return len(l.redoStack) }

// PeekUndo returns the description of the next undo operation.
func (l *Log) PeekUndo() (string, bool) {
	if len(l.undoStack) == 0 {
		return "", false
	}
	return l.undoStack[len(l.undoStack)-1].command.Description(), true
}

// PeekRedo returns the description of the next redo operation.
func (l *Log) PeekRedo() (string, bool) {
	if len(l.redoStack) == 0 {
		return "", false
	}
	return l.redoStack[len(l.redoStack)-1].command.Description(), true
}

// Clear removes all undo/redo history.
func (l *Log) Clear() {
	l.undoStack = nil
	l.redoStack = nil
}

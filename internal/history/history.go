// Package history keeps a bounded stack of color-layer snapshots for
// undo and redo.
package history

// DefaultLimit is the number of snapshots kept when no limit is given.
const DefaultLimit = 20

// Entry is one snapshot and the revision it was pushed at.
type Entry struct {
	Revision uint64
	Pix      []byte
}

// Stack is a bounded undo/redo history. The cursor points at the entry that
// matches what is currently displayed. Pushing past the limit silently
// drops the oldest entry.
//
// A Stack is not safe for concurrent use.
type Stack struct {
	entries []Entry
	cursor  int
	limit   int
	clock   Clock
}

// New returns an empty stack holding at most limit entries. A non-positive
// limit means DefaultLimit.
func New(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit, cursor: -1}
}

// Push records snap as the newest entry. Entries after the cursor are
// discarded first. The stack takes ownership of snap.
func (s *Stack) Push(snap []byte) {
	if s.cursor < len(s.entries)-1 {
		clear(s.entries[s.cursor+1:])
		s.entries = s.entries[:s.cursor+1]
	}
	s.entries = append(s.entries, Entry{Revision: s.clock.Tick(), Pix: snap})
	if over := len(s.entries) - s.limit; over > 0 {
		clear(s.entries[:over])
		s.entries = s.entries[over:]
	}
	s.cursor = len(s.entries) - 1
}

// Undo moves the cursor back one entry and returns that snapshot. It
// reports false when there is nothing to undo.
func (s *Stack) Undo() ([]byte, bool) {
	if s.cursor <= 0 {
		return nil, false
	}
	s.cursor--
	return s.entries[s.cursor].Pix, true
}

// Redo moves the cursor forward one entry and returns that snapshot. It
// reports false when there is nothing to redo.
func (s *Stack) Redo() ([]byte, bool) {
	if s.cursor >= len(s.entries)-1 {
		return nil, false
	}
	s.cursor++
	return s.entries[s.cursor].Pix, true
}

// Current returns the entry under the cursor.
func (s *Stack) Current() (Entry, bool) {
	if s.cursor < 0 {
		return Entry{}, false
	}
	return s.entries[s.cursor], true
}

// Reset drops every entry. Revisions keep increasing across resets.
func (s *Stack) Reset() {
	clear(s.entries)
	s.entries = s.entries[:0]
	s.cursor = -1
}

// Len returns the number of stored snapshots.
func (s *Stack) Len() int { return len(s.entries) }

// Index returns the cursor, or -1 when the stack is empty.
func (s *Stack) Index() int { return s.cursor }

func (s *Stack) Limit() int { return s.limit }

func (s *Stack) CanUndo() bool { return s.cursor > 0 }

func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries)-1 }

// Revision returns the revision of the entry under the cursor, or 0.
func (s *Stack) Revision() uint64 {
	if e, ok := s.Current(); ok {
		return e.Revision
	}
	return 0
}

// Entries returns the stored entries oldest first. The slice is shared
// with the stack.
func (s *Stack) Entries() []Entry { return s.entries }

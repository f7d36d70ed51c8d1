// Package history keeps executed paste commands for undo.
package history

import "sync"

// DefaultDepth is how many commands are kept when no depth is configured.
const DefaultDepth = 100

// Undoable is an executed command that can be reverted once.
type Undoable interface {
	ID() string
	Undo() error
}

// History is a bounded undo stack. Commands cannot be re-executed after
// undo, so there is no redo side: undoing pops the command for good.
//
// When the stack is full the oldest command is dropped; its effect becomes
// permanent.
type History struct {
	mu       sync.Mutex
	commands []Undoable
	depth    int
}

// New creates an empty history keeping at most depth commands.
// depth <= 0 means DefaultDepth.
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth}
}

// Push records a command after it executed.
func (h *History) Push(cmd Undoable) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, cmd)
	if over := len(h.commands) - h.depth; over > 0 {
		clear(h.commands[:over])
		h.commands = h.commands[over:]
	}
}

// Undo reverts the most recent command and removes it from the stack.
// It returns a nil command when there is nothing to undo. The command is
// removed even if its Undo fails, since it cannot be undone twice.
func (h *History) Undo() (Undoable, error) {
	h.mu.Lock()
	if len(h.commands) == 0 {
		h.mu.Unlock()
		return nil, nil
	}
	last := len(h.commands) - 1
	cmd := h.commands[last]
	h.commands[last] = nil
	h.commands = h.commands[:last]
	h.mu.Unlock()

	return cmd, cmd.Undo()
}

// Peek returns the command Undo would revert, or nil.
func (h *History) Peek() Undoable {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.commands) == 0 {
		return nil
	}
	return h.commands[len(h.commands)-1]
}

// CanUndo returns true if there are commands to undo.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.commands) > 0
}

// Len returns the number of commands kept.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.commands)
}

// Depth returns the capacity.
func (h *History) Depth() int { return h.depth }

// Clear forgets every command. Used when the grid is reloaded from storage
// and old commands no longer describe it.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.commands)
	h.commands = h.commands[:0]
}

package game

// History keeps the notation of every position reached in a game, oldest
// first, with a cursor for stepping back and forth through them. Moving the
// cursor never changes the live position.
type History struct {
	states []string
	cursor int
}

func newHistory(start string) *History {
	return &History{states: []string{start}}
}

// push records a new latest position and moves the cursor onto it.
func (h *History) push(fen string) {
	h.states = append(h.states, fen)
	h.cursor = len(h.states) - 1
}

// Len returns the number of stored positions.
func (h *History) Len() int {
	return len(h.states)
}

// At returns the notation stored at index i.
func (h *History) At(i int) (string, bool) {
	if i < 0 || i >= len(h.states) {
		return "", false
	}
	return h.states[i], true
}

// Cursor returns the index being viewed.
func (h *History) Cursor() int {
	return h.cursor
}

// Current returns the notation under the cursor.
func (h *History) Current() string {
	return h.states[h.cursor]
}

// AtLatest reports whether the cursor is on the live position.
func (h *History) AtLatest() bool {
	return h.cursor == len(h.states)-1
}

// Previous steps the cursor back one position. ok is false at the start.
func (h *History) Previous() (string, bool) {
	if h.cursor == 0 {
		return h.states[0], false
	}
	h.cursor--
	return h.states[h.cursor], true
}

// Next steps the cursor forward one position. ok is false at the end.
func (h *History) Next() (string, bool) {
	if h.cursor == len(h.states)-1 {
		return h.states[h.cursor], false
	}
	h.cursor++
	return h.states[h.cursor], true
}

// Latest moves the cursor back onto the live position.
func (h *History) Latest() string {
	h.cursor = len(h.states) - 1
	return h.states[h.cursor]
}

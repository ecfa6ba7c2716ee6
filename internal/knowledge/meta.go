package knowledge

import "github.com/will-hanabi-bot/go-bot/engine"

// CardStatus marks a standing instruction attached to a card by an earlier
// interpretation.
type CardStatus int

const (
	StatusNone CardStatus = iota
	StatusCalledToPlay
	StatusCalledToDiscard
)

// CardMeta is the public, convention-level annotation on one card. It is
// common knowledge: every observer derives the same meta from the same
// action feed.
type CardMeta struct {
	Status CardStatus

	// Focused marks the card that was the focus of the clue touching it.
	Focused bool

	// Urgent marks a called-to-play card that must act before the caller's
	// next turn.
	Urgent bool

	// Trash marks a card publicly known useless through convention.
	Trash bool

	// Reasoning records why the mark was applied, for notes and logs.
	Reasoning string
}

// NoteFor renders the note text pushed to the server for one card: the
// inferred identities plus any standing instruction.
func NoteFor(t *Thought, m CardMeta, s *engine.State) string {
	note := ""
	if _, known := t.Known(); !known && t.Inferred != engine.AllIdentities {
		note = t.Inferred.String()
	}
	switch {
	case m.Trash || t.KnownTrash(s):
		note = appendNote(note, "kt")
	case m.Status == StatusCalledToPlay:
		note = appendNote(note, "play")
	case m.Status == StatusCalledToDiscard:
		note = appendNote(note, "dc")
	}
	if note == "" {
		return ""
	}
	return "[" + note + "]"
}

func appendNote(note, tag string) string {
	if note == "" {
		return tag
	}
	return note + " | " + tag
}

// internal/core/domain/ledger.go
package domain

import (
	"fmt"
	"time"
)

// MergePolicy selects how submitted amounts combine with existing quantities.
type MergePolicy int

const (
	// MergeAdditive increments existing quantities (create/increment path).
	// Zero amounts are rejected up front since creation needs a positive
	// starting quantity.
	MergeAdditive MergePolicy = iota

	// MergeAbsolute replaces existing quantities (update path). A zero
	// amount removes the finish from the record.
	MergeAbsolute
)

// NoteTimeFormat is the minute-granularity local timestamp prefixed to each
// appended note line.
const NoteTimeFormat = "2006-01-02 15:04"

// ValidateChanges checks a submitted finish list against the catalog's
// allowed-finish set before any mutation happens. The whole submission is
// rejected on the first offending change, so a multi-finish payload is
// all-or-nothing.
func ValidateChanges(changes []PendingChange, snapshot *CatalogSnapshot, policy MergePolicy) error {
	if len(changes) == 0 {
		return &ValidationError{Field: "finishes", Reason: "at least one finish change is required"}
	}

	for _, c := range changes {
		if c.Finish == "" {
			return &ValidationError{Field: "finish", Reason: "finish name is required"}
		}
		if !snapshot.AllowsFinish(c.Finish) {
			return NewUnknownFinishError(c.Finish)
		}
		if c.Amount < 0 {
			return NewInvalidQuantityError(c.Finish, c.Amount)
		}
		if policy == MergeAdditive && c.Amount == 0 {
			return NewInvalidQuantityError(c.Finish, c.Amount)
		}
	}

	return nil
}

// MergeFinishes merges validated pending changes into the existing finish
// entries under the given policy and returns the new entry set. Existing
// entries are never mutated; the result is rebuilt through a map keyed by
// finish name. Finishes not mentioned in changes carry over unchanged, and
// entry order is existing-first, then new finishes in submission order.
func MergeFinishes(existing []FinishEntry, changes []PendingChange, policy MergePolicy, now time.Time) []FinishEntry {
	byName := make(map[string]*FinishEntry, len(existing)+len(changes))
	order := make([]string, 0, len(existing)+len(changes))

	for _, e := range existing {
		copied := e
		byName[e.Finish] = &copied
		order = append(order, e.Finish)
	}

	for _, c := range changes {
		entry, ok := byName[c.Finish]
		if !ok {
			entry = &FinishEntry{Finish: c.Finish}
			byName[c.Finish] = entry
			order = append(order, c.Finish)
		}

		switch policy {
		case MergeAdditive:
			if ok {
				entry.Quantity += c.Amount
			} else {
				entry.Quantity = c.Amount
			}
		case MergeAbsolute:
			entry.Quantity = c.Amount
		}

		if c.Note != "" {
			entry.Notes = appendNote(entry.Notes, c.Note, now)
		}
	}

	merged := make([]FinishEntry, 0, len(order))
	for _, name := range order {
		entry := byName[name]
		if policy == MergeAbsolute && entry.Quantity == 0 {
			continue
		}
		merged = append(merged, *entry)
	}

	return merged
}

// appendNote appends a timestamped line to an entry's notes log, preserving
// prior lines.
func appendNote(notes, note string, now time.Time) string {
	line := fmt.Sprintf("%s %s", now.Format(NoteTimeFormat), note)
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}

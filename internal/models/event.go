package models

import "fmt"

// DateLayout is the layout of every date string stored on an event or
// expense (start, end, created_at).
const DateLayout = "2006-01-02"

// Event is the metadata record of one settlement occasion.
type Event struct {
	// ID is derived from Start, End and Title by EventID.
	ID string `json:"event_id"`

	// Title is the human-readable name (e.g., "Jeju weekend").
	Title string `json:"title"`

	// Start and End are ISO dates. They are not validated; they only feed
	// the identifier.
	Start string `json:"start"`
	End   string `json:"end"`

	// CreatedAt is the ISO date the event was (last) created. Re-creating an
	// event with the same identifier overwrites it.
	CreatedAt string `json:"created_at"`
}

// Label renders the event the way pickers show it: "start~end | title".
func (e Event) Label() string {
	return fmt.Sprintf("%s~%s | %s", e.Start, e.End, e.Title)
}

// SettlementFileName is the download name of the CSV settlement export.
func (e Event) SettlementFileName() string {
	return fmt.Sprintf("%s_%s_settlement.csv", e.Start, e.End)
}

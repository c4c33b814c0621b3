// internal/models/lifecycle.go
package models

import "time"

// ListingState is the durable lifecycle state of a tracked listing.
type ListingState string

const (
	StateActive        ListingState = "active"
	StateOnHold        ListingState = "on_hold"
	StateSoldCandidate ListingState = "sold_candidate"
	StateSold          ListingState = "sold"
)

// LifecycleRecord is the durable per-listing record mutated only by the
// lifecycle tracker. Records are created on first observation and kept for
// audit; terminal Sold records may be pruned by the persistence layer.
type LifecycleRecord struct {
	ID             string       `json:"id"`
	State          ListingState `json:"state"`
	LastSeenAt     time.Time    `json:"lastSeenAt"`
	FirstMissingAt *time.Time   `json:"firstMissingAt,omitempty"`
}

// Clone returns a deep copy so a reconciliation pass never aliases the
// previous cycle's record set.
func (r LifecycleRecord) Clone() LifecycleRecord {
	c := r
	if r.FirstMissingAt != nil {
		t := *r.FirstMissingAt
		c.FirstMissingAt = &t
	}
	return c
}

// EventType enumerates the durable lifecycle transitions worth notifying on.
type EventType string

const (
	EventNewListing    EventType = "new_listing"
	EventOnHold        EventType = "on_hold"
	EventResurrected   EventType = "resurrected"
	EventConfirmedSold EventType = "confirmed_sold"
)

// Event is one durable lifecycle transition emitted by a reconciliation pass.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ListingID string    `json:"listingId"`
	At        time.Time `json:"at"`
}

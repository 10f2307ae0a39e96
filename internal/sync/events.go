package sync

import "time"

const (
	EventReviewCreated = "review.created"
	EventReviewReplied = "review.replied"
)

type ReviewEvent struct {
	Type     string    `json:"type"` // "review.created" or "review.replied"
	ReviewID string    `json:"review_id,omitempty"`
	Index    int       `json:"index"`
	Rating   int       `json:"rating,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher receives every collection change. Implementations must not
// block the caller for long; delivery is best effort.
type Publisher interface {
	Publish(ev ReviewEvent)
}

// Multi fans an event out to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(ev ReviewEvent) {
	for _, p := range m {
		if p != nil {
			p.Publish(ev)
		}
	}
}

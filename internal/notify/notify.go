// Package notify delivers client-facing messages for suggestion proposals
// and waitlist offers. Dispatch is best effort: callers commit their state
// change first and report a failed send separately.
package notify

import "context"

type Kind string

const (
	KindSuggestionProposal Kind = "suggestion_proposal"
	KindWaitlistOffer      Kind = "waitlist_offer"
)

type Payload map[string]any

type Dispatcher interface {
	Send(ctx context.Context, kind Kind, recipient string, payload Payload) error
}

package services

import "github.com/anjiri1684/tutor_match/models"

type MatchingEventKind string

// Post-transition events. The state machine returns these after the store
// write has committed; the notification dispatcher consumes them. Delivery
// failures never roll back the transition that produced them.
const (
	EventMatchingRequested  MatchingEventKind = "matching_requested"
	EventMatchingAccepted   MatchingEventKind = "matching_accepted"
	EventMatchingRefused    MatchingEventKind = "matching_refused"
	EventMatchingConfirmed  MatchingEventKind = "matching_confirmed"
	EventEnsureConversation MatchingEventKind = "ensure_conversation"
)

type MatchingEvent struct {
	Kind     MatchingEventKind
	Matching models.Matching
	Reason   string
}

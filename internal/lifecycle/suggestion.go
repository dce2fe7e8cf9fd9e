package lifecycle

import (
	"fmt"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/models"
)

type SuggestionEvent string

const (
	EvSend    SuggestionEvent = "send"
	EvConfirm SuggestionEvent = "confirm"
	EvDecline SuggestionEvent = "decline"
	EvAccept  SuggestionEvent = "accept"
	EvDismiss SuggestionEvent = "dismiss"
	EvReject  SuggestionEvent = "reject"
)

// Effect is work a transition asks the caller to perform.
type Effect string

const (
	// EffectNotifyClient dispatches the proposal with confirm/decline callbacks.
	EffectNotifyClient Effect = "notify_client"
	// EffectSchedule writes the slot onto the booking, reserves it and
	// creates the session event, all in the transition's transaction.
	EffectSchedule Effect = "schedule"
)

type SuggestionTransition struct {
	From    models.SuggestionStatus
	Event   SuggestionEvent
	To      models.SuggestionStatus
	Effects []Effect
}

func (t SuggestionTransition) Has(e Effect) bool {
	for _, eff := range t.Effects {
		if eff == e {
			return true
		}
	}
	return false
}

var suggestionTransitions = []SuggestionTransition{
	{From: models.SuggestionPending, Event: EvSend, To: models.SuggestionSentToClient, Effects: []Effect{EffectNotifyClient}},
	{From: models.SuggestionSentToClient, Event: EvConfirm, To: models.SuggestionClientConfirmed, Effects: []Effect{EffectSchedule}},
	{From: models.SuggestionSentToClient, Event: EvDecline, To: models.SuggestionClientDeclined},
	{From: models.SuggestionPending, Event: EvAccept, To: models.SuggestionAccepted, Effects: []Effect{EffectSchedule}},
	{From: models.SuggestionPending, Event: EvDismiss, To: models.SuggestionDismissed},
	{From: models.SuggestionPending, Event: EvReject, To: models.SuggestionRejected},
	{From: models.SuggestionSentToClient, Event: EvReject, To: models.SuggestionRejected},
}

var suggestionStatuses = map[models.SuggestionStatus]bool{
	models.SuggestionPending:         true,
	models.SuggestionSentToClient:    true,
	models.SuggestionClientConfirmed: true,
	models.SuggestionClientDeclined:  true,
	models.SuggestionAccepted:        true,
	models.SuggestionDismissed:       true,
	models.SuggestionRejected:        true,
}

func ParseSuggestionStatus(s string) (models.SuggestionStatus, error) {
	st := models.SuggestionStatus(s)
	if !suggestionStatuses[st] {
		return "", apperr.Validation("unknown suggestion status %q", s)
	}
	return st, nil
}

// NextSuggestion looks up the edge for event from the given status. A status
// with no such edge has already moved on, which is reported as a conflict.
func NextSuggestion(from models.SuggestionStatus, ev SuggestionEvent) (SuggestionTransition, error) {
	if !suggestionStatuses[from] {
		return SuggestionTransition{}, apperr.Validation("unknown suggestion status %q", from)
	}
	for _, tr := range suggestionTransitions {
		if tr.From == from && tr.Event == ev {
			return tr, nil
		}
	}
	return SuggestionTransition{}, apperr.Conflict("cannot %s a suggestion that is %s", ev, from)
}

func (t SuggestionTransition) String() string {
	return fmt.Sprintf("%s --%s--> %s", t.From, t.Event, t.To)
}

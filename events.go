package postwave

import (
	"encoding/json"
	"fmt"
)

// SubscriptionEvent is an event name used when registering a webhook. The
// vocabulary is closed and the mapping is strict in both directions: this
// value is sent to the Postwave API, which silently accepts unrecognized
// event names and then never delivers anything, so a typo must fail here
// rather than on the wire.
type SubscriptionEvent string

const (
	// SubscriptionEventProcessed fires when a message is accepted for delivery.
	SubscriptionEventProcessed SubscriptionEvent = "processed"
	// SubscriptionEventDelivered fires when a recipient's server accepts the message.
	SubscriptionEventDelivered SubscriptionEvent = "delivered"
	// SubscriptionEventBounce fires when delivery to a recipient fails.
	SubscriptionEventBounce SubscriptionEvent = "bounce"
	// SubscriptionEventOpen fires when a recipient opens the message.
	SubscriptionEventOpen SubscriptionEvent = "open"
	// SubscriptionEventClick fires when a recipient follows a tracked link.
	SubscriptionEventClick SubscriptionEvent = "click"
	// SubscriptionEventSpam fires when a recipient marks the message as spam.
	SubscriptionEventSpam SubscriptionEvent = "spam"
	// SubscriptionEventUnsubscribe fires when a recipient unsubscribes.
	SubscriptionEventUnsubscribe SubscriptionEvent = "unsubscribe"
	// SubscriptionEventResubscribe fires when a recipient resubscribes.
	SubscriptionEventResubscribe SubscriptionEvent = "resubscribe"
	// SubscriptionEventReject fires when the API refuses a message up front.
	SubscriptionEventReject SubscriptionEvent = "reject"
)

// subscriptionEvents is the closed set of valid values.
var subscriptionEvents = map[SubscriptionEvent]struct{}{
	SubscriptionEventProcessed:   {},
	SubscriptionEventDelivered:   {},
	SubscriptionEventBounce:      {},
	SubscriptionEventOpen:        {},
	SubscriptionEventClick:       {},
	SubscriptionEventSpam:        {},
	SubscriptionEventUnsubscribe: {},
	SubscriptionEventResubscribe: {},
	SubscriptionEventReject:      {},
}

// Valid reports whether e is one of the defined subscription events.
func (e SubscriptionEvent) Valid() bool {
	_, ok := subscriptionEvents[e]
	return ok
}

func (e SubscriptionEvent) String() string {
	return string(e)
}

// ParseSubscriptionEvent maps a wire string to a SubscriptionEvent. Unlike
// callback events, an unrecognized string is an error, never a silent
// default.
func ParseSubscriptionEvent(s string) (SubscriptionEvent, error) {
	e := SubscriptionEvent(s)
	if !e.Valid() {
		return "", fmt.Errorf("unrecognized subscription event %q", s)
	}
	return e, nil
}

// MarshalJSON fails for values outside the closed set; this should be
// unreachable for callers that stick to the defined constants.
func (e SubscriptionEvent) MarshalJSON() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("undefined subscription event %q", string(e))
	}
	return json.Marshal(string(e))
}

// UnmarshalJSON implements strict deserialization.
func (e *SubscriptionEvent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSubscriptionEvent(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// CallbackEvent is an event name received in a webhook callback. This value
// comes from the remote system, whose vocabulary may grow without a client
// upgrade, so the mapping is lossy: anything unrecognized degrades to
// CallbackEventUnknown and never fails.
type CallbackEvent string

const (
	// CallbackEventUnknown is the sentinel for unrecognized event names.
	CallbackEventUnknown CallbackEvent = "unknown"
	// CallbackEventProcessed reports the message was accepted for delivery.
	CallbackEventProcessed CallbackEvent = "processed"
	// CallbackEventDelivered reports delivery to one recipient.
	CallbackEventDelivered CallbackEvent = "delivered"
	// CallbackEventBounce reports a delivery failure for one recipient.
	CallbackEventBounce CallbackEvent = "bounce"
	// CallbackEventOpened reports the message was opened.
	CallbackEventOpened CallbackEvent = "opened"
	// CallbackEventClicked reports a tracked link was followed.
	CallbackEventClicked CallbackEvent = "clicked"
	// CallbackEventUnsubscribed reports the recipient unsubscribed.
	CallbackEventUnsubscribed CallbackEvent = "unsubscribed"
	// CallbackEventSpamComplaint reports the recipient flagged the message as spam.
	CallbackEventSpamComplaint CallbackEvent = "spam_complaint"
)

var callbackEvents = map[CallbackEvent]struct{}{
	CallbackEventProcessed:     {},
	CallbackEventDelivered:     {},
	CallbackEventBounce:        {},
	CallbackEventOpened:        {},
	CallbackEventClicked:       {},
	CallbackEventUnsubscribed:  {},
	CallbackEventSpamComplaint: {},
}

func (e CallbackEvent) String() string {
	return string(e)
}

// ParseCallbackEvent maps a wire string to a CallbackEvent, degrading
// unrecognized values to CallbackEventUnknown.
func ParseCallbackEvent(s string) CallbackEvent {
	e := CallbackEvent(s)
	if _, ok := callbackEvents[e]; !ok {
		return CallbackEventUnknown
	}
	return e
}

// UnmarshalJSON implements lossy deserialization. It only fails when the
// value is not a JSON string at all.
func (e *CallbackEvent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = ParseCallbackEvent(s)
	return nil
}

// BounceClassification distinguishes permanent from transient delivery
// failures on bounce callbacks. Absence of a classification is modeled by a
// nil *BounceClassification, which is distinct from BounceUnknown: absent
// means the event carries no classification, unknown means it carried one
// this client does not recognize.
type BounceClassification string

const (
	// BounceUnknown is the sentinel for unrecognized classifications.
	BounceUnknown BounceClassification = "unknown"
	// BounceHard is a permanent failure; the address should not be retried.
	BounceHard BounceClassification = "hard"
	// BounceSoft is a transient failure such as a full mailbox.
	BounceSoft BounceClassification = "soft"
)

func (b BounceClassification) String() string {
	return string(b)
}

// ParseBounceClassification maps a wire string to a BounceClassification,
// degrading unrecognized values to BounceUnknown.
func ParseBounceClassification(s string) BounceClassification {
	switch BounceClassification(s) {
	case BounceHard:
		return BounceHard
	case BounceSoft:
		return BounceSoft
	}
	return BounceUnknown
}

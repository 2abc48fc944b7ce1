package postwave

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Callback is the payload of an inbound webhook POST from Postwave.
// Receiving and routing the HTTP request is the caller's responsibility;
// this type only models the body.
//
// Except for Event, no field is guaranteed to be present, regardless of
// event type. The documented per-event population (Recipient on delivered
// and bounce, Recipients on processed, Bounce on bounce, ClickURL and Link
// on click) is advisory: real-world payloads are looser than the API's
// documentation, so nothing here is cross-validated and fields are opt-in
// reads, not enforced-absent.
type Callback struct {
	// Event is always present; unrecognized names map to CallbackEventUnknown.
	Event CallbackEvent

	// EmailID correlates callbacks for the same logical email.
	EmailID string

	// Time is when the event occurred; SendTime is when the message was
	// originally submitted.
	Time     *time.Time
	SendTime *time.Time

	// Sender and SourceHost identify the sending side of the exchange.
	Sender     string
	SourceHost string

	// Recipient is the single affected address; delivery and bounce events
	// arrive one callback per recipient. Recipients carries all original
	// addresses and is populated for processed events only.
	Recipient  string
	Recipients []string

	// Bounce is nil when the payload carries no classification.
	Bounce *BounceClassification

	// Context, Host and SMTPResponse are delivery diagnostics.
	Context      string
	Host         string
	SMTPResponse string

	// ClickURL and Link describe click events.
	ClickURL string
	Link     string
}

// MalformedCallbackError indicates the callback body was not well-formed
// JSON. Unlike unknown event names or missing fields, which are tolerated,
// this signals a transport or integration bug.
type MalformedCallbackError struct {
	Err error
}

func (e *MalformedCallbackError) Error() string {
	return fmt.Sprintf("malformed webhook callback: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedCallbackError) Unwrap() error {
	return e.Err
}

// ParseCallback parses an inbound webhook callback body. It never fails on
// a recognized-but-incomplete or forward-compatible payload: unknown event
// names and bounce classifications degrade to their Unknown sentinels,
// absent fields stay zero, unexpected fields are ignored, and unparseable
// timestamps are dropped. The only error is a body that is not a JSON
// object at all.
//
// Two wire dialects are tolerated per field: the current names (rcpt,
// recipients, srchost, time, sendtime) and the legacy names (email,
// recipients_list, hostname, timestamp as unix seconds). Detection is
// presence-based; the dialects are not versions to negotiate.
func ParseCallback(data []byte) (*Callback, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &MalformedCallbackError{Err: err}
	}

	cb := &Callback{Event: CallbackEventUnknown}

	if s, ok := stringField(fields, "event"); ok {
		cb.Event = ParseCallbackEvent(s)
	}
	cb.EmailID, _ = stringField(fields, "email_id")
	cb.Sender, _ = stringField(fields, "sender")
	cb.Context, _ = stringField(fields, "context")
	cb.Host, _ = stringField(fields, "host")
	cb.SMTPResponse, _ = stringField(fields, "message")
	cb.ClickURL, _ = stringField(fields, "click_url")
	cb.Link, _ = stringField(fields, "link")

	cb.Recipient = firstStringField(fields, "rcpt", "email")
	cb.Recipients = firstStringSliceField(fields, "recipients", "recipients_list")
	cb.SourceHost = firstStringField(fields, "srchost", "hostname")

	cb.Time = firstTimeField(fields, "time", "timestamp")
	cb.SendTime = firstTimeField(fields, "sendtime")

	// Tri-state bounce classification: JSON null and an absent key both
	// mean "no classification", which is distinct from BounceUnknown.
	if s, ok := stringField(fields, "bounce"); ok {
		b := ParseBounceClassification(s)
		cb.Bounce = &b
	}

	return cb, nil
}

// stringField extracts a string value. JSON null is treated as absent, not
// as an empty string; unmarshaling null into a string is a silent no-op, so
// the pointer indirection is what makes null detectable.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}

func firstStringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		if s, ok := stringField(fields, key); ok {
			return s
		}
	}
	return ""
}

func firstStringSliceField(fields map[string]json.RawMessage, keys ...string) []string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var values []string
		if err := json.Unmarshal(raw, &values); err != nil || values == nil {
			// A null or mistyped value must not mask the fallback key.
			continue
		}
		return values
	}
	return nil
}

// callbackTimeLayouts are the ISO-8601 shapes observed in real callbacks.
var callbackTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// firstTimeField extracts a timestamp that may be an ISO-8601 string or a
// unix-seconds number, whichever dialect the sender speaks.
func firstTimeField(fields map[string]json.RawMessage, keys ...string) *time.Time {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			for _, layout := range callbackTimeLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return &t
				}
			}
			// A numeric string is tolerated as unix seconds.
			if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
				t := time.Unix(secs, 0).UTC()
				return &t
			}
			continue
		}

		var secs int64
		if err := json.Unmarshal(raw, &secs); err == nil {
			t := time.Unix(secs, 0).UTC()
			return &t
		}
	}
	return nil
}

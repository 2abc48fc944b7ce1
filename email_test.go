package postwave

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func validMessage() *EmailMessage {
	return &EmailMessage{
		FromEmail: "news@example.com",
		FromName:  "Example News",
		Subject:   "Welcome",
		To:        []string{"alice@example.org"},
		BodyHTML:  "<p>hi</p>",
	}
}

func TestEmailMessageValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EmailMessage)
	}{
		{"missing from", func(m *EmailMessage) { m.FromEmail = "" }},
		{"missing subject", func(m *EmailMessage) { m.Subject = "" }},
		{"no recipients", func(m *EmailMessage) { m.To = nil }},
		{"no body", func(m *EmailMessage) { m.BodyHTML = ""; m.BodyText = "" }},
		{"attachment without name", func(m *EmailMessage) {
			m.Attachments = []Attachment{{Content: []byte("x")}}
		}},
		{"attachment without content", func(m *EmailMessage) {
			m.Attachments = []Attachment{{Name: "a.txt"}}
		}},
	}

	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid message reached the server")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validMessage()
			tt.mutate(msg)

			_, err := c.SendEmail(context.Background(), msg)
			if !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("SendEmail = %v, want ErrInvalidMessage", err)
			}
		})
	}

	t.Run("nil message", func(t *testing.T) {
		_, err := c.SendEmail(context.Background(), nil)
		if !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("SendEmail(nil) = %v, want ErrInvalidMessage", err)
		}
	})
}

func TestSendEmailRoundTrip(t *testing.T) {
	var gotBody map[string]any
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/email/send" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"request_id":"r-1","data":{
			"job_id":"job-1",
			"accepted":["alice@example.org"],
			"rejected":{"bob@invalid":"domain does not exist"}
		}}`))
	})

	msg := validMessage()
	msg.To = append(msg.To, "bob@invalid")
	msg.Attachments = []Attachment{{
		Name:        "hello.txt",
		ContentType: "text/plain",
		Content:     []byte("hello"),
	}}
	msg.Metadata = map[string]string{"campaign": "welcome"}

	result, err := c.SendEmail(context.Background(), msg)
	if err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	if result.JobID != "job-1" {
		t.Errorf("JobID = %q", result.JobID)
	}
	if len(result.Accepted) != 1 || result.Accepted[0] != "alice@example.org" {
		t.Errorf("Accepted = %v", result.Accepted)
	}
	if result.Rejected["bob@invalid"] != "domain does not exist" {
		t.Errorf("Rejected = %v", result.Rejected)
	}

	wire, _ := gotBody["message"].(map[string]any)
	if wire["from_email"] != "news@example.com" {
		t.Errorf("wire from_email = %v", wire["from_email"])
	}
	attachments, _ := wire["attachments"].([]any)
	if len(attachments) != 1 {
		t.Fatalf("wire attachments = %v", wire["attachments"])
	}
	att, _ := attachments[0].(map[string]any)
	if att["content"] != "aGVsbG8=" {
		t.Errorf("attachment content = %v, want base64 of %q", att["content"], "hello")
	}
}

func TestSendEmailServerErrorNotRetried(t *testing.T) {
	var calls int
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"request_id":"r-2","error":{"code":"unavailable","message":"down"}}`))
	})

	_, err := c.SendEmail(context.Background(), validMessage())

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
		t.Fatalf("SendEmail = %v, want APIError 503", err)
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want exactly 1: sends must never be retried", calls)
	}
}

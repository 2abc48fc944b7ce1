package postwave

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestDeliveryStatsQueryValidation(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid query reached the server")
	})
	ctx := context.Background()
	now := time.Now()

	if _, err := c.DeliveryStats(ctx, nil); err == nil {
		t.Error("nil query accepted")
	}
	if _, err := c.DeliveryStats(ctx, &StatsQuery{End: now}); err == nil {
		t.Error("query without Start accepted")
	}
	if _, err := c.DeliveryStats(ctx, &StatsQuery{Start: now}); err == nil {
		t.Error("query without End accepted")
	}
	if _, err := c.DeliveryStats(ctx, &StatsQuery{Start: now, End: now.Add(-time.Hour)}); err == nil {
		t.Error("query with End before Start accepted")
	}
}

func TestDeliveryStatsRoundTrip(t *testing.T) {
	var gotBody map[string]any
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/stats/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"request_id":"r-1","data":{
			"start":"2026-08-01T00:00:00Z",
			"end":"2026-08-02T00:00:00Z",
			"processed":1000,
			"delivered":950,
			"hard_bounced":30,
			"soft_bounced":20,
			"opened":400,
			"clicked":120,
			"unsubscribed":5,
			"spam_complaints":2
		}}`))
	})

	start := time.Date(2026, 8, 1, 2, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	end := time.Date(2026, 8, 2, 2, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	stats, err := c.DeliveryStats(context.Background(), &StatsQuery{
		Start: start,
		End:   end,
		JobID: "job-1",
	})
	if err != nil {
		t.Fatalf("DeliveryStats: %v", err)
	}

	// Query times are sent in UTC.
	if gotBody["start"] != "2026-08-01T00:00:00Z" {
		t.Errorf("wire start = %v", gotBody["start"])
	}
	if gotBody["end"] != "2026-08-02T00:00:00Z" {
		t.Errorf("wire end = %v", gotBody["end"])
	}
	if gotBody["job_id"] != "job-1" {
		t.Errorf("wire job_id = %v", gotBody["job_id"])
	}

	if stats.Processed != 1000 || stats.Delivered != 950 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.HardBounced != 30 || stats.SoftBounced != 20 {
		t.Errorf("bounces = %d hard, %d soft", stats.HardBounced, stats.SoftBounced)
	}
	if got := stats.Bounced(); got != 50 {
		t.Errorf("Bounced() = %d, want 50", got)
	}
	if stats.Opened != 400 || stats.Clicked != 120 {
		t.Errorf("engagement = %d opened, %d clicked", stats.Opened, stats.Clicked)
	}
	if stats.Unsubscribed != 5 || stats.SpamComplaints != 2 {
		t.Errorf("list health = %d unsubscribed, %d complaints", stats.Unsubscribed, stats.SpamComplaints)
	}
	if !stats.Start.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", stats.Start)
	}
}

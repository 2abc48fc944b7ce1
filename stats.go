package postwave

import (
	"context"
	"fmt"
	"time"

	"github.com/postwave/client-go/internal/api"
)

// StatsQuery selects the reporting period for a delivery statistics query.
type StatsQuery struct {
	Start time.Time
	End   time.Time
	// JobID optionally narrows the query to a single send job.
	JobID string
}

// DeliveryStats aggregates delivery outcomes over a reporting period.
type DeliveryStats struct {
	Start time.Time
	End   time.Time

	Processed      int64
	Delivered      int64
	HardBounced    int64
	SoftBounced    int64
	Opened         int64
	Clicked        int64
	Unsubscribed   int64
	SpamComplaints int64
}

// Bounced returns the total bounce count across classifications.
func (s *DeliveryStats) Bounced() int64 {
	return s.HardBounced + s.SoftBounced
}

// DeliveryStats returns aggregated delivery statistics for the query
// period.
func (c *Client) DeliveryStats(ctx context.Context, q *StatsQuery) (*DeliveryStats, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("stats query is nil")
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return nil, fmt.Errorf("stats query requires both Start and End")
	}
	if q.End.Before(q.Start) {
		return nil, fmt.Errorf("stats query End precedes Start")
	}

	resp, err := c.apiClient.QueryStats(ctx, &api.StatsRequest{
		Start: q.Start.UTC().Format(time.RFC3339),
		End:   q.End.UTC().Format(time.RFC3339),
		JobID: q.JobID,
	})
	if err != nil {
		return nil, wrapError(err)
	}

	stats := &DeliveryStats{
		Processed:      resp.Processed,
		Delivered:      resp.Delivered,
		HardBounced:    resp.HardBounced,
		SoftBounced:    resp.SoftBounced,
		Opened:         resp.Opened,
		Clicked:        resp.Clicked,
		Unsubscribed:   resp.Unsubscribed,
		SpamComplaints: resp.SpamComplaints,
	}
	if t, err := time.Parse(time.RFC3339, resp.Start); err == nil {
		stats.Start = t
	}
	if t, err := time.Parse(time.RFC3339, resp.End); err == nil {
		stats.End = t
	}
	return stats, nil
}

package retrieval

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ppiankov/claimify/internal/model"
)

// Sent is one request captured by DryRun.
type Sent struct {
	ClaimID string
	Query   string
	Meta    model.DispatchMeta
}

// DryRun accepts every request without contacting a provider. Verdicts must
// be fed back by the caller.
type DryRun struct {
	mu   sync.Mutex
	sent []Sent
	log  zerolog.Logger
}

// NewDryRun creates a dry-run dispatcher.
func NewDryRun(logger zerolog.Logger) *DryRun {
	return &DryRun{log: logger}
}

// Send records the request.
func (d *DryRun) Send(_ context.Context, claimID, query string, meta model.DispatchMeta) error {
	d.mu.Lock()
	d.sent = append(d.sent, Sent{ClaimID: claimID, Query: query, Meta: meta})
	d.mu.Unlock()

	d.log.Info().
		Str("claimId", claimID).
		Str("claimKey", meta.ClaimKey).
		Bool("retry", meta.IsRetry).
		Str("query", query).
		Msg("Dry-run dispatch")
	return nil
}

// Sent returns the captured requests in order.
func (d *DryRun) Sent() []Sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Sent(nil), d.sent...)
}

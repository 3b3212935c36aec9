package pos

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// BatchSubmitter abstracts the inventory service's batch stock-out endpoint.
type BatchSubmitter interface {
	SubmitBatchOut(ctx context.Context, req CommitRequest) (*CommitAck, error)
}

// Submitter states. A commit cycle moves idle -> submitting -> succeeded or
// failed; failed is recoverable by re-invoking Commit.
const (
	SubmitterIdle       = "idle"
	SubmitterSubmitting = "submitting"
	SubmitterSucceeded  = "succeeded"
	SubmitterFailed     = "failed"
)

// Submitter serializes the cart into a batch commit and manages the single
// in-flight submission. The one-commit-at-a-time rule is client-side
// admission control, held as explicit state rather than a UI-disable flag.
type Submitter struct {
	client BatchSubmitter
	repo   *CatalogRepository

	mu        sync.Mutex
	inFlight  bool
	state     string
	requestID string
}

// NewSubmitter creates a submitter. repo may be nil when no catalog refresh
// is wanted after a successful commit.
func NewSubmitter(client BatchSubmitter, repo *CatalogRepository) *Submitter {
	return &Submitter{client: client, repo: repo, state: SubmitterIdle}
}

// State returns the current submitter state.
func (s *Submitter) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return SubmitterSubmitting
	}
	return s.state
}

// ResetRequestID discards the pending request identifier. The controller
// calls this whenever the cart is mutated, so a later commit is treated as
// a new logical transaction rather than a retry.
func (s *Submitter) ResetRequestID() {
	s.mu.Lock()
	s.requestID = ""
	s.mu.Unlock()
}

// BuildCommitRequest snapshots the cart into an immutable batch request.
func BuildCommitRequest(requestID string, cart *Cart) CommitRequest {
	lines := make([]CommitLine, 0, cart.LineCount())
	for _, line := range cart.Lines() {
		lines = append(lines, CommitLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return CommitRequest{RequestID: requestID, Lines: lines}
}

// Commit submits the cart as one atomic batch.
//
// An empty cart fails with ErrEmptyCart without contacting the service. A
// second call while one is outstanding fails with ErrAlreadyInFlight and
// does not disturb the first. On success the cart is cleared and the
// catalog repository is refreshed so later matches reflect the new
// quantities. On failure the cart is left untouched for correction and
// retry; no automatic retry happens.
//
// The request identifier is generated when a commit cycle starts and
// reused on retries until a commit succeeds, so the service can recognize
// a re-sent batch whose ack was lost.
func (s *Submitter) Commit(ctx context.Context, cart *Cart) (*CommitAck, error) {
	if cart.LineCount() == 0 {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrAlreadyInFlight
	}
	s.inFlight = true
	if s.requestID == "" {
		s.requestID = uuid.NewString()
	}
	req := BuildCommitRequest(s.requestID, cart)
	s.mu.Unlock()

	ack, err := s.client.SubmitBatchOut(ctx, req)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.state = SubmitterFailed
		s.mu.Unlock()
		return nil, err
	}
	s.state = SubmitterSucceeded
	s.requestID = ""
	s.mu.Unlock()

	// The refresh runs outside the lock so State and queued commits are not
	// held up by a slow catalog fetch. Refresh failures keep the previous
	// snapshot readable; the commit itself already succeeded, so the stale
	// catalog is not an error.
	cart.Clear()
	if s.repo != nil {
		_ = s.repo.Load(ctx)
	}
	return ack, nil
}

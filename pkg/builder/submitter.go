package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Broadcaster is the RPC submission endpoint this package consumes to
// send a signed transaction and learn its on-chain result. It is kept
// separate from Signer; Submit signs once and broadcasts once, with no
// retry.
type Broadcaster interface {
	Broadcast(ctx context.Context, signed []byte) (*ChainResult, error)
}

// ErrAlreadyExecuted is returned by a Broadcaster when the chain
// reports the transaction digest has already landed.
var ErrAlreadyExecuted = errors.New("builder: transaction already executed")

// ChainResult is the raw outcome a Broadcaster reports for a landed
// transaction, before translation into types.SubmissionOutcome.
type ChainResult struct {
	Digest         string
	Success        bool
	RealizedProfit int64 // signed, smallest-denomination units; negative on a loss
	GasCost        int64
	FailureReason  string
}

// Submitter implements interfaces.Submitter over a Signer and
// Broadcaster pair, tolerating an already-executed response as
// idempotent success rather than an error.
type Submitter struct {
	signer      interfaces.Signer
	broadcaster Broadcaster
}

var _ interfaces.Submitter = (*Submitter)(nil)

func NewSubmitter(signer interfaces.Signer, broadcaster Broadcaster) *Submitter {
	return &Submitter{signer: signer, broadcaster: broadcaster}
}

// Submit signs tx and broadcasts it, translating the result (or an
// already-executed response) into a SubmissionOutcome.
func (s *Submitter) Submit(ctx context.Context, tx *types.CandidateTransaction) (*types.SubmissionOutcome, error) {
	signed, err := s.signer.Sign(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("builder: sign: %w", err)
	}

	result, err := s.broadcaster.Broadcast(ctx, signed)
	if errors.Is(err, ErrAlreadyExecuted) {
		return &types.SubmissionOutcome{
			AlreadyExecuted: true,
			Success:         true,
			SubmittedAt:     time.Now(),
		}, nil
	}
	if err != nil {
		return &types.SubmissionOutcome{
			Success:     false,
			Error:       err,
			SubmittedAt: time.Now(),
		}, nil
	}

	outcome := &types.SubmissionOutcome{
		Digest:         result.Digest,
		Success:        result.Success,
		RealizedProfit: bigFromInt64(result.RealizedProfit),
		GasCost:        bigFromInt64(result.GasCost),
		SubmittedAt:    time.Now(),
	}
	if !result.Success && result.FailureReason != "" {
		outcome.Error = errors.New(result.FailureReason)
	}
	return outcome, nil
}

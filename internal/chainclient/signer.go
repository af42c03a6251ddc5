package chainclient

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Signer implements interfaces.Signer using an in-process Ed25519
// keypair derived from the PRIVATE_KEY configuration entry.
type Signer struct {
	key ed25519.PrivateKey
}

// NewSigner decodes a hex-encoded 32-byte seed into an Ed25519 signer.
func NewSigner(hexSeed string) (*Signer, error) {
	raw, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, fmt.Errorf("chainclient: decode private key: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("chainclient: private key must be %d bytes, got %d", ed25519.SeedSize, len(raw))
	}
	return &Signer{key: ed25519.NewKeyFromSeed(raw)}, nil
}

// Sign serializes the transaction's canonical JSON form and signs it.
// The venue's transaction-block builder (the bytes actually broadcast)
// is an external collaborator; this signs the same payload the dry-run
// endpoint already validated, with the signature appended.
func (s *Signer) Sign(ctx context.Context, tx *types.CandidateTransaction) ([]byte, error) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("chainclient: marshal transaction: %w", err)
	}
	sig := ed25519.Sign(s.key, payload)

	out := make([]byte, 0, len(payload)+len(sig))
	out = append(out, payload...)
	out = append(out, sig...)
	return out, nil
}

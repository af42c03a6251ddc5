// Package chainclient wraps the venue's JSON-RPC endpoint, providing
// the pool-read, dry-run simulation, and broadcast primitives that the
// collector, builder, and submitter packages consume as interfaces.
// Grounded on the teacher's ethclient-backed RPC wrapping in
// pkg/simulation/anvil_fork.go, generalized from go-ethereum's
// Ethereum-specific *ethclient.Client to its venue-agnostic
// *rpc.Client: this chain's capability-object and entry-function
// semantics have no go-ethereum typed binding, but its JSON-RPC 2.0
// wire format is the same one go-ethereum/rpc speaks to any node.
package chainclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/mev-engine/atomic-arb-engine/pkg/builder"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Client is a thin wrapper over a node's JSON-RPC endpoint.
type Client struct {
	rpc *gethrpc.Client
}

// Dial connects to the node at url. url may be an http(s):// or
// ws(s):// endpoint; gethrpc.DialContext selects the transport.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("chainclient: dial %s: %w", url, err)
	}
	return &Client{rpc: c}, nil
}

func (c *Client) Close() { c.rpc.Close() }

type dryRunResponse struct {
	Success         bool   `json:"success"`
	ComputationCost string `json:"computationCost"`
	StorageCost     string `json:"storageCost"`
	StorageRebate   string `json:"storageRebate"`
	ActualAmountOut string `json:"actualAmountOut"`
	FailureReason   string `json:"failureReason"`
}

// DryRun implements interfaces.SimulationClient over the node's
// transaction-simulation RPC method.
func (c *Client) DryRun(ctx context.Context, tx *types.CandidateTransaction) (*types.DryRunResult, error) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("chainclient: marshal candidate transaction: %w", err)
	}

	var resp dryRunResponse
	if err := c.rpc.CallContext(ctx, &resp, "arb_dryRunTransaction", json.RawMessage(payload)); err != nil {
		return nil, fmt.Errorf("chainclient: dry run: %w", err)
	}

	return &types.DryRunResult{
		Success:         resp.Success,
		ComputationCost: parseBig(resp.ComputationCost),
		StorageCost:     parseBig(resp.StorageCost),
		StorageRebate:   parseBig(resp.StorageRebate),
		ActualAmountOut: parseBig(resp.ActualAmountOut),
		FailureReason:   resp.FailureReason,
	}, nil
}

type broadcastResponse struct {
	Digest          string `json:"digest"`
	Success         bool   `json:"success"`
	RealizedProfit  int64  `json:"realizedProfit"`
	GasCost         int64  `json:"gasCost"`
	FailureReason   string `json:"failureReason"`
	AlreadyExecuted bool   `json:"alreadyExecuted"`
}

// Broadcast implements builder.Broadcaster over the node's
// transaction-submission RPC method.
func (c *Client) Broadcast(ctx context.Context, signed []byte) (*builder.ChainResult, error) {
	var resp broadcastResponse
	if err := c.rpc.CallContext(ctx, &resp, "arb_submitTransaction", signed); err != nil {
		return nil, fmt.Errorf("chainclient: broadcast: %w", err)
	}
	if resp.AlreadyExecuted {
		return nil, builder.ErrAlreadyExecuted
	}
	return &builder.ChainResult{
		Digest:         resp.Digest,
		Success:        resp.Success,
		RealizedProfit: resp.RealizedProfit,
		GasCost:        resp.GasCost,
		FailureReason:  resp.FailureReason,
	}, nil
}

// ReadPool implements processing.PoolReader, fetching one pool's raw
// on-chain object for the collector's parsers to decode.
func (c *Client) ReadPool(ctx context.Context, key types.PoolKey) (raw []byte, err error) {
	var resp json.RawMessage
	if err := c.rpc.CallContext(ctx, &resp, "arb_getObject", string(key.Pool)); err != nil {
		return nil, fmt.Errorf("chainclient: read pool %s: %w", key, err)
	}
	return resp, nil
}

// Balance queries the operator wallet's native gas balance, consumed
// by the gas monitor's refresh poller.
func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	var resp string
	if err := c.rpc.CallContext(ctx, &resp, "arb_getBalance", address); err != nil {
		return nil, fmt.Errorf("chainclient: balance: %w", err)
	}
	return parseBig(resp), nil
}

func parseBig(s string) *big.Int {
	if s == "" {
		return big.NewInt(0)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

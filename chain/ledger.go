// Package chain is the ledger transport used by every other component:
// account reads, receipts, and transaction submission.
package chain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrTransportUnavailable = errors.New("ledger transport unavailable")
	ErrAccountNotFound      = errors.New("account not found")
	ErrReceiptNotFound      = errors.New("receipt not found")
)

// Ledger is the subset of the network RPC the orchestration layer consumes.
type Ledger interface {
	// AccountData returns the raw data held at address, or ErrAccountNotFound.
	AccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
	// Receipt returns the confirmed receipt of sig, or ErrReceiptNotFound
	// while the node has not indexed it yet.
	Receipt(ctx context.Context, sig solana.Signature) (*Receipt, error)
	// Submit signs instructions with payer (fee payer) and any extra
	// signers, sends the transaction and waits until it is confirmed.
	Submit(ctx context.Context, payer solana.PrivateKey, instructions []solana.Instruction, signers ...solana.PrivateKey) (solana.Signature, error)
	Slot(ctx context.Context) (uint64, error)
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
}

package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"

	"github.com/ori-shem-tov/scratchcard/tools"
)

// legacy and v0 transactions
var maxSupportedTransactionVersion uint64

// RPCLedger is a Ledger backed by a JSON-RPC node.
type RPCLedger struct {
	Client           *rpc.Client
	Commitment       rpc.CommitmentType // read and confirmation level
	Confirm          tools.RetryPolicy  // how long to wait for a signature to confirm
	ComputeUnitLimit uint32             // prepended as a compute budget instruction when > 0
	SkipPreflight    bool
}

func NewRPCLedger(client *rpc.Client, commitment rpc.CommitmentType) *RPCLedger {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &RPCLedger{
		Client:     client,
		Commitment: commitment,
		Confirm:    tools.RetryPolicy{InitialWait: 500 * time.Millisecond, Multiplier: 1.5, MaxWait: 4 * time.Second, Deadline: 90 * time.Second},
	}
}

func (l *RPCLedger) client() (*rpc.Client, error) {
	if l == nil || l.Client == nil {
		return nil, ErrTransportUnavailable
	}
	return l.Client, nil
}

func (l *RPCLedger) AccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	client, err := l.client()
	if err != nil {
		return nil, err
	}
	out, err := client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: l.Commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed getting account %s: %w", address, err)
	}
	return out.GetBinary(), nil
}

func (l *RPCLedger) Receipt(ctx context.Context, sig solana.Signature) (*Receipt, error) {
	client, err := l.client()
	if err != nil {
		return nil, err
	}
	res, err := client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     l.Commitment,
		MaxSupportedTransactionVersion: &maxSupportedTransactionVersion,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, sig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed getting transaction %s: %w", sig, err)
	}
	return receiptFromResult(sig, res)
}

func (l *RPCLedger) Slot(ctx context.Context) (uint64, error) {
	client, err := l.client()
	if err != nil {
		return 0, err
	}
	return client.GetSlot(ctx, l.Commitment)
}

func (l *RPCLedger) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	client, err := l.client()
	if err != nil {
		return 0, err
	}
	return client.GetMinimumBalanceForRentExemption(ctx, size, l.Commitment)
}

func (l *RPCLedger) Submit(ctx context.Context, payer solana.PrivateKey, instructions []solana.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	client, err := l.client()
	if err != nil {
		return solana.Signature{}, err
	}

	if l.ComputeUnitLimit > 0 {
		instructions = append([]solana.Instruction{
			computebudget.NewSetComputeUnitLimitInstruction(l.ComputeUnitLimit).Build(),
		}, instructions...)
	}

	recent, err := client.GetLatestBlockhash(ctx, l.Commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed building transaction: %w", err)
	}

	keys := append([]solana.PrivateKey{payer}, signers...)
	if _, err := tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		for i := range keys {
			if keys[i].PublicKey().Equals(pk) {
				return &keys[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed signing transaction: %w", err)
	}

	sig, err := client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       l.SkipPreflight,
		PreflightCommitment: l.Commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed sending transaction: %w", err)
	}
	log.Infof("Sent transaction %s", sig)

	return sig, l.waitForTx(ctx, client, sig)
}

// waitForTx polls the signature status until it reaches the ledger's
// commitment or the confirm policy gives up.
func (l *RPCLedger) waitForTx(ctx context.Context, client *rpc.Client, sig solana.Signature) error {
	var failed error
	err := l.Confirm.Do(ctx,
		func() error {
			out, err := client.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				return err
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				return fmt.Errorf("still pending: %s", sig)
			}
			status := out.Value[0]
			if status.Err != nil {
				failed = fmt.Errorf("transaction %s failed: %v", sig, status.Err)
				return nil
			}
			if !reached(status.ConfirmationStatus, l.Commitment) {
				return fmt.Errorf("still pending %s: %s", sig, status.ConfirmationStatus)
			}
			return nil
		},
		func(err error) {
			log.Debugf("%v, trying again...", err)
		},
	)
	if err != nil {
		return fmt.Errorf("failed while waiting for %s to be confirmed: %w", sig, err)
	}
	return failed
}

func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return want != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return want == rpc.CommitmentProcessed
	}
	return false
}

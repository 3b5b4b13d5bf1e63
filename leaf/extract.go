// Package leaf recovers the compressed-asset leaf minted by a transaction
// from its receipt.
package leaf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/tools"
)

// Strategy picks the leaf event payload out of the first inner group.
type Strategy interface {
	Locate(group chain.InnerGroup, participantPreexisted bool) ([]byte, error)
}

// ByPosition reads the invocation at index 2 when the participant account
// already existed and index 3 when the mint also created it.
type ByPosition struct{}

func (ByPosition) Locate(group chain.InnerGroup, participantPreexisted bool) ([]byte, error) {
	idx := 3
	if participantPreexisted {
		idx = 2
	}
	if idx >= len(group.Invocations) {
		return nil, fmt.Errorf("%w: %d inner invocations, want index %d", ErrMalformedReceipt, len(group.Invocations), idx)
	}
	return group.Invocations[idx].Data, nil
}

// ByDiscriminator scans for the invocation whose payload carries the
// leaf-schema event framing, regardless of its position. When LogWrapper is
// set only invocations of that program are considered.
type ByDiscriminator struct {
	LogWrapper solana.PublicKey
}

func (s ByDiscriminator) Locate(group chain.InnerGroup, _ bool) ([]byte, error) {
	for _, inv := range group.Invocations {
		if !s.LogWrapper.IsZero() && !inv.ProgramID.Equals(s.LogWrapper) {
			continue
		}
		if isLeafEvent(inv.Data) {
			return inv.Data, nil
		}
	}
	return nil, fmt.Errorf("%w: no leaf event among %d inner invocations", ErrMalformedReceipt, len(group.Invocations))
}

type Extractor struct {
	Ledger   chain.Ledger
	Strategy Strategy
	Retry    tools.RetryPolicy // applied while the receipt is not indexed yet
}

func NewExtractor(ledger chain.Ledger, strategy Strategy) *Extractor {
	if strategy == nil {
		strategy = ByDiscriminator{}
	}
	return &Extractor{
		Ledger:   ledger,
		Strategy: strategy,
		Retry:    tools.Exponential(500*time.Millisecond, 6),
	}
}

// Extract fetches the receipt of sig and decodes the leaf it minted.
func (e *Extractor) Extract(ctx context.Context, sig solana.Signature, participantPreexisted bool) (Schema, error) {
	var receipt *chain.Receipt
	err := e.Retry.DoIf(ctx,
		func(err error) bool { return errors.Is(err, chain.ErrReceiptNotFound) },
		func() error {
			var err error
			receipt, err = e.Ledger.Receipt(ctx, sig)
			return err
		},
		func(err error) {
			log.Debugf("receipt %s not indexed yet, trying again...: %v", sig, err)
		},
	)
	if errors.Is(err, tools.ErrRetriesExhausted) {
		return Schema{}, fmt.Errorf("%w: %s", chain.ErrReceiptNotFound, sig)
	}
	if err != nil {
		return Schema{}, err
	}
	return FromReceipt(receipt, e.Strategy, participantPreexisted)
}

// FromReceipt decodes the leaf from an already fetched receipt.
func FromReceipt(receipt *chain.Receipt, strategy Strategy, participantPreexisted bool) (Schema, error) {
	if receipt == nil || len(receipt.Inner) == 0 {
		return Schema{}, fmt.Errorf("%w: no inner instructions", ErrMalformedReceipt)
	}
	payload, err := strategy.Locate(receipt.Inner[0], participantPreexisted)
	if err != nil {
		return Schema{}, err
	}
	if len(payload) < PrefixSize {
		return Schema{}, fmt.Errorf("%w: payload of %d bytes", ErrMalformedReceipt, len(payload))
	}
	schema, err := Decode(payload[PrefixSize:])
	if err != nil {
		return Schema{}, err
	}
	log.Debugf("leaf %s nonce %d in %s", schema.ID, schema.Nonce, receipt.Signature)
	return schema, nil
}

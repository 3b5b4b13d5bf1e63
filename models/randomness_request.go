package models

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrInvalidTransition = errors.New("invalid randomness request transition")

type RequestState int

const (
	Created RequestState = iota
	Committed
	Revealed
	Abandoned
)

func (s RequestState) String() string {
	switch s {
	case Created:
		return "created"
	case Committed:
		return "committed"
	case Revealed:
		return "revealed"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// RandomnessRequest tracks one oracle randomness account through the
// commit/reveal protocol. The account key is freshly generated per request.
type RandomnessRequest struct {
	Key        solana.PrivateKey // signer of the randomness account creation
	Account    solana.PublicKey  // randomness account address
	Queue      solana.PublicKey  // oracle queue the account is bound to
	Payer      solana.PublicKey  // who paid the account rent
	CommitSlot uint64            // slot observed when the commit landed
	CommitSig  solana.Signature
	RevealSig  solana.Signature
	State      RequestState
	Reason     error // set when abandoned
}

func NewRandomnessRequest(key solana.PrivateKey, queue, payer solana.PublicKey) *RandomnessRequest {
	return &RandomnessRequest{
		Key:     key,
		Account: key.PublicKey(),
		Queue:   queue,
		Payer:   payer,
		State:   Created,
	}
}

func (r *RandomnessRequest) MarkCommitted(sig solana.Signature, slot uint64) error {
	if r.State != Created {
		return r.invalid(Committed)
	}
	r.CommitSig = sig
	r.CommitSlot = slot
	r.State = Committed
	return nil
}

func (r *RandomnessRequest) MarkRevealed(sig solana.Signature) error {
	if r.State != Committed {
		return r.invalid(Revealed)
	}
	r.RevealSig = sig
	r.State = Revealed
	return nil
}

func (r *RandomnessRequest) MarkAbandoned(reason error) error {
	if r.State != Created && r.State != Committed {
		return r.invalid(Abandoned)
	}
	r.Reason = reason
	r.State = Abandoned
	return nil
}

func (r *RandomnessRequest) invalid(to RequestState) error {
	return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, r.State, to, r.Account)
}

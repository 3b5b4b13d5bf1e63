// Package referral resolves which inviter a mint binds for a participant.
// The first non-default binding wins; the program enforces the same rule,
// so racing mints are settled by whichever transaction lands first.
package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/pda"
	"github.com/ori-shem-tov/scratchcard/program"
)

type Resolver struct {
	Ledger  chain.Ledger
	Deriver pda.Deriver
}

func NewResolver(ledger chain.Ledger, deriver pda.Deriver) *Resolver {
	return &Resolver{Ledger: ledger, Deriver: deriver}
}

// Resolution is the outcome for one participant.
type Resolution struct {
	Inviter     solana.PublicKey // zero key means no inviter
	Preexisted  bool             // whether the participant state already existed
	Participant *program.PlayerConfig
}

// Resolve returns the effective inviter: a previously bound inviter wins over
// supplied, otherwise supplied is used as is.
func (r *Resolver) Resolve(ctx context.Context, participant, supplied solana.PublicKey) (Resolution, error) {
	addr := r.Deriver.Participant(participant).Key
	data, err := r.Ledger.AccountData(ctx, addr)
	if err != nil {
		// absence and read failures alike fall back to the supplied inviter
		log.Debugf("participant %s has no readable state (%v), using supplied inviter %s", participant, err, supplied)
		return Resolution{Inviter: supplied}, nil
	}

	state, err := program.DecodePlayerConfig(data)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to decode participant state %s: %w", addr, err)
	}
	res := Resolution{Inviter: supplied, Preexisted: true, Participant: &state}
	if !state.Inviter.IsZero() {
		if !supplied.IsZero() && !supplied.Equals(state.Inviter) {
			log.Infof("participant %s already bound to %s, ignoring %s", participant, state.Inviter, supplied)
		}
		res.Inviter = state.Inviter
	}
	return res, nil
}

// InviterAccount is the relationship account passed to the program for inviter.
func (r *Resolver) InviterAccount(inviter solana.PublicKey) solana.PublicKey {
	if inviter.IsZero() {
		return r.Deriver.DefaultRelationship().Key
	}
	return r.Deriver.Participant(inviter).Key
}

var ErrSelfInvite = errors.New("participant cannot invite itself")

// Validate rejects bindings the program would refuse anyway.
func Validate(participant, inviter solana.PublicKey) error {
	if !inviter.IsZero() && inviter.Equals(participant) {
		return fmt.Errorf("%w: %s", ErrSelfInvite, participant)
	}
	return nil
}

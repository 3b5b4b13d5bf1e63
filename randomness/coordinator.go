package randomness

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/models"
)

// Coordinator drives one request per resolve: Commit in a first
// transaction, then Reveal bundled with the instructions that consume the
// value in a second one.
type Coordinator struct {
	Ledger  chain.Ledger
	Oracle  Oracle
	Tracker *Tracker
}

func NewCoordinator(ledger chain.Ledger, oracle Oracle, tracker *Tracker) *Coordinator {
	return &Coordinator{Ledger: ledger, Oracle: oracle, Tracker: tracker}
}

// Commit creates a fresh request account and commits it to the queue.
// Submission failures are returned as is; nothing exists on chain then.
func (c *Coordinator) Commit(ctx context.Context, payer solana.PrivateKey) (*models.RandomnessRequest, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate randomness key: %w", err)
	}
	req := models.NewRandomnessRequest(key, c.Oracle.Queue(), payer.PublicKey())

	ixs, err := c.Oracle.Init(ctx, req.Account, req.Payer)
	if err != nil {
		return nil, fmt.Errorf("failed to build randomness init: %w", err)
	}
	commit, err := c.Oracle.Commit(ctx, req.Account, req.Payer)
	if err != nil {
		return nil, fmt.Errorf("failed to build randomness commit: %w", err)
	}
	ixs = append(ixs, commit)

	sig, err := c.Ledger.Submit(ctx, payer, ixs, key)
	if err != nil {
		if markErr := req.MarkAbandoned(err); markErr != nil {
			log.Warnf("%v", markErr)
		}
		return nil, fmt.Errorf("failed to commit randomness %s: %w", req.Account, err)
	}

	slot, err := c.Ledger.Slot(ctx)
	if err != nil {
		// the account exists and must eventually be closed
		c.abandon(req, err)
		return nil, fmt.Errorf("failed to read commit slot: %w", err)
	}
	if err := req.MarkCommitted(sig, slot); err != nil {
		return nil, err
	}
	log.Infof("committed randomness %s at slot %d (%s)", req.Account, slot, sig)
	return req, nil
}

// Reveal submits the oracle reveal followed by apply in one transaction
// signed by payer. On failure the request is abandoned and tracked.
func (c *Coordinator) Reveal(ctx context.Context, req *models.RandomnessRequest, payer solana.PrivateKey, apply ...solana.Instruction) (solana.Signature, error) {
	if req.State != models.Committed {
		return solana.Signature{}, fmt.Errorf("%w: reveal of %s request %s", models.ErrInvalidTransition, req.State, req.Account)
	}

	reveal, err := c.Oracle.Reveal(ctx, req.Account, payer.PublicKey())
	if err != nil {
		c.abandon(req, err)
		return solana.Signature{}, fmt.Errorf("failed to build randomness reveal: %w", err)
	}

	ixs := append([]solana.Instruction{reveal}, apply...)
	sig, err := c.Ledger.Submit(ctx, payer, ixs)
	if err != nil {
		c.abandon(req, err)
		return solana.Signature{}, fmt.Errorf("failed to reveal randomness %s: %w", req.Account, err)
	}
	if err := req.MarkRevealed(sig); err != nil {
		return sig, err
	}
	log.Infof("revealed randomness %s (%s)", req.Account, sig)
	return sig, nil
}

func (c *Coordinator) abandon(req *models.RandomnessRequest, reason error) {
	if err := req.MarkAbandoned(reason); err != nil {
		log.Warnf("%v", err)
		return
	}
	log.Warnf("abandoned randomness %s: %v", req.Account, reason)
	if c.Tracker != nil {
		c.Tracker.Track(req)
	}
}

// Sweep closes the tracked requests of payer that are old enough, returning
// how many were closed. Requests that fail to close are tracked again.
func (c *Coordinator) Sweep(ctx context.Context, payer solana.PrivateKey) (int, error) {
	if c.Tracker == nil {
		return 0, nil
	}
	slot, err := c.Ledger.Slot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read current slot: %w", err)
	}

	closed := 0
	var firstErr error
	for _, req := range c.Tracker.expired(slot, payer.PublicKey()) {
		ix, err := c.Oracle.Close(ctx, req.Account, req.Payer, payer.PublicKey())
		if err == nil {
			_, err = c.Ledger.Submit(ctx, payer, []solana.Instruction{ix})
		}
		if err != nil {
			log.Warnf("failed closing randomness %s: %v", req.Account, err)
			c.Tracker.Track(req)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		closed++
		log.Infof("closed abandoned randomness %s", req.Account)
	}
	return closed, firstErr
}

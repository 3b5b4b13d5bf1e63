package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/pda"
	"github.com/ori-shem-tov/scratchcard/tools"
)

var ErrIndexingTimeout = errors.New("tree config not observable in time")

// DefaultPollPolicy probes every 5 seconds for up to 10 minutes.
var DefaultPollPolicy = tools.RetryPolicy{
	InitialWait: 5 * time.Second,
	Multiplier:  1,
	Deadline:    10 * time.Minute,
}

// Poller waits for freshly provisioned trees to become observable.
type Poller struct {
	Ledger chain.Ledger
	Policy tools.RetryPolicy
}

func NewPoller(ledger chain.Ledger, policy tools.RetryPolicy) *Poller {
	return &Poller{Ledger: ledger, Policy: policy}
}

// AwaitTreeReady returns the tree config of tree once it can be fetched and
// decoded. Every failure in between counts as not ready yet. A policy with
// neither attempts nor deadline polls until ctx is done.
func (p *Poller) AwaitTreeReady(ctx context.Context, tree solana.PublicKey) (TreeConfig, error) {
	address := pda.TreeConfig(tree).Key
	start := time.Now()

	var config TreeConfig
	attempts := 0
	err := p.Policy.Do(ctx,
		func() error {
			attempts++
			data, err := p.Ledger.AccountData(ctx, address)
			if err != nil {
				return err
			}
			config, err = DecodeTreeConfig(data)
			return err
		},
		func(err error) {
			pollAttempts.WithLabelValues("not_ready").Inc()
			log.Debugf("tree %s not ready yet (attempt %d): %v", tree, attempts, err)
		},
	)
	if err != nil {
		if errors.Is(err, tools.ErrRetriesExhausted) {
			return TreeConfig{}, fmt.Errorf("%w: tree %s after %v: %w", ErrIndexingTimeout, tree, time.Since(start).Round(time.Millisecond), err)
		}
		return TreeConfig{}, err
	}

	pollAttempts.WithLabelValues("ready").Inc()
	log.Infof("tree %s ready after %d attempts (capacity %d)", tree, attempts, config.TotalMintCapacity)
	return config, nil
}

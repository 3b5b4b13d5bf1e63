package models

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest() *RandomnessRequest {
	return NewRandomnessRequest(solana.NewWallet().PrivateKey, solana.PublicKey{}, solana.PublicKey{})
}

func TestRequestHappyPath(t *testing.T) {
	r := newRequest()
	assert.Equal(t, Created, r.State)
	assert.Equal(t, r.Key.PublicKey(), r.Account)

	require.NoError(t, r.MarkCommitted(solana.Signature{1}, 42))
	assert.Equal(t, Committed, r.State)
	assert.Equal(t, uint64(42), r.CommitSlot)

	require.NoError(t, r.MarkRevealed(solana.Signature{2}))
	assert.Equal(t, Revealed, r.State)
	assert.Equal(t, solana.Signature{2}, r.RevealSig)
}

func TestRequestAbandon(t *testing.T) {
	reason := errors.New("reveal failed")

	r := newRequest()
	require.NoError(t, r.MarkAbandoned(reason))
	assert.Equal(t, Abandoned, r.State)
	assert.Equal(t, reason, r.Reason)

	r = newRequest()
	require.NoError(t, r.MarkCommitted(solana.Signature{}, 1))
	require.NoError(t, r.MarkAbandoned(reason))
	assert.Equal(t, Abandoned, r.State)
}

func TestRequestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *RandomnessRequest)
		step  func(r *RandomnessRequest) error
	}{
		{"reveal before commit", func(*RandomnessRequest) {},
			func(r *RandomnessRequest) error { return r.MarkRevealed(solana.Signature{}) }},
		{"commit twice", func(r *RandomnessRequest) { _ = r.MarkCommitted(solana.Signature{}, 1) },
			func(r *RandomnessRequest) error { return r.MarkCommitted(solana.Signature{}, 2) }},
		{"abandon revealed", func(r *RandomnessRequest) {
			_ = r.MarkCommitted(solana.Signature{}, 1)
			_ = r.MarkRevealed(solana.Signature{})
		}, func(r *RandomnessRequest) error { return r.MarkAbandoned(nil) }},
		{"commit abandoned", func(r *RandomnessRequest) { _ = r.MarkAbandoned(nil) },
			func(r *RandomnessRequest) error { return r.MarkCommitted(solana.Signature{}, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRequest()
			tt.setup(r)
			before := r.State
			err := tt.step(r)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, before, r.State, "state must not change")
		})
	}
}

func TestRequestStateString(t *testing.T) {
	assert.Equal(t, "committed", Committed.String())
	assert.Equal(t, "unknown(9)", RequestState(9).String())
}

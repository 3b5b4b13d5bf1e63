package referral

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/mocks"
	"github.com/ori-shem-tov/scratchcard/pda"
	"github.com/ori-shem-tov/scratchcard/program"
)

var deriver = pda.New(solana.MustPublicKeyFromBase58("4MCQd9mh5sXM6Sb79ZT4HbzQtNgWJo1KgnVRZH6hoDX7"))

func participantState(t *testing.T, player, inviter solana.PublicKey) []byte {
	b, err := program.PlayerConfig{Player: player, Inviter: inviter, Credits: 1}.Marshal()
	require.NoError(t, err)
	return b
}

func TestResolve(t *testing.T) {
	player := solana.NewWallet().PublicKey()
	r1 := solana.NewWallet().PublicKey()
	r2 := solana.NewWallet().PublicKey()

	tests := []struct {
		name       string
		stored     []byte
		readErr    error
		supplied   solana.PublicKey
		want       solana.PublicKey
		preexisted bool
	}{
		{"bound inviter wins over a new one", participantState(t, player, r1), nil, r2, r1, true},
		{"bound inviter wins over none", participantState(t, player, r1), nil, solana.PublicKey{}, r1, true},
		{"unbound state takes supplied", participantState(t, player, solana.PublicKey{}), nil, r2, r2, true},
		{"new participant takes supplied", nil, chain.ErrAccountNotFound, r2, r2, false},
		{"new participant without inviter", nil, chain.ErrAccountNotFound, solana.PublicKey{}, solana.PublicKey{}, false},
		{"read failure reads as absent", nil, chain.ErrTransportUnavailable, r2, r2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			ledger := mocks.NewMockLedger(ctl)
			ledger.EXPECT().AccountData(gomock.Any(), deriver.Participant(player).Key).Return(tt.stored, tt.readErr).Times(1)

			res, err := NewResolver(ledger, deriver).Resolve(context.Background(), player, tt.supplied)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Inviter, "wrong effective inviter")
			assert.Equal(t, tt.preexisted, res.Preexisted)
			assert.Equal(t, tt.preexisted, res.Participant != nil)
		})
	}
}

func TestResolveCorruptState(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ledger := mocks.NewMockLedger(ctl)
	ledger.EXPECT().AccountData(gomock.Any(), gomock.Any()).Return([]byte{1, 2, 3}, nil).Times(1)

	_, err := NewResolver(ledger, deriver).Resolve(context.Background(), solana.NewWallet().PublicKey(), solana.PublicKey{})
	assert.Error(t, err)
}

func TestInviterAccount(t *testing.T) {
	r := NewResolver(nil, deriver)
	inviter := solana.NewWallet().PublicKey()

	assert.Equal(t, deriver.DefaultRelationship().Key, r.InviterAccount(solana.PublicKey{}))
	assert.Equal(t, deriver.Participant(inviter).Key, r.InviterAccount(inviter))
}

func TestValidate(t *testing.T) {
	p := solana.NewWallet().PublicKey()
	assert.ErrorIs(t, Validate(p, p), ErrSelfInvite)
	assert.NoError(t, Validate(p, solana.PublicKey{}))
	assert.NoError(t, Validate(p, solana.NewWallet().PublicKey()))
}

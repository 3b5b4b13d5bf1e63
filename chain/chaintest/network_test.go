package chaintest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/program"
)

func createAccount(t *testing.T, payer, account solana.PublicKey) solana.Instruction {
	ix, err := system.NewCreateAccountInstruction(1, 16, program.CompressionProgramID, payer, account).ValidateAndBuild()
	require.NoError(t, err)
	return ix
}

func TestSubmitRequiresSigners(t *testing.T) {
	n := New(solana.NewWallet().PublicKey(), program.SwitchboardDevnetProgramID)
	payer := solana.NewWallet().PrivateKey
	account := solana.NewWallet().PrivateKey
	ctx := context.Background()

	_, err := n.Submit(ctx, payer, []solana.Instruction{createAccount(t, payer.PublicKey(), account.PublicKey())})
	assert.ErrorIs(t, err, ErrMissingSignature)
	assert.False(t, chain.Exists(ctx, n, account.PublicKey()))

	sig, err := n.Submit(ctx, payer, []solana.Instruction{createAccount(t, payer.PublicKey(), account.PublicKey())}, account)
	require.NoError(t, err)
	data, err := n.AccountData(ctx, account.PublicKey())
	require.NoError(t, err)
	assert.Len(t, data, 16)
	assert.Equal(t, 2, n.Submitted())

	slot, err := n.Slot(ctx)
	require.NoError(t, err)
	receipt, err := n.Receipt(ctx, sig)
	require.NoError(t, err)
	assert.Equal(t, slot, receipt.Slot)
}

func TestSubmitIsAtomic(t *testing.T) {
	n := New(solana.NewWallet().PublicKey(), program.SwitchboardDevnetProgramID)
	payer := solana.NewWallet().PrivateKey
	first := solana.NewWallet().PrivateKey
	second := solana.NewWallet().PrivateKey
	ctx := context.Background()
	n.Put(second.PublicKey(), []byte{1})
	before, err := n.Slot(ctx)
	require.NoError(t, err)

	_, err = n.Submit(ctx, payer, []solana.Instruction{
		createAccount(t, payer.PublicKey(), first.PublicKey()),
		createAccount(t, payer.PublicKey(), second.PublicKey()),
	}, first, second)
	assert.ErrorIs(t, err, ErrAccountInUse)
	assert.False(t, chain.Exists(ctx, n, first.PublicKey()))

	after, err := n.Slot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReceiptDelay(t *testing.T) {
	n := New(solana.NewWallet().PublicKey(), program.SwitchboardDevnetProgramID)
	n.ReceiptDelay = 2
	payer := solana.NewWallet().PrivateKey
	account := solana.NewWallet().PrivateKey
	ctx := context.Background()

	sig, err := n.Submit(ctx, payer, []solana.Instruction{createAccount(t, payer.PublicKey(), account.PublicKey())}, account)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = n.Receipt(ctx, sig)
		assert.ErrorIs(t, err, chain.ErrReceiptNotFound)
	}
	_, err = n.Receipt(ctx, sig)
	assert.NoError(t, err)
}

func TestMatch3Outcome(t *testing.T) {
	var value [32]byte
	copy(value[:], []byte{0, 9, 18, 1, 2, 3, 4, 5, 6})
	pattern, win := Match3Outcome(value)
	assert.True(t, win)
	assert.Equal(t, [9]uint8{0, 0, 0, 1, 2, 3, 4, 5, 6}, pattern)

	copy(value[:], []byte{0, 1, 2, 3, 4, 5, 6, 7, 8})
	_, win = Match3Outcome(value)
	assert.False(t, win)
}

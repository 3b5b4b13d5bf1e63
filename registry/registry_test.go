package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/mocks"
	"github.com/ori-shem-tov/scratchcard/pda"
	"github.com/ori-shem-tov/scratchcard/program"
	"github.com/ori-shem-tov/scratchcard/tools"
)

func TestTreeAccountSize(t *testing.T) {
	tests := []struct {
		shape Shape
		size  uint64
	}{
		{Shape{MaxDepth: 14, MaxBufferSize: 64}, 31800},
		{Shape{MaxDepth: 3, MaxBufferSize: 8}, 1304},
		{Shape{MaxDepth: 14, MaxBufferSize: 64, CanopyDepth: 10}, 31800 + 2046*32},
	}
	for _, test := range tests {
		assert.Equal(t, test.size, TreeAccountSize(test.shape), "%+v", test.shape)
	}
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{MaxDepth: 14, MaxBufferSize: 64, CanopyDepth: 3}.Validate())
	assert.ErrorIs(t, Shape{MaxDepth: 4, MaxBufferSize: 8}.Validate(), ErrInvalidShape)
	assert.ErrorIs(t, Shape{MaxDepth: 14, MaxBufferSize: 8}.Validate(), ErrInvalidShape)
	assert.ErrorIs(t, Shape{MaxDepth: 5, MaxBufferSize: 8, CanopyDepth: 5}.Validate(), ErrInvalidShape)
	assert.ErrorIs(t, Shape{MaxDepth: 30, MaxBufferSize: 512, CanopyDepth: 18}.Validate(), ErrInvalidShape)
}

func TestAllocationInstructions(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	ledger := mocks.NewMockLedger(ctl)

	shape := Shape{MaxDepth: 14, MaxBufferSize: 64}
	ledger.EXPECT().MinimumBalanceForRentExemption(gomock.Any(), uint64(31800)).Return(uint64(222222), nil).Times(1)

	builder := program.NewBuilder(solana.NewWallet().PublicKey())
	root := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	tree := solana.NewWallet().PublicKey()

	ixs, err := AllocationInstructions(context.Background(), ledger, builder, root, payer, tree, shape)
	require.NoError(t, err)
	require.Len(t, ixs, 2)

	// allocation first, as its own top-level instruction
	assert.Equal(t, solana.SystemProgramID, ixs[0].ProgramID())
	alloc, err := system.DecodeInstruction(ixs[0].Accounts(), mustData(t, ixs[0]))
	require.NoError(t, err)
	create, ok := alloc.Impl.(*system.CreateAccount)
	require.True(t, ok)
	assert.Equal(t, uint64(222222), *create.Lamports)
	assert.Equal(t, uint64(31800), *create.Space)
	assert.Equal(t, program.CompressionProgramID, *create.Owner)
	assert.Equal(t, tree, create.GetNewAccount().PublicKey)

	assert.Equal(t, builder.ProgramID, ixs[1].ProgramID())
	data := mustData(t, ixs[1])
	assert.Equal(t, program.CreateTreeDiscriminator[:], data[:8])
	assert.Equal(t, pda.TreeConfig(tree).Key, ixs[1].Accounts()[1].PublicKey)
}

func TestAllocationRejectsShape(t *testing.T) {
	_, err := AllocationInstructions(context.Background(), nil, program.Builder{}, solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, Shape{MaxDepth: 1})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func mustData(t *testing.T, ix solana.Instruction) []byte {
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

func TestTreeConfigRoundTrip(t *testing.T) {
	c := TreeConfig{
		Creator:           solana.NewWallet().PublicKey(),
		TotalMintCapacity: 16384,
		NumMinted:         3,
		Decompressible:    DecompressibleDisabled,
	}
	raw, err := c.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{122, 245, 175, 248, 171, 34, 0, 207}, raw[:8])
	assert.Len(t, raw, 8+32+32+8+8+1+1)

	got, err := DecodeTreeConfig(append(raw, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.False(t, got.Full())

	_, err = DecodeTreeConfig(raw[8:])
	assert.Error(t, err)
}

func readyConfig(t *testing.T) []byte {
	raw, err := TreeConfig{TotalMintCapacity: 8}.Marshal()
	require.NoError(t, err)
	return raw
}

func TestAwaitTreeReadyToleratesFailures(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	ledger := mocks.NewMockLedger(ctl)

	tree := solana.NewWallet().PublicKey()
	address := pda.TreeConfig(tree).Key
	gomock.InOrder(
		ledger.EXPECT().AccountData(gomock.Any(), address).Return(nil, chain.ErrAccountNotFound),
		ledger.EXPECT().AccountData(gomock.Any(), address).Return(nil, errors.New("node is behind")),
		ledger.EXPECT().AccountData(gomock.Any(), address).Return(readyConfig(t), nil),
	)

	poller := NewPoller(ledger, tools.Constant(time.Millisecond, 5))
	config, err := poller.AwaitTreeReady(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), config.TotalMintCapacity)
}

func TestAwaitTreeReadyTreatsGarbageAsNotReady(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	ledger := mocks.NewMockLedger(ctl)

	gomock.InOrder(
		ledger.EXPECT().AccountData(gomock.Any(), gomock.Any()).Return([]byte{1, 2, 3}, nil),
		ledger.EXPECT().AccountData(gomock.Any(), gomock.Any()).Return(readyConfig(t), nil),
	)

	poller := NewPoller(ledger, tools.Constant(time.Millisecond, 2))
	_, err := poller.AwaitTreeReady(context.Background(), solana.NewWallet().PublicKey())
	assert.NoError(t, err)
}

func TestAwaitTreeReadyTimesOut(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	ledger := mocks.NewMockLedger(ctl)
	ledger.EXPECT().AccountData(gomock.Any(), gomock.Any()).Return(nil, chain.ErrAccountNotFound).Times(3)

	poller := NewPoller(ledger, tools.Constant(time.Millisecond, 3))
	_, err := poller.AwaitTreeReady(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrIndexingTimeout)
	assert.ErrorIs(t, err, chain.ErrAccountNotFound)
}

func TestAwaitTreeReadyUnboundedStopsWithContext(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	ledger := mocks.NewMockLedger(ctl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	ledger.EXPECT().AccountData(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, solana.PublicKey) ([]byte, error) {
			calls++
			if calls == 20 {
				cancel()
			}
			return nil, chain.ErrAccountNotFound
		}).MinTimes(20)

	policy := tools.Constant(time.Millisecond, 0)
	require.True(t, policy.Unbounded())
	_, err := NewPoller(ledger, policy).AwaitTreeReady(ctx, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrIndexingTimeout)
	assert.Equal(t, 20, calls)
}

func TestTrimProof(t *testing.T) {
	proof := make([]solana.PublicKey, 14)
	assert.Len(t, TrimProof(proof, Shape{MaxDepth: 14, CanopyDepth: 10}), 4)
	assert.Len(t, TrimProof(proof, Shape{MaxDepth: 14}), 14)
	assert.Len(t, TrimProof(proof[:2], Shape{MaxDepth: 14, CanopyDepth: 10}), 2)
}

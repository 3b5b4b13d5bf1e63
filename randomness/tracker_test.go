package randomness

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ori-shem-tov/scratchcard/models"
)

func abandoned(t *testing.T, payer solana.PublicKey, slot uint64) *models.RandomnessRequest {
	req := models.NewRandomnessRequest(solana.NewWallet().PrivateKey, queue, payer)
	require.NoError(t, req.MarkCommitted(solana.Signature{}, slot))
	require.NoError(t, req.MarkAbandoned(errRPC))
	return req
}

func TestTrackerExpired(t *testing.T) {
	tr := NewTracker(10)
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	for _, slot := range []uint64{30, 5, 20, 12} {
		tr.Track(abandoned(t, a, slot))
	}
	tr.Track(abandoned(t, b, 1))

	got := tr.expired(22, a)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(5), got[0].CommitSlot)
	assert.Equal(t, uint64(12), got[1].CommitSlot)
	assert.Equal(t, 3, tr.Len())

	assert.Empty(t, tr.expired(22, a))
	got = tr.expired(22, b)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0].Payer)
}

func TestTrackerBoundary(t *testing.T) {
	tr := NewTracker(10)
	a := solana.NewWallet().PublicKey()
	tr.Track(abandoned(t, a, 10))

	assert.Empty(t, tr.expired(19, a))
	assert.Len(t, tr.expired(20, a), 1)
}

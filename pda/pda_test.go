package pda

import (
	"crypto/sha256"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelKey(label string) solana.PublicKey {
	h := sha256.Sum256([]byte(label))
	return solana.PublicKeyFromBytes(h[:])
}

var (
	programID = labelKey("match3-scratchcard-program")
	admin     = labelKey("match3-admin")
	player    = labelKey("match3-player")
	tree      = labelKey("match3-tree")
	asset     = labelKey("match3-asset")
)

func TestLabelKeys(t *testing.T) {
	assert.Equal(t, "4MCQd9mh5sXM6Sb79ZT4HbzQtNgWJo1KgnVRZH6hoDX7", programID.String())
	assert.Equal(t, "7SfL5pnTHcixhsnv9gcHNAfLRzwEY1i9xDpucTmv2EEb", admin.String())
	assert.Equal(t, "BjaEiAw7ndfmbxFXBVBSmpg7ARnTuCounxQTLKMxvQ3N", player.String())
	assert.Equal(t, "FHCi2gSQ1wM1HCA8NjqvMMdDS7RRYEBWr6LLU7uEkeZA", tree.String())
	assert.Equal(t, "GNLvgAwUHaxXaauV7DWc9d2MxUa9rEntskRaCqeDfjgi", asset.String())
}

func TestGoldenVectors(t *testing.T) {
	d := New(programID)
	tests := []struct {
		name string
		got  Address
		want string
		bump uint8
	}{
		{"game root", d.GameRoot(admin), "FgmcwrerHHyX2XcFUkC97AziMptFfEXaQx23RfTPdAdQ", 253},
		{"default relationship", d.DefaultRelationship(), "ERYPu2Fv42JNeKUXvFwZFno4xKDkZdFspTfcBvzy6A9F", 255},
		{"participant", d.Participant(player), "4NSj2XawSe3GdoNZuKFhZgpTxw4bXUTqvWwPKY2DSdi8", 248},
		{"scratch card", d.ScratchCard(asset), "7YsRxRDjqZ1f7TGutDZvJkC2RVz9JCkfhwcy92JYR4nr", 255},
		{"tree config", TreeConfig(tree), "7XYUL9mAkm1mSCwBdYzvYof9QssboAhZd2DZ1JxRfMHv", 255},
		{"asset id", AssetID(tree, 7), "684UnipwFtQn7Ha4HDpYU7ChxawGG6Nyh3pbfk5oFUAv", 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.Key.String(), "wrong address")
			assert.Equal(t, tt.bump, tt.got.Bump, "wrong bump")
		})
	}
}

func TestDeriveMatchesRuntimeVectors(t *testing.T) {
	loader := solana.BPFLoaderUpgradeableProgramID

	addr, err := solana.CreateProgramAddress([][]byte{{}, {1}}, loader)
	require.NoError(t, err)
	assert.Equal(t, "BwqrghZA2htAcqq8dzP1WDAhTXYTYWj7CHxF5j7TDBAe", addr.String())

	addr, err = solana.CreateProgramAddress([][]byte{[]byte("Talking"), []byte("Squirrels")}, loader)
	require.NoError(t, err)
	assert.Equal(t, "2fnQrngrQT4SeLcdToJAD96phoEjNL2man2kfRLCASVk", addr.String())

	// Derive must agree with the explicit bump it reports
	got, err := Derive(loader, []byte("Talking"), []byte("Squirrels"))
	require.NoError(t, err)
	again, err := solana.CreateProgramAddress([][]byte{[]byte("Talking"), []byte("Squirrels"), {got.Bump}}, loader)
	require.NoError(t, err)
	assert.Equal(t, again, got.Key)
}

func TestDeriveIsPure(t *testing.T) {
	seeds := [][]byte{[]byte(ParticipantTag), player.Bytes()}
	first, err := Derive(programID, seeds...)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := Derive(programID, seeds...)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Len(t, seeds, 2, "caller seeds must not grow")
}

func TestDeriveChangesWithEveryByte(t *testing.T) {
	base, err := Derive(programID, []byte(ParticipantTag), player.Bytes())
	require.NoError(t, err)

	seen := map[solana.PublicKey]bool{base.Key: true}
	for i := 0; i < solana.PublicKeyLength; i++ {
		mutated := player
		mutated[i] ^= 0x01
		addr, err := Derive(programID, []byte(ParticipantTag), mutated.Bytes())
		require.NoError(t, err)
		assert.False(t, seen[addr.Key], "collision when flipping byte %d", i)
		seen[addr.Key] = true
	}

	other, err := Derive(programID, []byte("player_confih"), player.Bytes())
	require.NoError(t, err)
	assert.NotEqual(t, base.Key, other.Key)

	otherProgram, err := Derive(admin, []byte(ParticipantTag), player.Bytes())
	require.NoError(t, err)
	assert.NotEqual(t, base.Key, otherProgram.Key)
}

func TestDeriveLimits(t *testing.T) {
	_, err := Derive(programID, make([]byte, solana.MaxSeedLength+1))
	assert.ErrorIs(t, err, solana.ErrMaxSeedLengthExceeded)

	tooMany := make([][]byte, solana.MaxSeeds)
	for i := range tooMany {
		tooMany[i] = []byte{byte(i)}
	}
	_, err = Derive(programID, tooMany...)
	assert.ErrorIs(t, err, solana.ErrMaxSeedLengthExceeded)

	_, err = Derive(programID, tooMany[:solana.MaxSeeds-1]...)
	assert.NoError(t, err)
}

func TestNamedTuplesAgreeWithDerive(t *testing.T) {
	d := New(programID)
	want, err := Derive(programID, []byte("match3"), admin.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, d.GameRoot(admin))

	zero := make([]byte, 32)
	want, err = Derive(programID, []byte("player_config"), zero)
	require.NoError(t, err)
	assert.Equal(t, want, d.DefaultRelationship())
}

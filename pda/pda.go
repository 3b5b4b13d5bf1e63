// Package pda derives the program addresses the game program and the
// compressed-asset registry expect. Seed encodings must be byte-identical to
// the on-chain side or the derived accounts silently diverge.
package pda

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ori-shem-tov/scratchcard/program"
)

const (
	GameRootTag    = "match3"
	ParticipantTag = "player_config"
	ScratchCardTag = "scratch_card"
	bubblegumAsset = "asset"
)

// Address is a derived address together with the bump that pushed it off curve.
type Address struct {
	Key  solana.PublicKey
	Bump uint8
}

// Derive maps a seed tuple under programID to its address and bump.
func Derive(programID solana.PublicKey, seeds ...[]byte) (Address, error) {
	if len(seeds) >= solana.MaxSeeds {
		// the bump occupies the last seed slot
		return Address{}, fmt.Errorf("%w: %d seeds", solana.ErrMaxSeedLengthExceeded, len(seeds))
	}
	// FindProgramAddress appends the bump to its argument
	tuple := make([][]byte, len(seeds), len(seeds)+1)
	for i, seed := range seeds {
		if len(seed) > solana.MaxSeedLength {
			return Address{}, fmt.Errorf("%w: seed %d is %d bytes", solana.ErrMaxSeedLengthExceeded, i, len(seed))
		}
		tuple[i] = seed
	}
	key, bump, err := solana.FindProgramAddress(tuple, programID)
	if err != nil {
		return Address{}, fmt.Errorf("failed to derive address: %w", err)
	}
	return Address{Key: key, Bump: bump}, nil
}

func mustDerive(programID solana.PublicKey, seeds ...[]byte) Address {
	addr, err := Derive(programID, seeds...)
	if err != nil {
		// the fixed tuples below never exceed the limits
		panic(err)
	}
	return addr
}

// Deriver binds the named seed tuples to one deployment of the game program.
type Deriver struct {
	ProgramID solana.PublicKey
}

func New(programID solana.PublicKey) Deriver {
	return Deriver{ProgramID: programID}
}

// GameRoot is ["match3", admin].
func (d Deriver) GameRoot(admin solana.PublicKey) Address {
	return mustDerive(d.ProgramID, []byte(GameRootTag), admin.Bytes())
}

// Participant is ["player_config", player].
func (d Deriver) Participant(player solana.PublicKey) Address {
	return mustDerive(d.ProgramID, []byte(ParticipantTag), player.Bytes())
}

// DefaultRelationship is the participant slot of the zero key, used as the
// inviter account when nobody invited the participant.
func (d Deriver) DefaultRelationship() Address {
	return d.Participant(solana.PublicKey{})
}

// ScratchCard is ["scratch_card", assetID].
func (d Deriver) ScratchCard(assetID solana.PublicKey) Address {
	return mustDerive(d.ProgramID, []byte(ScratchCardTag), assetID.Bytes())
}

// TreeConfig is the Bubblegum authority account of a merkle tree.
func TreeConfig(tree solana.PublicKey) Address {
	return mustDerive(program.BubblegumProgramID, tree.Bytes())
}

// AssetID is the id Bubblegum assigns to the leaf minted at nonce.
func AssetID(tree solana.PublicKey, nonce uint64) Address {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], nonce)
	return mustDerive(program.BubblegumProgramID, []byte(bubblegumAsset), tree.Bytes(), le[:])
}

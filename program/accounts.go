package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Discriminator is the 8-byte Anchor tag prefixed to instructions and accounts.
type Discriminator [8]byte

func sighash(namespace, name string) Discriminator {
	var d Discriminator
	h := sha256.Sum256([]byte(namespace + ":" + name))
	copy(d[:], h[:8])
	return d
}

func InstructionDiscriminator(name string) Discriminator { return sighash("global", name) }
func AccountDiscriminator(name string) Discriminator     { return sighash("account", name) }

var (
	PlayerConfigDiscriminator = AccountDiscriminator("PlayerConfig")
	Match3InfoDiscriminator   = AccountDiscriminator("Match3Info")
	ScratchCardDiscriminator  = AccountDiscriminator("ScratchCard")
)

// PlayerConfig is the participant relationship state.
type PlayerConfig struct {
	Player  solana.PublicKey
	Inviter solana.PublicKey // zero key when nobody invited the player
	Credits uint64
	Minted  uint64
	Bump    uint8
}

// Match3Info is the game root.
type Match3Info struct {
	Admin       solana.PublicKey
	MerkleTree  solana.PublicKey // active registry, zero until provisioned
	TotalMinted uint64
	Bump        uint8
}

// ScratchCard is the resolve result of one asset.
type ScratchCard struct {
	Asset         solana.PublicKey
	Owner         solana.PublicKey
	ScratchCount  uint32
	LatestPattern [9]uint8
	IsWin         bool
	Randomness    [32]byte
}

func encodeAccount(disc Discriminator, v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeAccount(name string, disc Discriminator, data []byte, v interface{}) error {
	if len(data) < len(disc) || !bytes.Equal(data[:len(disc)], disc[:]) {
		return fmt.Errorf("account data is not a %s", name)
	}
	if err := bin.NewBorshDecoder(data[len(disc):]).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func (a PlayerConfig) Marshal() ([]byte, error) { return encodeAccount(PlayerConfigDiscriminator, a) }
func (a Match3Info) Marshal() ([]byte, error)   { return encodeAccount(Match3InfoDiscriminator, a) }
func (a ScratchCard) Marshal() ([]byte, error)  { return encodeAccount(ScratchCardDiscriminator, a) }

func DecodePlayerConfig(data []byte) (PlayerConfig, error) {
	var a PlayerConfig
	if err := decodeAccount("PlayerConfig", PlayerConfigDiscriminator, data, &a); err != nil {
		return PlayerConfig{}, err
	}
	return a, nil
}

func DecodeMatch3Info(data []byte) (Match3Info, error) {
	var a Match3Info
	if err := decodeAccount("Match3Info", Match3InfoDiscriminator, data, &a); err != nil {
		return Match3Info{}, err
	}
	return a, nil
}

func DecodeScratchCard(data []byte) (ScratchCard, error) {
	var a ScratchCard
	if err := decodeAccount("ScratchCard", ScratchCardDiscriminator, data, &a); err != nil {
		return ScratchCard{}, err
	}
	return a, nil
}

// Package randomness coordinates the two-phase commit/reveal protocol with
// the on-demand randomness oracle.
package randomness

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ori-shem-tov/scratchcard/program"
)

// Oracle builds the oracle-side instructions of a randomness request.
type Oracle interface {
	Queue() solana.PublicKey
	// Init creates the request account bound to the queue.
	Init(ctx context.Context, account, payer solana.PublicKey) ([]solana.Instruction, error)
	// Commit locks the request to the next slot hash.
	Commit(ctx context.Context, account, authority solana.PublicKey) (solana.Instruction, error)
	// Reveal obtains the signed value for a committed request.
	Reveal(ctx context.Context, account, payer solana.PublicKey) (solana.Instruction, error)
	// Close reclaims the rent of a request.
	Close(ctx context.Context, account, authority, payer solana.PublicKey) (solana.Instruction, error)
}

var (
	RandomnessInitDiscriminator    = program.InstructionDiscriminator("randomness_init")
	RandomnessCommitDiscriminator  = program.InstructionDiscriminator("randomness_commit")
	RandomnessRevealDiscriminator  = program.InstructionDiscriminator("randomness_reveal")
	RandomnessCloseDiscriminator   = program.InstructionDiscriminator("randomness_close")
	RandomnessAccountDiscriminator = program.AccountDiscriminator("RandomnessAccountData")
)

// Account mirrors the oracle's randomness account.
type Account struct {
	Authority    solana.PublicKey
	Queue        solana.PublicKey
	SeedSlothash [32]byte
	SeedSlot     uint64
	Oracle       solana.PublicKey
	RevealSlot   uint64
	Value        [32]byte
}

// AccountSize is the allocated size of a randomness account.
const AccountSize = 8 + 32 + 32 + 32 + 8 + 32 + 8 + 32

func (a Account) Committed() bool { return a.SeedSlot != 0 }
func (a Account) Revealed() bool  { return a.RevealSlot != 0 }

func (a Account) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(RandomnessAccountDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeAccount(data []byte) (Account, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], RandomnessAccountDiscriminator[:]) {
		return Account{}, fmt.Errorf("account data is not a randomness account")
	}
	var a Account
	if err := bin.NewBorshDecoder(data[8:]).Decode(&a); err != nil {
		return Account{}, fmt.Errorf("failed to decode randomness account: %w", err)
	}
	return a, nil
}

// RevealParams is the payload of the reveal instruction.
type RevealParams struct {
	Signature  [64]byte
	RecoveryID uint8
	Value      [32]byte
}

func instructionData(disc program.Discriminator, args ...interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	enc := bin.NewBorshEncoder(buf)
	for _, a := range args {
		if err := enc.Encode(a); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

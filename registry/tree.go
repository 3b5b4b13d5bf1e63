// Package registry provisions compressed-asset registries (concurrent Merkle
// trees) and waits for them to become observable.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/ori-shem-tov/scratchcard/chain"
	"github.com/ori-shem-tov/scratchcard/pda"
	"github.com/ori-shem-tov/scratchcard/program"
)

var ErrInvalidShape = errors.New("unsupported tree shape")

// MaxCanopyDepth bounds the canopy so the tree account stays allocatable.
const MaxCanopyDepth = 17

const (
	headerSize         = 2 + 54 // account type + version + V1 header
	changeLogEntrySize = 32 + 4 + 4
	pathNodeSize       = 32
)

// shapes lists the (max depth, max buffer size) pairs the compression
// program accepts.
var shapes = map[uint32][]uint32{
	3:  {8},
	5:  {8},
	6:  {16},
	7:  {16},
	8:  {16},
	9:  {16},
	10: {32},
	11: {32},
	12: {32},
	13: {32},
	14: {64, 256, 1024, 2048},
	15: {64},
	16: {64},
	17: {64},
	18: {64},
	19: {64},
	20: {64, 256, 1024, 2048},
	24: {64, 256, 512, 1024, 2048},
	26: {512, 1024, 2048},
	30: {512, 1024, 2048},
}

// Shape is the geometry of one tree.
type Shape struct {
	MaxDepth      uint32 `json:"max-depth" mapstructure:"max-depth"`
	MaxBufferSize uint32 `json:"max-buffer-size" mapstructure:"max-buffer-size"`
	CanopyDepth   uint32 `json:"canopy-depth" mapstructure:"canopy-depth"`
}

func (s Shape) Validate() error {
	sizes, ok := shapes[s.MaxDepth]
	if !ok {
		return fmt.Errorf("%w: depth %d", ErrInvalidShape, s.MaxDepth)
	}
	found := false
	for _, b := range sizes {
		if b == s.MaxBufferSize {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: buffer size %d at depth %d", ErrInvalidShape, s.MaxBufferSize, s.MaxDepth)
	}
	if s.CanopyDepth > MaxCanopyDepth || s.CanopyDepth >= s.MaxDepth {
		return fmt.Errorf("%w: canopy depth %d", ErrInvalidShape, s.CanopyDepth)
	}
	return nil
}

// TreeAccountSize is the number of bytes the compression program expects
// the tree account to hold.
func TreeAccountSize(s Shape) uint64 {
	depth := uint64(s.MaxDepth)
	buffer := uint64(s.MaxBufferSize)
	changeLog := changeLogEntrySize + pathNodeSize*depth
	rightmostProof := pathNodeSize*depth + pathNodeSize + 4 + 4
	tree := 3*8 + buffer*changeLog + rightmostProof
	canopy := ((uint64(1) << (s.CanopyDepth + 1)) - 2) * pathNodeSize
	return headerSize + tree + canopy
}

// AllocationInstructions returns the space allocation of tree followed by
// the game program's registry initialization. Nested calls cannot allocate
// an account of this size, so the allocation stays a top-level instruction
// ahead of create_tree.
func AllocationInstructions(ctx context.Context, ledger chain.Ledger, builder program.Builder, gameRoot, payer, tree solana.PublicKey, s Shape) ([]solana.Instruction, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	space := TreeAccountSize(s)
	lamports, err := ledger.MinimumBalanceForRentExemption(ctx, space)
	if err != nil {
		return nil, fmt.Errorf("failed to get rent for %d bytes: %w", space, err)
	}

	allocate, err := system.NewCreateAccountInstruction(lamports, space, program.CompressionProgramID, payer, tree).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build tree allocation: %w", err)
	}
	create := builder.CreateTree(program.CreateTreeAccounts{
		Match3Info: gameRoot,
		TreeConfig: pda.TreeConfig(tree).Key,
		MerkleTree: tree,
		Payer:      payer,
	}, s.MaxDepth, s.MaxBufferSize)

	return []solana.Instruction{allocate, create}, nil
}

// ProofLength is how many proof nodes a transfer must carry once the
// canopy stored on chain is accounted for.
func ProofLength(s Shape) int {
	if s.CanopyDepth >= s.MaxDepth {
		return 0
	}
	return int(s.MaxDepth - s.CanopyDepth)
}

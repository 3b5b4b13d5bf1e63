package registry

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ori-shem-tov/scratchcard/program"
)

// TreeConfigDiscriminator tags Bubblegum's TreeConfig account.
var TreeConfigDiscriminator = program.AccountDiscriminator("TreeConfig")

type Decompressible uint8

const (
	DecompressibleEnabled Decompressible = iota
	DecompressibleDisabled
)

// TreeConfig is the Bubblegum registry configuration of one tree.
type TreeConfig struct {
	Creator           solana.PublicKey
	Delegate          solana.PublicKey
	TotalMintCapacity uint64
	NumMinted         uint64
	IsPublic          bool
	Decompressible    Decompressible
}

func (c TreeConfig) Full() bool {
	return c.NumMinted >= c.TotalMintCapacity
}

func (c TreeConfig) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(TreeConfigDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTreeConfig ignores trailing bytes so newer account versions still
// decode.
func DecodeTreeConfig(data []byte) (TreeConfig, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], TreeConfigDiscriminator[:]) {
		return TreeConfig{}, fmt.Errorf("account data is not a tree config")
	}
	var c TreeConfig
	if err := bin.NewBorshDecoder(data[8:]).Decode(&c); err != nil {
		return TreeConfig{}, fmt.Errorf("failed to decode tree config: %w", err)
	}
	return c, nil
}

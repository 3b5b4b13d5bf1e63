package program

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	BubblegumProgramID   = solana.MustPublicKeyFromBase58("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	CompressionProgramID = solana.MustPublicKeyFromBase58("cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK")
	NoopProgramID        = solana.MustPublicKeyFromBase58("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV")

	SwitchboardDevnetProgramID  = solana.MustPublicKeyFromBase58("Aio4gaXjXzJNVLtzwtNVmSqGKpANtXhybbkhtAC94ji2")
	SwitchboardMainnetProgramID = solana.MustPublicKeyFromBase58("SBondMDrcV3K4kxZR1HNVT7osZxAHVHgYXL5Ze1oMUv")
	DevnetQueue                 = solana.MustPublicKeyFromBase58("FfD96yeXs4cxZshoPPSKhSPgVQxLAJUT3gefgh84m1Di")
	MainnetQueue                = solana.MustPublicKeyFromBase58("A43DyUGA7s8eXPxqEjJY6EBu1KKbNgfxF8h17VAHn13w")
)

//go:embed idl.json
var idlJSON []byte

// IDL is the subset of the packaged interface description this client reads.
type IDL struct {
	Version      string `json:"version"`
	Name         string `json:"name"`
	Instructions []struct {
		Name string `json:"name"`
	} `json:"instructions"`
	Metadata struct {
		Address string `json:"address"`
	} `json:"metadata"`
}

// ErrNoProgramAddress is returned for an IDL that was never deployed.
var ErrNoProgramAddress = errors.New("idl has no program address")

func LoadIDL(data []byte) (IDL, error) {
	var idl IDL
	if err := json.Unmarshal(data, &idl); err != nil {
		return IDL{}, fmt.Errorf("failed to parse idl: %w", err)
	}
	return idl, nil
}

func (idl IDL) ProgramID() (solana.PublicKey, error) {
	if idl.Metadata.Address == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: %q", ErrNoProgramAddress, idl.Name)
	}
	return solana.PublicKeyFromBase58(idl.Metadata.Address)
}

// PackagedIDL returns the interface description shipped with the binary.
func PackagedIDL() IDL {
	idl, err := LoadIDL(idlJSON)
	if err != nil {
		panic(err)
	}
	return idl
}

// DefaultProgramID is the game program address from the packaged IDL. The
// IDL only carries one after a deployment wrote it back; until then the
// program id has to be configured.
func DefaultProgramID() (solana.PublicKey, error) {
	return PackagedIDL().ProgramID()
}

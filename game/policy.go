package game

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Policy decides which keys may run administrative operations.
type Policy interface {
	Authorize(key solana.PublicKey) error
}

// AdminPolicy authorizes exactly one administrator.
type AdminPolicy struct {
	Admin solana.PublicKey
}

func (p AdminPolicy) Authorize(key solana.PublicKey) error {
	if p.Admin.IsZero() || !key.Equals(p.Admin) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, key)
	}
	return nil
}

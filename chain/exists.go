package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
)

// Exists reports whether address currently holds data. Read errors are
// indistinguishable from absence: both yield false.
func Exists(ctx context.Context, ledger Ledger, address solana.PublicKey) bool {
	if _, err := ledger.AccountData(ctx, address); err != nil {
		log.Debugf("account %s treated as absent: %v", address, err)
		return false
	}
	return true
}

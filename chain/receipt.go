package chain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Invocation is one program call recorded in a receipt.
type Invocation struct {
	ProgramID solana.PublicKey
	Accounts  []solana.PublicKey
	Data      []byte
}

// InnerGroup holds the nested invocations issued by the top-level
// instruction at Index.
type InnerGroup struct {
	Index       uint16
	Invocations []Invocation
}

type Receipt struct {
	Signature solana.Signature
	Slot      uint64
	Inner     []InnerGroup // ordered as reported by the node
	Logs      []string
}

// receiptFromResult flattens a getTransaction result into a Receipt,
// resolving compiled account indexes against static and loaded keys.
func receiptFromResult(sig solana.Signature, res *rpc.GetTransactionResult) (*Receipt, error) {
	receipt := &Receipt{Signature: sig, Slot: res.Slot}
	if res.Meta == nil {
		return receipt, nil
	}
	receipt.Logs = res.Meta.LogMessages
	if len(res.Meta.InnerInstructions) == 0 {
		return receipt, nil
	}
	if res.Transaction == nil {
		return nil, fmt.Errorf("receipt %s has inner instructions but no transaction", sig)
	}

	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", sig, err)
	}
	keys := append(solana.PublicKeySlice{}, tx.Message.AccountKeys...)
	keys = append(keys, res.Meta.LoadedAddresses.Writable...)
	keys = append(keys, res.Meta.LoadedAddresses.ReadOnly...)

	key := func(i uint16) (solana.PublicKey, error) {
		if int(i) >= len(keys) {
			return solana.PublicKey{}, fmt.Errorf("account index %d out of range (%d keys)", i, len(keys))
		}
		return keys[i], nil
	}

	for _, group := range res.Meta.InnerInstructions {
		g := InnerGroup{Index: group.Index}
		for _, ci := range group.Instructions {
			programID, err := key(ci.ProgramIDIndex)
			if err != nil {
				return nil, fmt.Errorf("receipt %s: %w", sig, err)
			}
			inv := Invocation{ProgramID: programID, Data: []byte(ci.Data)}
			for _, idx := range ci.Accounts {
				acc, err := key(idx)
				if err != nil {
					return nil, fmt.Errorf("receipt %s: %w", sig, err)
				}
				inv.Accounts = append(inv.Accounts, acc)
			}
			g.Invocations = append(g.Invocations, inv)
		}
		receipt.Inner = append(receipt.Inner, g)
	}
	return receipt, nil
}

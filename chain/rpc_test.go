package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ori-shem-tov/scratchcard/tools"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeNode answers the handful of JSON-RPC methods the ledger uses.
type fakeNode struct {
	mu        sync.Mutex
	accounts  map[string][]byte
	txs       map[string]string // signature -> getTransaction result json
	sent      []*solana.Transaction
	statusErr interface{}
	pending   int // number of status polls answered with null before confirming
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	result := "null"
	switch req.Method {
	case "getAccountInfo":
		var addr string
		_ = json.Unmarshal(req.Params[0], &addr)
		if data, ok := n.accounts[addr]; ok {
			result = fmt.Sprintf(`{"context":{"slot":10},"value":{"data":[%q,"base64"],"executable":false,"lamports":1000,"owner":%q,"rentEpoch":0}}`,
				base64.StdEncoding.EncodeToString(data), solana.SystemProgramID)
		} else {
			result = `{"context":{"slot":10},"value":null}`
		}
	case "getTransaction":
		var sig string
		_ = json.Unmarshal(req.Params[0], &sig)
		if tx, ok := n.txs[sig]; ok {
			result = tx
		}
	case "getSlot":
		result = "77"
	case "getMinimumBalanceForRentExemption":
		result = "890880"
	case "getLatestBlockhash":
		result = fmt.Sprintf(`{"context":{"slot":10},"value":{"blockhash":%q,"lastValidBlockHeight":100}}`, solana.Hash{9})
	case "sendTransaction":
		var raw string
		_ = json.Unmarshal(req.Params[0], &raw)
		tx, err := solana.TransactionFromBase64(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n.sent = append(n.sent, tx)
		result = fmt.Sprintf("%q", tx.Signatures[0])
	case "getSignatureStatuses":
		if n.pending > 0 {
			n.pending--
			result = `{"context":{"slot":10},"value":[null]}`
			break
		}
		errJSON, _ := json.Marshal(n.statusErr)
		result = fmt.Sprintf(`{"context":{"slot":10},"value":[{"slot":10,"confirmations":null,"err":%s,"confirmationStatus":"confirmed"}]}`, errJSON)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
}

func newTestLedger(t *testing.T, node *fakeNode) *RPCLedger {
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	l := NewRPCLedger(rpc.New(srv.URL), rpc.CommitmentConfirmed)
	l.Confirm = tools.Constant(time.Millisecond, 10)
	return l
}

func TestRPCLedgerAccountData(t *testing.T) {
	present := solana.NewWallet().PublicKey()
	node := &fakeNode{accounts: map[string][]byte{present.String(): {1, 2, 3}}}
	l := newTestLedger(t, node)
	ctx := context.Background()

	data, err := l.AccountData(ctx, present)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = l.AccountData(ctx, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assert.True(t, Exists(ctx, l, present))
	assert.False(t, Exists(ctx, l, solana.NewWallet().PublicKey()))
}

func TestRPCLedgerUnavailable(t *testing.T) {
	var l *RPCLedger
	ctx := context.Background()

	_, err := l.AccountData(ctx, solana.PublicKey{})
	assert.ErrorIs(t, err, ErrTransportUnavailable)
	_, err = (&RPCLedger{}).Submit(ctx, solana.NewWallet().PrivateKey, nil)
	assert.ErrorIs(t, err, ErrTransportUnavailable)
	assert.False(t, Exists(ctx, l, solana.PublicKey{}), "transport errors read as absent")
}

func TestRPCLedgerSubmitWaitsForConfirmation(t *testing.T) {
	node := &fakeNode{pending: 2}
	l := newTestLedger(t, node)
	l.ComputeUnitLimit = 400_000

	payer := solana.NewWallet().PrivateKey
	extra := solana.NewWallet().PrivateKey
	ix := system.NewCreateAccountInstruction(1, 8, solana.SystemProgramID, payer.PublicKey(), extra.PublicKey()).Build()

	sig, err := l.Submit(context.Background(), payer, []solana.Instruction{ix}, extra)
	require.NoError(t, err)

	require.Len(t, node.sent, 1)
	tx := node.sent[0]
	assert.Equal(t, sig, tx.Signatures[0])
	assert.Len(t, tx.Signatures, 2, "payer and extra signer")
	assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0], "payer pays the fee")
	assert.Len(t, tx.Message.Instructions, 2, "compute budget prepended")
	assert.NoError(t, tx.VerifySignatures())
	assert.Equal(t, 0, node.pending)
}

func TestRPCLedgerSubmitReportsFailedTransaction(t *testing.T) {
	node := &fakeNode{statusErr: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}}
	l := newTestLedger(t, node)

	payer := solana.NewWallet().PrivateKey
	ix := system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	_, err := l.Submit(context.Background(), payer, []solana.Instruction{ix})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InstructionError")
}

func TestRPCLedgerSubmitGivesUpWhenNeverConfirmed(t *testing.T) {
	node := &fakeNode{pending: 1000}
	l := newTestLedger(t, node)
	l.Confirm = tools.Constant(time.Millisecond, 3)

	payer := solana.NewWallet().PrivateKey
	ix := system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	_, err := l.Submit(context.Background(), payer, []solana.Instruction{ix})
	assert.ErrorIs(t, err, tools.ErrRetriesExhausted)
}

func TestRPCLedgerReceipt(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	tree := solana.NewWallet().PublicKey()
	noop := solana.MustPublicKeyFromBase58("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV")

	ix := system.NewTransferInstruction(1, payer.PublicKey(), tree).Build()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{1}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(solana.PublicKey) *solana.PrivateKey { return &payer })
	require.NoError(t, err)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	// the noop program and an extra account arrive through a lookup table
	sig := tx.Signatures[0]
	payload := []byte{1, 0, 2, 0, 0, 0, 9, 9}
	result := fmt.Sprintf(`{"slot":42,"blockTime":null,"transaction":[%q,"base64"],"meta":{"err":null,"fee":5000,
		"preBalances":[],"postBalances":[],"logMessages":["Program log: hi"],
		"innerInstructions":[{"index":0,"instructions":[{"programIdIndex":3,"accounts":[1,4],"data":%q}]}],
		"loadedAddresses":{"writable":[%q],"readonly":[%q]}}}`,
		base64.StdEncoding.EncodeToString(raw), solana.Base58(payload), noop, tree)

	node := &fakeNode{txs: map[string]string{sig.String(): result}}
	l := newTestLedger(t, node)

	receipt, err := l.Receipt(context.Background(), sig)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), receipt.Slot)
	assert.Equal(t, []string{"Program log: hi"}, receipt.Logs)
	require.Len(t, receipt.Inner, 1)
	require.Len(t, receipt.Inner[0].Invocations, 1)
	inv := receipt.Inner[0].Invocations[0]
	assert.Equal(t, noop, inv.ProgramID)
	assert.Equal(t, []solana.PublicKey{tree, tree}, inv.Accounts)
	assert.Equal(t, payload, inv.Data)

	_, err = l.Receipt(context.Background(), solana.Signature{7})
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestReached(t *testing.T) {
	assert.True(t, reached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed))
	assert.False(t, reached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized))
	assert.False(t, reached(rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed))
	assert.True(t, reached(rpc.ConfirmationStatusFinalized, rpc.CommitmentFinalized))
}

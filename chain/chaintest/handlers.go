package chaintest

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/ori-shem-tov/scratchcard/randomness"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// GatewayHandler signs reveals of committed requests the way the oracle
// gateway does.
func (n *Network) GatewayHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(randomness.RevealPath, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RandomnessKey string `json:"randomness_key"`
			Slot          uint64 `json:"slot"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		raw, err := hex.DecodeString(req.RandomnessKey)
		if err != nil || len(raw) != solana.PublicKeyLength {
			http.Error(w, "bad randomness key", http.StatusBadRequest)
			return
		}
		account := solana.PublicKeyFromBytes(raw)
		data, err := n.AccountData(r.Context(), account)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		acc, err := randomness.DecodeAccount(data)
		if err != nil || !acc.Committed() || acc.SeedSlot != req.Slot {
			http.Error(w, "request not committed at that slot", http.StatusBadRequest)
			return
		}

		value := RevealValue(account, acc.SeedSlot)
		ints := make([]int, len(value))
		for i, b := range value {
			ints[i] = int(b)
		}
		writeJSON(w, map[string]interface{}{
			"signature":   base64.StdEncoding.EncodeToString(make([]byte, 64)),
			"recovery_id": 0,
			"value":       ints,
		})
	})
	return mux
}

// IndexHandler answers getAsset and getAssetProof from the simulated state.
func (n *Network) IndexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string            `json:"id"`
			Method string            `json:"method"`
			Params map[string]string `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}

		id, err := solana.PublicKeyFromBase58(req.Params["id"])
		asset, ok := n.Asset(id)
		if err != nil || !ok {
			reply["error"] = map[string]interface{}{"code": -32000, "message": "Asset Not Found"}
			writeJSON(w, reply)
			return
		}

		switch req.Method {
		case "getAsset":
			reply["result"] = map[string]interface{}{
				"id": asset.ID.String(),
				"ownership": map[string]interface{}{
					"owner":    asset.Owner.String(),
					"delegate": asset.Leaf.Delegate.String(),
					"frozen":   false,
				},
				"compression": map[string]interface{}{
					"compressed":   true,
					"tree":         asset.Tree.String(),
					"leaf_id":      asset.Nonce,
					"seq":          asset.Nonce + 1,
					"data_hash":    base58.Encode(asset.Leaf.DataHash[:]),
					"creator_hash": base58.Encode(asset.Leaf.CreatorHash[:]),
				},
				"burnt": false,
			}
		case "getAssetProof":
			n.mu.Lock()
			depth := n.depths[asset.Tree]
			n.mu.Unlock()
			proof := make([]string, depth)
			for i := range proof {
				proof[i] = solana.PublicKey{}.String()
			}
			hash := asset.Leaf.Hash()
			reply["result"] = map[string]interface{}{
				"root":       base58.Encode(make([]byte, 32)),
				"proof":      proof,
				"node_index": (uint64(1) << depth) + asset.Nonce,
				"leaf":       base58.Encode(hash[:]),
				"tree_id":    asset.Tree.String(),
			}
		default:
			reply["error"] = map[string]interface{}{"code": -32601, "message": "Method not found"}
		}
		writeJSON(w, reply)
	})
}

// RPCHandler answers getAccountInfo from the simulated state, enough for
// clients that only read accounts over JSON-RPC.
func (n *Network) RPCHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if req.Method != "getAccountInfo" || len(req.Params) == 0 {
			reply["error"] = map[string]interface{}{"code": -32601, "message": "Method not found"}
			writeJSON(w, reply)
			return
		}

		var address string
		_ = json.Unmarshal(req.Params[0], &address)
		var value interface{}
		if key, err := solana.PublicKeyFromBase58(address); err == nil {
			if data, err := n.AccountData(r.Context(), key); err == nil {
				value = map[string]interface{}{
					"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
					"executable": false,
					"lamports":   1,
					"owner":      solana.SystemProgramID.String(),
					"rentEpoch":  0,
				}
			}
		}
		slot, _ := n.Slot(r.Context())
		reply["result"] = map[string]interface{}{
			"context": map[string]interface{}{"slot": slot},
			"value":   value,
		}
		writeJSON(w, reply)
	})
}

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrAssetNotFound = errors.New("asset not found")

const (
	rateLimitIndex = 10
	rateBurstIndex = 10
)

// AssetIndex is a client of the Digital Asset Standard read API, which
// indexes compressed assets off chain.
type AssetIndex struct {
	Client  *resty.Client
	Limiter *rate.Limiter
}

func NewAssetIndex(endpoint string) *AssetIndex {
	return &AssetIndex{
		Client:  resty.New().SetBaseURL(endpoint).SetTimeout(20 * time.Second),
		Limiter: rate.NewLimiter(rateLimitIndex, rateBurstIndex),
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (x *AssetIndex) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if x.Limiter != nil {
		if err := x.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req := rpcRequest{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params}
	var res rpcResponse
	resp, err := x.Client.R().SetContext(ctx).SetBody(req).SetResult(&res).Post("")
	if err != nil {
		indexRequests.WithLabelValues(method, "transport").Inc()
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	if resp.IsError() {
		indexRequests.WithLabelValues(method, "http").Inc()
		return fmt.Errorf("%s returned %d: %s", method, resp.StatusCode(), resp.String())
	}
	if res.Error != nil {
		indexRequests.WithLabelValues(method, "rpc").Inc()
		if strings.Contains(strings.ToLower(res.Error.Message), "not found") {
			return fmt.Errorf("%w: %v", ErrAssetNotFound, res.Error)
		}
		return res.Error
	}
	if len(res.Result) == 0 || string(res.Result) == "null" {
		indexRequests.WithLabelValues(method, "empty").Inc()
		return ErrAssetNotFound
	}
	indexRequests.WithLabelValues(method, "ok").Inc()
	log.Debugf("%s %s ok", method, req.ID)
	return json.Unmarshal(res.Result, out)
}

// Asset is the subset of a getAsset result this client needs.
type Asset struct {
	ID          solana.PublicKey `json:"id"`
	Ownership   Ownership        `json:"ownership"`
	Compression Compression      `json:"compression"`
	Burnt       bool             `json:"burnt"`
}

type Ownership struct {
	Owner    solana.PublicKey  `json:"owner"`
	Delegate *solana.PublicKey `json:"delegate"`
	Frozen   bool              `json:"frozen"`
}

type Compression struct {
	Compressed  bool             `json:"compressed"`
	Tree        solana.PublicKey `json:"tree"`
	LeafID      uint64           `json:"leaf_id"`
	Seq         uint64           `json:"seq"`
	DataHash    Hash             `json:"data_hash"`
	CreatorHash Hash             `json:"creator_hash"`
}

// AssetProof is a getAssetProof result.
type AssetProof struct {
	Root      Hash               `json:"root"`
	Proof     []solana.PublicKey `json:"proof"`
	NodeIndex uint64             `json:"node_index"`
	Leaf      Hash               `json:"leaf"`
	TreeID    solana.PublicKey   `json:"tree_id"`
}

// Hash is a 32-byte value the index renders in base58.
type Hash [32]byte

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(base58.Encode(h[:]))
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(raw) != len(h) {
		return fmt.Errorf("invalid hash %q: %d bytes", s, len(raw))
	}
	copy(h[:], raw)
	return nil
}

func (x *AssetIndex) Asset(ctx context.Context, id solana.PublicKey) (*Asset, error) {
	var a Asset
	if err := x.call(ctx, "getAsset", map[string]string{"id": id.String()}, &a); err != nil {
		return nil, err
	}
	if a.Burnt {
		return nil, fmt.Errorf("%w: %s is burnt", ErrAssetNotFound, id)
	}
	return &a, nil
}

func (x *AssetIndex) AssetProof(ctx context.Context, id solana.PublicKey) (*AssetProof, error) {
	var p AssetProof
	if err := x.call(ctx, "getAssetProof", map[string]string{"id": id.String()}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TrimProof drops the proof nodes already held by the on-chain canopy.
func TrimProof(proof []solana.PublicKey, s Shape) []solana.PublicKey {
	n := ProofLength(s)
	if n >= len(proof) {
		return proof
	}
	return proof[:n]
}

package game

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/viper"

	"github.com/ori-shem-tov/scratchcard/registry"
	"github.com/ori-shem-tov/scratchcard/tools"
)

type Config struct {
	RPCEndpoint   string `json:"rpc-endpoint" mapstructure:"rpc-endpoint"`
	IndexEndpoint string `json:"index-endpoint" mapstructure:"index-endpoint"` // DAS read API, defaults to the RPC endpoint
	GatewayURL    string `json:"gateway-url" mapstructure:"gateway-url"`
	Commitment    string `json:"commitment" mapstructure:"commitment"`

	// ProgramID is required unless the packaged IDL was written back by a
	// deployment and carries the program address.
	ProgramID string `json:"program-id" mapstructure:"program-id"`
	Admin     string `json:"admin" mapstructure:"admin"`
	Queue     string `json:"queue" mapstructure:"queue"`
	Oracle    string `json:"oracle" mapstructure:"oracle"`

	Tree        registry.Shape    `json:"tree" mapstructure:"tree"`
	Poll        tools.RetryPolicy `json:"poll" mapstructure:"poll"`
	Receipt     tools.RetryPolicy `json:"receipt" mapstructure:"receipt"`
	ExpirySlots uint64            `json:"expiry-slots" mapstructure:"expiry-slots"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc-endpoint", "")
	v.SetDefault("index-endpoint", "")
	v.SetDefault("gateway-url", "")
	v.SetDefault("commitment", "confirmed")
	v.SetDefault("program-id", "")
	v.SetDefault("admin", "")
	v.SetDefault("queue", "")
	v.SetDefault("oracle", "")

	v.SetDefault("tree.max-depth", 14)
	v.SetDefault("tree.max-buffer-size", 64)
	v.SetDefault("tree.canopy-depth", 0)

	v.SetDefault("poll.initial-wait", registry.DefaultPollPolicy.InitialWait)
	v.SetDefault("poll.multiplier", registry.DefaultPollPolicy.Multiplier)
	v.SetDefault("poll.max-wait", registry.DefaultPollPolicy.MaxWait)
	v.SetDefault("poll.max-attempts", registry.DefaultPollPolicy.MaxAttempts)
	v.SetDefault("poll.deadline", registry.DefaultPollPolicy.Deadline)

	v.SetDefault("receipt.initial-wait", "500ms")
	v.SetDefault("receipt.multiplier", 2.0)
	v.SetDefault("receipt.max-wait", "5s")
	v.SetDefault("receipt.max-attempts", 6)
	v.SetDefault("receipt.deadline", 0)

	v.SetDefault("expiry-slots", 1500)
}

// LoadConfig reads path (JSON or YAML, optional) and lets SCRATCH_*
// environment variables override it, e.g. SCRATCH_POLL_DEADLINE=2m.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SCRATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := conf.Poll.Validate(); err != nil {
		return nil, fmt.Errorf("invalid poll policy: %w", err)
	}
	if err := conf.Receipt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid receipt policy: %w", err)
	}
	return conf, nil
}

// KeypairFromString accepts a keygen style JSON byte array, the path of a
// keygen file, or a base58 encoded secret key.
func KeypairFromString(secret string) (solana.PrivateKey, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("empty secret")
	}

	var raw []byte
	switch {
	case strings.HasPrefix(secret, "["):
		var ints []int
		if err := json.Unmarshal([]byte(secret), &ints); err != nil {
			return nil, fmt.Errorf("failed to parse key bytes: %w", err)
		}
		raw = make([]byte, len(ints))
		for i, b := range ints {
			if b < 0 || b > 255 {
				return nil, fmt.Errorf("key byte %d out of range", i)
			}
			raw[i] = byte(b)
		}
	case fileExists(secret):
		key, err := solana.PrivateKeyFromSolanaKeygenFile(secret)
		if err != nil {
			return nil, fmt.Errorf("failed to read keypair file %s: %w", secret, err)
		}
		return key, nil
	default:
		var err error
		raw, err = base58.Decode(secret)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base58 key: %w", err)
		}
	}

	if len(raw) != 64 {
		return nil, fmt.Errorf("secret key is %d bytes, want 64", len(raw))
	}
	derived := ed25519.NewKeyFromSeed(raw[:32])
	if !bytes.Equal(derived[32:], raw[32:]) {
		return nil, fmt.Errorf("secret key does not match its public half")
	}
	return solana.PrivateKey(raw), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// PublicKeyOr parses s, or returns fallback when s is empty.
func PublicKeyOr(s string, fallback solana.PublicKey) (solana.PublicKey, error) {
	if s == "" {
		return fallback, nil
	}
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	return key, nil
}

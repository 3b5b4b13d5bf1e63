package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ori-shem-tov/scratchcard/game"
	"github.com/ori-shem-tov/scratchcard/tools"
)

var (
	configPath  string
	keypair     string // signer: base58 secret, byte array or keygen file
	metricsAddr string
	RPCEndpoint = os.Getenv("SCRATCH_RPC_ENDPOINT")
	logLevelEnv = strings.ToLower(os.Getenv("SCRATCH_LOG_LEVEL"))
)

const setupTimeout = 30 * time.Second

// Commands are the game operations exposed on the command line.
var Commands = []*cobra.Command{
	InitCmd,
	ProvisionCmd,
	MintCmd,
	ScratchCmd,
	TransferCmd,
	BalanceCmd,
}

func init() {
	tools.SetLogger(logLevelEnv)

	for _, cmd := range Commands {
		cmd.SilenceUsage = true
		cmd.Flags().StringVar(&configPath, "config", "", "config file (optional. SCRATCH_* variables override it)")
		cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve prometheus metrics on (optional)")
	}
	// every command but balance signs
	for _, cmd := range Commands[:len(Commands)-1] {
		cmd.Flags().StringVar(&keypair, "keypair", "", "signer secret key or keygen file (required)")
		tools.MarkFlagRequired(cmd.Flags(), "keypair")
	}
}

// session is what every command needs before it runs an operation.
type session struct {
	game   *game.Game
	signer solana.PrivateKey
}

// setup loads the config, the signer and the clients. The admin always
// comes from the config, never from the signer, so administrative commands
// fail unless the signer is that admin.
func setup() (*session, error) {
	conf, err := game.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if RPCEndpoint != "" {
		conf.RPCEndpoint = RPCEndpoint
	}
	if err := tools.TestEnvironmentVariables(conf.RPCEndpoint); err != nil {
		return nil, err
	}

	s := &session{}
	if keypair != "" {
		s.signer, err = game.KeypairFromString(keypair)
		if err != nil {
			return nil, err
		}
	}
	if conf.Admin == "" {
		return nil, errors.New("missing admin in config (SCRATCH_ADMIN)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	s.game, err = game.FromConfig(ctx, conf)
	if err != nil {
		return nil, err
	}
	serveMetrics()
	return s, nil
}

func serveMetrics() {
	if metricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Infof("serving metrics on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Errorf("metrics server stopped: %v", err)
		}
	}()
}

// run executes op with a context cancelled on interrupt. Its error is
// returned to cobra so the process exits non-zero.
func run(op func(ctx context.Context, s *session) error) error {
	s, err := setup()
	if err != nil {
		log.Error(err)
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := op(ctx, s); err != nil {
		log.Error(err)
		return err
	}
	return nil
}

func parseKey(name, value string) (solana.PublicKey, error) {
	key, err := game.PublicKeyOr(value, solana.PublicKey{})
	if err != nil {
		return solana.PublicKey{}, errors.New("invalid --" + name + ": " + err.Error())
	}
	return key, nil
}

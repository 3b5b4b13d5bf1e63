package tools

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func MarkFlagRequired(flag *pflag.FlagSet, name string) {
	err := cobra.MarkFlagRequired(flag, name)
	if err != nil {
		panic(err)
	}
}

func SetLogger(logLevelEnv string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logLevel := log.WarnLevel
	if logLevelEnv == "debug" {
		logLevel = log.DebugLevel
	} else if logLevelEnv == "info" {
		logLevel = log.InfoLevel
	}
	log.SetLevel(logLevel)
}

func TestEnvironmentVariables(rpcEndpoint string) error {
	var missing []string
	if rpcEndpoint == "" {
		missing = append(missing, "SCRATCH_RPC_ENDPOINT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s environment variable(s)", strings.Join(missing, ","))
	}
	return nil
}

func InitClients(rpcEndpoint string) (*rpc.Client, error) {
	var failedClients []string
	if !strings.HasPrefix(rpcEndpoint, "http://") && !strings.HasPrefix(rpcEndpoint, "https://") {
		failedClients = append(failedClients, "rpc")
		log.Errorf("rpc endpoint %q is not an http(s) url", rpcEndpoint)
	}
	if len(failedClients) > 0 {
		return nil, fmt.Errorf("failed creating the following client(s): %s", strings.Join(failedClients, ","))
	}
	return rpc.New(rpcEndpoint), nil
}

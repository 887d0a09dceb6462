package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lendborrow/lendborrow-api/internal/client/blockchain"
	"github.com/lendborrow/lendborrow-api/internal/config"
	"github.com/lendborrow/lendborrow-api/internal/logger"
	"github.com/lendborrow/lendborrow-api/internal/probe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errProbeFailed = errors.New("lender creation failed")

type options struct {
	rpcURL         string
	artifactsDir   string
	contract       string
	accountIndex   int
	duration       uint64
	value          string
	gas            uint64
	receiptTimeout time.Duration
	strict         bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "create-lender",
		Short: "Submit one createLender transaction against the deployed lending contract",
		Long: `Looks up the deployed lending contract from its build artifact, sends
createLender from one of the node's accounts and logs the receipt together with
the decoded arguments of its first two logs.

Failures are logged and the command still exits 0 unless --strict is set.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateLender(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.rpcURL, "rpc-url", cfg.RPCURL, "JSON-RPC endpoint of the node")
	flags.StringVar(&opts.artifactsDir, "artifacts-dir", cfg.ArtifactsDir, "directory holding the contract build artifacts")
	flags.StringVar(&opts.contract, "contract", cfg.ContractName, "contract name to look up")
	flags.IntVar(&opts.accountIndex, "account-index", probe.DefaultAccountIndex, "index into eth_accounts of the sender")
	flags.Uint64Var(&opts.duration, "duration", probe.DefaultDuration, "lender duration passed to createLender")
	flags.StringVar(&opts.value, "value", fmt.Sprint(probe.DefaultValue), "value sent with the transaction, in wei")
	flags.Uint64Var(&opts.gas, "gas", 0, "gas limit for the transaction, 0 lets the node estimate")
	flags.DurationVar(&opts.receiptTimeout, "receipt-timeout", cfg.ReceiptTimeout, "how long to wait for the receipt")
	flags.BoolVar(&opts.strict, "strict", false, "exit non-zero when lender creation fails")

	return cmd
}

func runCreateLender(ctx context.Context, opts *options) error {
	value, ok := new(big.Int).SetString(opts.value, 10)
	if !ok || value.Sign() < 0 {
		return fmt.Errorf("invalid --value %q", opts.value)
	}

	probeLogger := logger.ForComponent(logger.ComponentProbe)

	result, err := probeLender(ctx, opts, value, probeLogger)
	probe.Report(probeLogger, result, err)

	if err != nil && opts.strict {
		return fmt.Errorf("%w: %v", errProbeFailed, err)
	}
	return nil
}

func probeLender(ctx context.Context, opts *options, value *big.Int, probeLogger *zap.Logger) (*probe.Result, error) {
	chain, err := blockchain.Dial(ctx, opts.rpcURL, probeLogger)
	if err != nil {
		return nil, err
	}
	defer chain.Close()

	p := probe.NewLenderProbe(chain, blockchain.NewRegistry(opts.artifactsDir, probeLogger), probe.Config{
		ContractName:   opts.contract,
		AccountIndex:   opts.accountIndex,
		Duration:       new(big.Int).SetUint64(opts.duration),
		Value:          value,
		Gas:            opts.gas,
		ReceiptTimeout: opts.receiptTimeout,
	}, probeLogger)
	return p.Run(ctx)
}

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.InitLoggerWithConfig(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Stage:       cfg.Stage,
		EnableJSON:  !cfg.IsDevelopment(),
		EnableColor: cfg.IsDevelopment(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = newRootCmd(cfg).ExecuteContext(ctx)
	stop()
	_ = logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

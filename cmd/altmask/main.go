package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	clientconfig "github.com/althash-leandro/altmask/cmd/altmask/config"
	"github.com/althash-leandro/altmask/internal/address"
	"github.com/althash-leandro/altmask/internal/app"
	"github.com/althash-leandro/altmask/internal/login"
	"github.com/althash-leandro/altmask/internal/networks"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "altmask",
		Short:         "Qtum wallet background process",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the background process and its local UI bridge",
		RunE:  runServe,
	}

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage stored wallets",
	}
	accountCmd.AddCommand(newAccountAddCmd(), newAccountListCmd())

	root.AddCommand(serveCmd, accountCmd)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Info("altmask",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	cfg, err := clientconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return err
	}
	assetsCfg, err := cfg.AssetsConfig()
	if err != nil {
		return err
	}

	a, err := app.Build(app.Options{
		Storage:      cfg.StorageConfig(),
		Endpoints:    endpoints,
		PollInterval: cfg.PollInterval(),
		Assets:       assetsCfg,
		HTTP:         cfg.HTTPConfig(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("close failed", "error", err)
		}
	}()

	err = a.Run(cmd.Context())
	log.Info("shutdown complete")
	return err
}

func openWallets() (*login.StoredWallets, func(), error) {
	cfg, err := clientconfig.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	store, err := storage.Open(cfg.StorageConfig())
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Error("close store failed", "error", err)
		}
	}
	return login.NewStoredWallets(store), closeStore, nil
}

func newAccountAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <address>",
		Short: "Store a wallet under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validOnSomeNetwork(args[1]) {
				return fmt.Errorf("%q is not a wallet address on any known network", args[1])
			}
			wallets, closeStore, err := openWallets()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := wallets.Add(cmd.Context(), shared.Account{Name: args[0], Address: args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", args[0])
			return nil
		},
	}
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored wallets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wallets, closeStore, err := openWallets()
			if err != nil {
				return err
			}
			defer closeStore()

			accounts, err := wallets.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tADDRESS")
			for _, a := range accounts {
				fmt.Fprintf(w, "%s\t%s\n", a.Name, a.Address)
			}
			return w.Flush()
		},
	}
}

func validOnSomeNetwork(addr string) bool {
	for _, n := range networks.Catalog() {
		if _, err := address.ToHex(addr, n.ChainParams); err == nil {
			return true
		}
	}
	return false
}

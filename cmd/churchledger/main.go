package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"churchledger/internal/cli"
	"churchledger/internal/config"
	"churchledger/internal/log"
)

const programName = "churchledger"

var globalFlags = struct {
	envFile  string
	logLevel string
}{}

// bootstrap loads .env, builds the logger and validates configuration.
// --log-level overrides LOG_LEVEL.
func bootstrap() (*log.Logger, *config.Config, error) {
	if globalFlags.envFile != "" {
		cli.LoadEnvFile(globalFlags.envFile)
	} else {
		cli.LoadEnvFile()
	}

	level := globalFlags.logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger := cli.SetupLogger(level).WithComponent(log.ComponentCLI)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return nil, nil, err
	}
	return logger, cfg, nil
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Church attendance, giving and expense ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}

	rootCmd.PersistentFlags().
		StringVar(&globalFlags.envFile, "env-file", "", "path to a .env file (default ./.env when present)")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(seedCommand())
	rootCmd.AddCommand(usersCommand())
	rootCmd.AddCommand(exportSheetsCommand())
	return rootCmd
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"churchledger/internal/auth"
	"churchledger/internal/cli"
	"churchledger/internal/core"
	"churchledger/internal/metrics"
	"churchledger/internal/services"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			store, err := cli.OpenStore(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			version, dirty, err := store.SchemaVersion()
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d (dirty=%t)\n", store.Driver(), version, dirty)
			return nil
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default accounts that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			res, err := openBackend(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			users := newAppServices(res, cfg, metrics.New()).users
			created, err := users.SeedDefaults(cmd.Context(),
				services.DefaultAccounts(cfg.DefaultAdminPassword, cfg.DefaultUserPassword))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d default user(s)\n", len(created))
			for _, email := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", email)
			}
			return nil
		},
	}
}

func usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(usersListCommand())
	cmd.AddCommand(usersPromoteCommand())
	return cmd
}

// withUsers runs fn against a user service on the configured backend.
func withUsers(ctx context.Context, fn func(*services.UserService) error) error {
	logger, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	store, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(services.NewUserService(store, auth.NewHasher(cfg.BcryptCost), metrics.New()))
}

func usersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd.Context(), func(users *services.UserService) error {
				list, err := users.List(cmd.Context())
				if err != nil {
					return err
				}
				return printUsers(cmd.OutOrStdout(), list)
			})
		},
	}
}

func printUsers(out io.Writer, users []core.User) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.Active)
	}
	return tw.Flush()
}

func usersPromoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Make an existing account an active admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd.Context(), func(users *services.UserService) error {
				if err := users.Promote(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", core.NormalizeEmail(args[0]))
				return nil
			})
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"churchledger/internal/auth"
	"churchledger/internal/backend"
	"churchledger/internal/cli"
	"churchledger/internal/config"
	apphttp "churchledger/internal/http"
	"churchledger/internal/log"
	"churchledger/internal/metrics"
	"churchledger/internal/services"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}
}

// appServices is the service layer over one backend.
type appServices struct {
	users     *services.UserService
	members   *services.MemberService
	entries   *services.EntryService
	approvals *services.ApprovalService
	balances  *services.BalanceService
	dashboard *services.DashboardService
	admin     *services.AdminService
}

func newAppServices(res *backend.BackendResult, cfg *config.Config, m *metrics.Metrics) appServices {
	return appServices{
		users:     services.NewUserService(res.Store, auth.NewHasher(cfg.BcryptCost), m),
		members:   services.NewMemberService(res.Store, m),
		entries:   services.NewEntryService(res.Store, res.Events, m),
		approvals: services.NewApprovalService(res.Store, res.Events, m),
		balances:  services.NewBalanceService(res.Store),
		dashboard: services.NewDashboardService(res.Store),
		admin:     services.NewAdminService(res.Store, res.Events, m),
	}
}

// openBackend builds the store and optional publisher for cfg.
func openBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

func seedDefaults(ctx context.Context, logger *log.Logger, users *services.UserService, cfg *config.Config) error {
	created, err := users.SeedDefaults(ctx, services.DefaultAccounts(cfg.DefaultAdminPassword, cfg.DefaultUserPassword))
	if err != nil {
		return err
	}
	for _, email := range created {
		logger.Info("Created default user", "email", email)
	}
	return nil
}

func serveRun(cmd *cobra.Command) error {
	logger, cfg, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, cancel := cli.GracefulShutdown(cmd.Context(), logger)
	defer cancel()

	res, err := openBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	m := metrics.New()
	svc := newAppServices(res, cfg, m)

	if cfg.SeedDefaultUsers {
		if err := seedDefaults(ctx, logger, svc.users, cfg); err != nil {
			return err
		}
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Logger:             logger.WithComponent(log.ComponentHTTP),
		Metrics:            m,
		Sessions:           auth.NewSessions(cfg.SecretKey, cfg.SessionTTL, cfg.Production()),
		Users:              svc.users,
		Members:            svc.members,
		Entries:            svc.entries,
		Approvals:          svc.approvals,
		Balances:           svc.balances,
		Dashboard:          svc.dashboard,
		Admin:              svc.admin,
		Ready:              res.Store.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Now:                time.Now,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting churchledger server",
			"port", cfg.Port,
			"driver", cfg.DBDriver,
			"env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"atec/authz"
	"atec/config"
	"atec/contract"
	"atec/database"
	"atec/loader"
	"atec/logging"
	"atec/middleware"
	"atec/render"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "atec",
		Short:        "Back office for contracts, inventory and orders",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv("ATEC_CONFIG")
			}
			config.SetPath(configPath)
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			_, err = logging.New(cfg.Log.Level, cfg.Log.Format)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to atec.yaml (default ./atec.yaml or $ATEC_CONFIG)")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newTenantCmd(), newRenewCmd())
	return root
}

// openDatabase connects with the configured driver and applies the schema.
func openDatabase() (*sqlx.DB, error) {
	cfg := config.GetConfig()
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := loader.InitDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}
	return db, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			logger := zap.L()

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info("database ready", zap.String("driver", cfg.Database.Driver))

			mode, err := authz.ParseMode(cfg.Authz.Mode)
			if err != nil {
				return err
			}
			az, err := authz.NewAuthorizer(cfg.Authz.PolicyPath, mode)
			if err != nil {
				return err
			}
			printer := render.NewChromePrinter(cfg.Report.ChromeBin, time.Duration(cfg.Report.TimeoutSeconds)*time.Second)

			mux := http.NewServeMux()
			SetupRoutes(mux, db, az, printer)
			handler := middleware.Chain(mux,
				middleware.RequestID,
				middleware.AccessLog(logger),
				middleware.Recoverer(logger),
				middleware.RequestBodyLimit(cfg.Server.MaxBodyBytes),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}, logger)
		},
	}
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func newTenantCmd() *cobra.Command {
	tenant := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	add := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Create a tenant and seed its default transaction types",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			id := strings.ToLower(strings.TrimSpace(args[0]))
			if err := loader.CreateTenant(db, id, strings.TrimSpace(args[1])); err != nil {
				return fmt.Errorf("failed to create tenant %s: %w", id, err)
			}
			zap.S().Infof("tenant %s created", id)
			fmt.Fprintf(cmd.OutOrStdout(), "tenant %s created\n", id)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			tenants, err := database.GetAllTenants(db)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tCREATED")
			for _, t := range tenants {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", t.ID, t.Name, t.Active, t.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}

	tenant.AddCommand(add, list)
	return tenant
}

func newRenewCmd() *cobra.Command {
	var (
		tenantID string
		ids      []int64
		percent  string
		months   int
		user     string
	)
	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Renew a batch of contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pct := decimal.Zero
			if strings.TrimSpace(percent) != "" {
				var err error
				pct, err = decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(percent), ",", "."))
				if err != nil {
					return fmt.Errorf("invalid --percent %q: %w", percent, err)
				}
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			tenantID = strings.ToLower(strings.TrimSpace(tenantID))
			if _, err := database.GetTenant(db, tenantID); err != nil {
				return fmt.Errorf("tenant %s: %w", tenantID, err)
			}

			result, err := contract.RenewContracts(db, tenantID, user, contract.RenewalInput{
				ClientIDs:  ids,
				Percentage: pct,
				Months:     months,
			}, database.Now())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id")
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "comma separated contract ids")
	cmd.Flags().StringVar(&percent, "percent", "0", "fee adjustment percentage, e.g. 7.5")
	cmd.Flags().IntVar(&months, "months", 0, "months added to the expiration date")
	cmd.Flags().StringVar(&user, "user", "cli", "user recorded in the renewal history")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

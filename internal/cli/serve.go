package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/api"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/manager"
	"github.com/Draaaaaaven/ecad/pkg/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		autosave bool
	)

	cmd := &cobra.Command{
		Use:   "serve [database...]",
		Short: "Expose databases over HTTP",
		Long: `Load the given archive keys from the store configured in the [store]
section and serve them through the HTTP API until interrupted. With the
default file backend the keys are file paths. With --autosave every database is written to autosave_dir on
shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if autosave {
				if cfg.AutosaveDir, err = autosaveDir(cfg); err != nil {
					return err
				}
			}
			st, err := store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			mgr := manager.New(cfg, st, c.Logger)
			for _, path := range args {
				if _, err := c.openDatabase(ctx, mgr, path); err != nil {
					_ = mgr.Shutdown(ctx, false)
					return err
				}
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				_ = mgr.Shutdown(ctx, false)
				return errors.Wrap(errors.ErrCodeIO, err, "listen %s", addr)
			}
			c.printSuccess("Serving %d databases on http://%s", len(args), ln.Addr())
			return c.serve(ctx, ln, mgr, autosave)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVar(&autosave, "autosave", false, "save every database on shutdown")
	return cmd
}

// serve runs the API on ln until ctx is canceled, then drains requests and
// shuts the manager down.
func (c *CLI) serve(ctx context.Context, ln net.Listener, mgr *manager.Manager, autosave bool) error {
	srv := &http.Server{
		Handler:           api.NewRouter(mgr, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Warn("http shutdown", "err", err)
	}
	if err := mgr.Shutdown(shutdownCtx, autosave); err != nil {
		return err
	}
	if serveErr != nil && serveErr != http.ErrServerClosed {
		return errors.Wrap(errors.ErrCodeIO, serveErr, "serve")
	}
	c.Logger.Info("server stopped")
	return nil
}

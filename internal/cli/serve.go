package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"orga-bot/internal/auth"
	"orga-bot/internal/chat"
	"orga-bot/internal/handlers"
	appLog "orga-bot/internal/log"
	"orga-bot/internal/routes"
	"orga-bot/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled jobs",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")
	serveCmd.Flags().Bool("no-scheduler", false, "Serve the API without running scheduled jobs")
	serveCmd.Flags().Bool("no-commands", false, "Do not connect the Discord slash commands")
}

func runServe(cmd *cobra.Command, _ []string) error {
	listen, _ := cmd.Flags().GetString("listen")
	noScheduler, _ := cmd.Flags().GetBool("no-scheduler")
	noCommands, _ := cmd.Flags().GetBool("no-commands")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if listen == "" {
		listen = a.Config.HTTP.Listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !noScheduler {
		sched, err := scheduler.New(a, a.Config.Schedule, a.Location)
		if err != nil {
			return err
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	if !noCommands {
		cmds, err := startCommands(ctx, a.Config.Discord.Token, a.Config.Discord.GuildID, a)
		if err != nil {
			return err
		}
		if cmds != nil {
			defer cmds.Close()
		}
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	authMgr := auth.NewManager(a.Config.HTTP)
	h := handlers.New(a.Tasks, a, a.Hub, authMgr, a.Config.HTTP)
	srv := &http.Server{
		Addr:              listen,
		Handler:           routes.SetupRoutes(h, authMgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("server starting", "listen", listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	appLog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startCommands connects the slash commands. It returns nil without a bot
// token.
func startCommands(ctx context.Context, token, guildID string, events chat.EventAdder) (*chat.Commands, error) {
	cmds, err := chat.NewCommands(token, guildID, events)
	if errors.Is(err, chat.ErrNotConfigured) {
		appLog.Info("slash commands disabled", "reason", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := cmds.Open(ctx); err != nil {
		return nil, err
	}
	return cmds, nil
}

package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ynotnauk/go-irc/auth"
	"github.com/ynotnauk/go-irc/bot"
	"github.com/ynotnauk/go-irc/chat"
	"github.com/ynotnauk/go-irc/cmd/ircmsg/commands"
	"github.com/ynotnauk/go-irc/config"
	"github.com/ynotnauk/go-irc/entities"
	"github.com/ynotnauk/go-irc/interfaces"
	"github.com/ynotnauk/go-irc/logger"
	"github.com/ynotnauk/go-irc/metrics"
	"github.com/ynotnauk/go-irc/store"
)

const defaultAuthStore = "data"

var runConfigPath string

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "config file path")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the command bot",
	Long: `Connects to the configured server, joins the configured channels and
answers !hello. Settings come from --config, .env and IRC_* variables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := logger.Init(cfg.LogLevel); err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runBot(ctx, cfg)
	},
}

func runBot(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()
	if cfg.Metrics.Address != "" {
		server := &http.Server{Addr: cfg.Metrics.Address, Handler: metricsMux(m), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Log.Info("metrics_listening", zap.String("addr", cfg.Metrics.Address))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("metrics_server_failed", zap.Error(err))
			}
		}()
		defer server.Close()
	}

	authProvider, err := newAuthProvider(cfg)
	if err != nil {
		return err
	}

	var buffer *store.BufferStore
	if cfg.Buffer.Path != "" {
		buffer, err = store.NewBufferStore(cfg.Buffer.Path, m)
		if err != nil {
			return err
		}
		defer buffer.Close()
	}

	options := chat.Options{
		Network:   cfg.Network,
		Address:   cfg.Server.Address,
		TLS:       cfg.Server.TLS,
		SendRate:  cfg.Flood.SendRate,
		SendBurst: cfg.Flood.SendBurst,
		Metrics:   m,
	}
	botOptions := bot.Options{
		CommandPrefix: cfg.Bot.CommandPrefix,
		Version:       "ircmsg " + version,
		Channels:      cfg.Channels,
		PlaybackLimit: cfg.Buffer.Playback,
	}
	if buffer != nil {
		options.Recorder = buffer
		botOptions.Buffer = buffer
	}

	client, err := chat.NewClient(authProvider, options)
	if err != nil {
		return err
	}
	b, err := bot.New(client, botOptions)
	if err != nil {
		return err
	}
	if err := b.OnChatCommand("hello", &commands.HelloChatCommand{}); err != nil {
		return err
	}

	err = b.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newAuthProvider(cfg *config.Config) (interfaces.AuthProvider, error) {
	fallback, err := auth.NewStaticProvider(entities.AuthRecord{
		Network:  cfg.Network,
		Nick:     cfg.Identity.Nick,
		User:     cfg.Identity.User,
		RealName: cfg.Identity.RealName,
		Password: cfg.Identity.Password,
	})
	if err != nil {
		return nil, err
	}
	location := cfg.Auth.Store
	if location == "" {
		location = defaultAuthStore
	}
	authStore, err := store.NewAuthFilesystemStore(location)
	if err != nil {
		return nil, err
	}
	return auth.NewStoredProvider(authStore, cfg.Network, fallback)
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

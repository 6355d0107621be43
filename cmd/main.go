package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/nikhil/chatrelay/internal/config"
	"github.com/nikhil/chatrelay/internal/gateway"
	"github.com/nikhil/chatrelay/internal/hub"
	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/presence"
	"github.com/nikhil/chatrelay/internal/routes"
	services "github.com/nikhil/chatrelay/internal/service/auth"
	channelService "github.com/nikhil/chatrelay/internal/service/channels"
	messageService "github.com/nikhil/chatrelay/internal/service/messages"
	profileService "github.com/nikhil/chatrelay/internal/service/users"
	"github.com/nikhil/chatrelay/internal/store"
	"github.com/nikhil/chatrelay/internal/typing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger("main").Fatal("Failed to load configuration", "error", err)
	}
	logger.Configure(logger.Options{Env: cfg.AppEnv, Level: cfg.LogLevel})
	log := logger.NewLogger("main")

	st := store.New()
	if cfg.SeedData {
		if err := st.Seed(); err != nil {
			log.Fatal("Failed to seed store", "error", err)
		}
	}

	h := hub.New(logger.NewLogger("hub"))
	typingAggregator := typing.New(h, cfg.TypingTimeout, logger.NewLogger("typing"))
	registry := presence.New(st, h, logger.NewLogger("presence"))
	messages := messageService.NewMessageService(st, h, cfg.MaxMessageLength, cfg.HistoryLimit)

	var auth *services.AuthService
	if cfg.AuthEnabled() {
		auth = services.NewAuthService(st, cfg.JWTSecret, cfg.TokenTTL)
	}

	gw := gateway.New(gateway.Deps{
		Hub:      h,
		Channels: st,
		Messages: messages,
		Typing:   typingAggregator,
		Presence: registry,
	}, gateway.Options{
		QueueSize:       cfg.SendQueueSize,
		MaxFrameBytes:   cfg.MaxFrameBytes,
		FramesPerSecond: cfg.FramesPerSecond,
		FrameBurst:      cfg.FrameBurst,
	})

	router := routes.RegisterAllRoutes(routes.Deps{
		Hub:            h,
		Gateway:        gw,
		Profiles:       profileService.NewProfileService(st, registry),
		Channels:       channelService.NewChannelService(st, h),
		Messages:       messages,
		Auth:           auth,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Info("Server is running", "addr", cfg.HTTPAddr, "auth", cfg.AuthEnabled(), "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
			"websocket-hub": func(ctx context.Context) error {
				typingAggregator.Close()
				return h.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Info("Application exited", "code", exitCode)
	log.Sync()
	os.Exit(exitCode)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/guildboard/guildboard/discord"
	"github.com/guildboard/guildboard/internal/config"
	"github.com/guildboard/guildboard/ratelimit"
	"github.com/guildboard/guildboard/server"
	"github.com/guildboard/guildboard/server/statestore"
	"github.com/guildboard/guildboard/sessions"
	"github.com/guildboard/guildboard/token"
)

const (
	sweepInterval   = 5 * time.Minute
	shutdownTimeout = 5 * time.Second
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("server exited with error")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.Load()
	configureLogging(cfg)
	displayAppname(cfg.GetAppName())

	var redisClient redis.UniversalClient
	if addr := cfg.GetRedisAddr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("redis unreachable at startup, limiter will run degraded")
		}
		cancel()
	}

	srv := server.New(cfg, buildDeps(cfg, redisClient))
	defer srv.Close()

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

// buildDeps constructs the stores and clients at startup. With a Redis
// address configured, sessions and rate limiting are shared across
// instances; otherwise everything is in-process.
func buildDeps(cfg config.Config, redisClient redis.UniversalClient) server.Deps {
	var sessionRepo sessions.Repo
	var limiter ratelimit.Limiter
	if redisClient != nil {
		sessionRepo = sessions.NewRedisRepo(redisClient, cfg.GetRedisKeyPrefix(), cfg.GetSessionTTL())
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.GetRedisKeyPrefix(), cfg.GetRateLimitMax(), cfg.GetRateLimitWindow())
	} else {
		sessionRepo = sessions.NewInMemoryRepo(cfg.GetSessionTTL(), sweepInterval)
		limiter = ratelimit.NewMemoryLimiter(cfg.GetRateLimitMax(), cfg.GetRateLimitWindow(), sweepInterval)
	}

	return server.Deps{
		Sessions: sessionRepo,
		States:   statestore.New(cfg.GetStateTTL(), cfg.GetStateCapacity(), cfg.GetStateEvictFraction(), sweepInterval),
		Tokens:   token.New(cfg, sessionRepo),
		Discord:  discord.New(cfg),
		Limiter:  limiter,
	}
}

func configureLogging(cfg config.Config) {
	if cfg.GetEnv() == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "buspass/internal/config"
	intdb "buspass/internal/db"
	"buspass/internal/events"
	router "buspass/internal/http"
	"buspass/internal/http/handlers"
	"buspass/internal/logger"
	"buspass/internal/otp"

	log "github.com/sirupsen/logrus"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Setup(env.LogFile, env.LogLevel)

	conn, err := intconfig.ConnectDB(env)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer intconfig.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := intdb.EnsureSchema(ctx, conn); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	codes, closeCodes := otpStore(ctx, env.RedisAddr)
	defer closeCodes()

	bus := events.NewBus(events.NewLogrusAdapter(log.StandardLogger()))
	notifier := events.Notifier{Bus: bus, Senders: []events.Sender{events.SMSSender{}, events.EmailSender{}}}
	workers, err := notifier.Run(ctx)
	if err != nil {
		log.Fatalf("start notifier: %v", err)
	}

	r := router.NewRouter(env, handlers.Handler{
		DB:            conn,
		Secret:        []byte(env.JWTSecret),
		OTP:           codes,
		OTPTTL:        env.OTPTTL,
		SearchTimeout: env.SearchTimeout,
		Events:        bus,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	if err := bus.Close(); err != nil {
		log.Errorf("close event bus: %v", err)
	}
	workers.Wait()

	log.Info("server stopped")
}

// otpStore prefers Redis when configured and reachable, otherwise keeps codes in memory.
func otpStore(ctx context.Context, addr string) (otp.Store, func()) {
	if addr == "" {
		return otp.NewMemoryStore(0), func() {}
	}
	rs := otp.NewRedisStore(addr)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		log.WithError(err).Warn("redis unavailable, using in-memory OTP store")
		_ = rs.Close()
		return otp.NewMemoryStore(0), func() {}
	}
	return rs, func() { _ = rs.Close() }
}

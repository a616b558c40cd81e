package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/health"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/i18n"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/mail"
	mailrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/mail/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

func main() {
	setting, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(setting.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service", "app", setting.AppName)

	codec, err := auth.NewTokenCodec(setting.Auth())
	if err != nil {
		sugar.Fatalf("token codec: %v", err)
	}
	bundle, err := i18n.NewBundle(setting.SupportedLocales, setting.DefaultLocale)
	if err != nil {
		sugar.Fatalf("i18n: %v", err)
	}
	proxies, err := router.ParseTrustedProxies(setting.TrustedProxies)
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	db, err := database.Connect(setting.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db.DB); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}

	ids := utilities.NewIDGenerator(setting.SnowflakeNode)
	hasher := password.Bcrypt{Cost: password.DefaultCost}
	store := func(scope *database.Scope) auth.UserStore { return userrepo.NewUserRepo(scope) }

	sender := mail.NewSender(setting.SMTP, sugar)
	worker := mail.NewWorker(mailrepo.NewOutboxRepo(db), sender, setting.Mail, setting.AppName, sugar)
	queue := mail.NewQueue(ids, worker.Notify)

	users := user.NewUserService(user.SQLRepo, hasher)
	authSvc := auth.NewService(auth.NewVerifier(hasher, store), codec, users, queue)

	handler := router.RegisterRoutes(router.Deps{
		Logger:         sugar,
		DB:             db,
		Bundle:         bundle,
		IDs:            ids,
		Auth:           auth.NewHandler(authSvc, sugar),
		Users:          user.NewHandler(users, sugar),
		Guard:          auth.NewMiddleware(auth.NewAuthenticator(codec, store), sugar),
		LoginRateLimit: setting.LoginRateLimit,
		LoginRateBurst: setting.LoginRateBurst,
		Proxies:        proxies,
	})

	var bg sync.WaitGroup
	bg.Add(2)
	go func() {
		defer bg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer bg.Done()
		health.NewPinger(db, setting.HealthCheckInterval, sugar).Run(ctx)
	}()

	srv := &http.Server{
		Addr:              setting.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		sugar.Infow("http server listening", "addr", setting.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	bg.Wait()

	sugar.Info("goodbye")
}

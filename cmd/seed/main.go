package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
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

	db, err := database.Connect(setting.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sess := appctx.New(database.NewScope(db), nil)
	svc := user.NewUserService(user.SQLRepo, nil)
	err = sess.Scope().InTx(ctx, func(ctx context.Context) error {
		for _, in := range user.SeedUsers {
			created, err := svc.EnsureUser(ctx, sess, in)
			if err != nil {
				return fmt.Errorf("seed %s: %w", in.Email, err)
			}
			if created {
				sugar.Infow("user created", "email", in.Email)
			}
		}
		return nil
	})
	if err != nil {
		sugar.Fatalf("seed: %v", err)
	}
	sugar.Info("seed done")
}

// Command seed-admin promotes an existing auth user to a platform role.
//
//	seed-admin -user <uuid> [-role super_admin] [-apply-schema]
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"zamora/config"
	"zamora/internal/authz"
	"zamora/internal/store"
	"zamora/internal/util"
)

func main() {
	userID := flag.String("user", "", "auth user id to promote")
	role := flag.String("role", authz.RoleSuperAdmin, "platform role to grant")
	applySchema := flag.Bool("apply-schema", false, "create missing tables before promoting")
	flag.Parse()

	cfg := config.Load()
	if err := util.InitLogger(cfg.Server.Env, cfg.Observ.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	if *userID == "" {
		logger.Fatal("-user is required")
	}
	if !authz.KnownRole(*role) {
		logger.Fatal("unknown role", zap.String("role", *role))
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *applySchema {
		if err := db.ApplySchema(ctx); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		logger.Info("Schema applied")
	}

	if err := db.UpdateProfileRole(ctx, *userID, *role); err != nil {
		logger.Fatal("Failed to update profile role", zap.String("user_id", *userID), zap.Error(err))
	}
	logger.Info("Profile promoted", zap.String("user_id", *userID), zap.String("role", *role))
}

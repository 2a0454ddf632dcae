package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/config"
	"github.com/swimpace/backend/internal/database"
	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/operator"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Environment)
	defer logger.Sync()
	log := logger.Named("seed")

	db, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.Close()

	name := os.Getenv("OPERATOR_NAME")
	if name == "" {
		name = operator.DefaultName
	}

	pin := os.Getenv("OPERATOR_PIN")
	if pin == "" {
		pin = "0000"
		log.Warn("using default operator pin; set OPERATOR_PIN in production")
	}

	if err := operator.NewPostgresDirectory(db).CreateOrUpdate(context.Background(), name, pin); err != nil {
		log.Fatal("failed to create operator account", logger.ErrorField(err))
	}

	log.Info("operator account created/updated", zap.String("name", name))
}

package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/hotseatlive/hotseat-backend/internal/config"
	"github.com/hotseatlive/hotseat-backend/internal/engine"
	"github.com/hotseatlive/hotseat-backend/internal/httpapi"
	"github.com/hotseatlive/hotseat-backend/internal/hub"
	"github.com/hotseatlive/hotseat-backend/internal/questionbank"
	"github.com/hotseatlive/hotseat-backend/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	sets, err := questionbank.Load(cfg.QuestionsFile, cfg.Ladder.Size())
	if err != nil {
		logger.Fatal("question bank", zap.String("file", cfg.QuestionsFile), zap.Error(err))
	}

	seed := engine.NewState(cfg.Ladder)
	seed.PhoneTimerSec = cfg.PhoneTimerSec
	for _, set := range sets {
		_, next, err := engine.Apply(seed, engine.Command{Type: engine.CmdAddQuestionSet, Set: set})
		if err != nil {
			logger.Fatal("seed question set", zap.String("set", set.SetID), zap.Error(err))
		}
		seed = next
	}

	var st store.Store = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		st = pg
	}

	ctx := context.Background()
	h := hub.NewHub(ctx, st, logger)

	handler := httpapi.SetupRoutes(h, seed, logger)

	logger.Info("listening",
		zap.String("port", cfg.Port),
		zap.Int("ladder", cfg.Ladder.Size()),
		zap.Int("sets", len(sets)))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

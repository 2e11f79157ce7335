package main

import (
	"net/http"

	"github.com/joho/godotenv"

	"github.com/chattu/chattu-backend/config"
	"github.com/chattu/chattu-backend/handlers"
	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/realtime"
	"github.com/chattu/chattu-backend/repository"
	"github.com/chattu/chattu-backend/uploads"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Err(err).Msg("no .env file loaded")
	}

	cfg := config.LoadConfig()

	db, err := repository.ConnectMongoDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatalf("connecting to MongoDB failed: %v", err)
	}
	stores := repository.NewStores(db)

	store, err := uploads.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logger.Fatalf("preparing upload dir failed: %v", err)
	}

	hub := realtime.NewHub(stores.Messages)
	defer hub.Shutdown()

	h := handlers.New(cfg, hub, stores, store)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("server running")
	if err := http.ListenAndServe(addr, h.NewRouter()); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}

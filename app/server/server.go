package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"lawrag/app/api"
	"lawrag/model"
	"lawrag/store"
	"lawrag/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
	embedCfg   types.EmbedConfig
	llmCfg     types.LLMConfig
	uploadDir  string
}

func NewServer(addr string, embedCfg types.EmbedConfig, llmCfg types.LLMConfig, uploadDir string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
		embedCfg:   embedCfg,
		llmCfg:     llmCfg,
		uploadDir:  uploadDir,
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr, s.embedCfg.Dim)
	if err != nil {
		log.Fatal("error to connect to Postgres database", err)
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables", err)
	}

	embedder := model.NewOpenAIEmbedder(s.embedCfg)

	var (
		app            = fiber.New(config)
		checkHandler   = api.NewCheckHandler()
		requestHandler = api.NewRequestHandler(pool, embedder, s.llmCfg, s.uploadDir)
		check          = app.Group("/check")
		apiv1          = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/search", requestHandler.HandleSearch)
	apiv1.Post("/answer", requestHandler.HandleAnswer)
	apiv1.Post("/documents", requestHandler.HandleUpload)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"lawrag/loader/service"
	"lawrag/model"
	"lawrag/store"
	"lawrag/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	ctx := context.Background()

	cfg := types.ConfigFromEnv()
	embedCfg := types.EmbedConfigFromEnv()

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr, embedCfg.Dim)
	if err != nil {
		log.Fatal("error to connect to Postgres database", err)
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables", err)
	}

	tokenizer, err := model.NewTiktokenTokenizer(cfg.Encoding)
	if err != nil {
		log.Fatal("error to load tokenizer encoding", err)
	}

	chunker := model.NewChunker(tokenizer, cfg)
	embedder := model.NewOpenAIEmbedder(embedCfg)

	service.New(pool, chunker, embedder, cfg).Run()

	log.Println("Closing database connection pool...")
	if err := pool.Close(); err != nil {
		log.Printf("error closing pool: %v\n", err)
	}
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
}

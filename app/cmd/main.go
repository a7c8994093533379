package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"lawrag/app/server"
	"lawrag/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	s := server.NewServer(
		os.Getenv("SERVER_ADDR"),
		types.EmbedConfigFromEnv(),
		types.LLMConfigFromEnv(),
		types.ConfigFromEnv().SourceDir,
	)

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
}

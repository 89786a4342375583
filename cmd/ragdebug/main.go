// Command ragdebug exercises the whole pipeline once with a fixed query,
// printing the answer. Useful after credential or index changes.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/HammadAli08/Portfolio-backend/internal/config"
	"github.com/HammadAli08/Portfolio-backend/internal/logger"
	"github.com/HammadAli08/Portfolio-backend/internal/rag"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	fmt.Println("Initializing pipeline...")
	pipeline, err := rag.NewPipeline(cfg)
	if err != nil {
		log.Fatal("Failed to initialize pipeline:", err)
	}
	fmt.Println("Pipeline initialized successfully.")

	fmt.Println("Testing query 'Hello'...")
	response, err := pipeline.Answer(context.Background(), "Hello")
	if err != nil {
		log.Fatal("Failed to get response:", err)
	}
	fmt.Printf("Response: %s\n", response)
}

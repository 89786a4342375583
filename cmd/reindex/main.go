// Command reindex rebuilds the Pinecone index from the profile data
// directory: credential check, index validation, batched upload, smoke-test
// queries. Exits nonzero on failure so it can gate deploys.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

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

	fmt.Println("Pinecone Vector Store Initialization")

	if rag.NewIndexBuilder(cfg).BuildIndex(context.Background()) {
		fmt.Printf("Index %q is ready with your portfolio data.\n", cfg.PineconeIndexName)
		return
	}

	fmt.Println("Initialization failed, check the errors above.")
	os.Exit(1)
}

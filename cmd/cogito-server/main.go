package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codelegend/cogito/internal/config"
	"github.com/codelegend/cogito/internal/conversation"
	"github.com/codelegend/cogito/internal/extract"
	"github.com/codelegend/cogito/internal/knowledge"
	"github.com/codelegend/cogito/internal/llm"
	"github.com/codelegend/cogito/internal/rag"
	"github.com/codelegend/cogito/internal/reasoning"
	"github.com/codelegend/cogito/internal/server"
	"github.com/codelegend/cogito/internal/storage/sqlite"
	"github.com/codelegend/cogito/internal/vector"
	"github.com/codelegend/cogito/web/handlers"
)

// embeddingDims matches nomic-embed-text; the pgvector column is sized to it.
const embeddingDims = 768

const extractionQueueDepth = 64

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (optional)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfigFromFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	store, err := sqlite.NewStore(cfg.Storage.DataPath + "/cogito.db")
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	generator, err := llm.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize text generator: %v", err)
	}
	embedder, err := llm.NewEmbeddingGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize embedding generator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	graph := knowledge.NewGraph(store)
	if err := graph.Load(ctx); err != nil {
		log.Fatalf("Failed to load knowledge graph: %v", err)
	}

	var index vector.Index
	if cfg.Storage.StorageEngine == "postgres" {
		pgIndex, err := vector.NewPostgresIndex(cfg.Storage.PostgresDSN, embedder, embeddingDims)
		if err != nil {
			log.Fatalf("Failed to initialize pgvector index: %v", err)
		}
		defer pgIndex.Close()
		index = pgIndex
	} else {
		memIndex := vector.NewMemoryIndex(embedder, store)
		if err := memIndex.Load(ctx); err != nil {
			log.Fatalf("Failed to load vector index: %v", err)
		}
		index = memIndex
	}

	conversations := conversation.NewLog(conversation.DefaultRetention, store)
	if err := conversations.Load(ctx); err != nil {
		log.Fatalf("Failed to load conversation log: %v", err)
	}

	// Background entity extraction from conversation turns.
	extractor := extract.NewKnowledgeExtractor(graph)
	turns := make(chan extract.Turn, extractionQueueDepth)
	go extractor.Run(ctx, turns)

	retriever := rag.NewRetriever(index, graph, conversations, cfg.Retrieval)
	orchestrator := reasoning.NewOrchestrator(generator, retriever, cfg.Reasoning.HistoryLimit)

	addr, _ := server.Start(ctx, handlers.Deps{
		Config:        cfg,
		Orchestrator:  orchestrator,
		Retriever:     retriever,
		Graph:         graph,
		Index:         index,
		Conversations: conversations,
		Turns:         turns,
	})
	log.Printf("Cogito API running at http://%s (model: %s)", addr, generator.GetModel())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	close(turns)
	time.Sleep(1 * time.Second)
}

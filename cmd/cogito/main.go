// Command cogito is a terminal client for the reasoning engine. It answers
// a single question given as arguments, or runs an interactive loop when
// invoked without any.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/codelegend/cogito/internal/config"
	"github.com/codelegend/cogito/internal/conversation"
	"github.com/codelegend/cogito/internal/extract"
	"github.com/codelegend/cogito/internal/knowledge"
	"github.com/codelegend/cogito/internal/llm"
	"github.com/codelegend/cogito/internal/rag"
	"github.com/codelegend/cogito/internal/reasoning"
	"github.com/codelegend/cogito/internal/storage/sqlite"
	"github.com/codelegend/cogito/internal/vector"
	"github.com/codelegend/cogito/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (optional)")
	sessionID := flag.String("session", "cli", "Conversation session ID")
	strategy := flag.String("strategy", "", "Pin a reasoning strategy (chain_of_thought, react, step_by_step, problem_decomposition, reflection)")
	force := flag.Bool("force", false, "Apply structured reasoning even to simple questions")
	showSteps := flag.Bool("steps", false, "Print intermediate reasoning steps")
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

	if *strategy != "" && !types.IsValidStrategy(types.Strategy(*strategy)) {
		log.Fatalf("Unknown strategy %q", *strategy)
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

	ctx := context.Background()

	graph := knowledge.NewGraph(store)
	if err := graph.Load(ctx); err != nil {
		log.Fatalf("Failed to load knowledge graph: %v", err)
	}

	index := vector.NewMemoryIndex(embedder, store)
	if err := index.Load(ctx); err != nil {
		log.Fatalf("Failed to load vector index: %v", err)
	}

	conversations := conversation.NewLog(conversation.DefaultRetention, store)
	if err := conversations.Load(ctx); err != nil {
		log.Fatalf("Failed to load conversation log: %v", err)
	}

	retriever := rag.NewRetriever(index, graph, conversations, cfg.Retrieval)
	orchestrator := reasoning.NewOrchestrator(generator, retriever, cfg.Reasoning.HistoryLimit)
	extractor := extract.NewKnowledgeExtractor(graph)

	opts := reasoning.Options{Strategy: types.Strategy(*strategy)}
	if *force {
		v := true
		opts.ForceReasoning = &v
	}

	ask := func(question string) {
		recordMessage(ctx, conversations, *sessionID, "user", question)
		reply, chain, err := orchestrator.Respond(ctx, question, *sessionID, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		recordMessage(ctx, conversations, *sessionID, "assistant", reply)

		if _, err := extractor.Apply(ctx, question+"\n"+reply, *sessionID); err != nil {
			log.Printf("entity extraction failed: %v", err)
		}

		if chain != nil && *showSteps {
			fmt.Printf("[%s, confidence %.2f]\n", chain.Strategy, chain.ConfidenceScore)
			for _, step := range chain.Steps {
				fmt.Printf("  %d. %s\n", step.StepNumber, step.Thought)
			}
			fmt.Println()
		}
		fmt.Println(reply)
	}

	if question := strings.TrimSpace(strings.Join(flag.Args(), " ")); question != "" {
		ask(question)
		return
	}

	fmt.Printf("cogito interactive mode (model %s). Ctrl-D to exit.\n", generator.GetModel())
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		ask(line)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read failed: %v", err)
	}
}

func recordMessage(ctx context.Context, conv *conversation.Log, sessionID, role, content string) {
	if err := conv.Append(ctx, sessionID, role, content); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record %s message: %v\n", role, err)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"budgetree/internal/adapters/claudecli"
	"budgetree/internal/adapters/filesystem"
	mcpadapter "budgetree/internal/adapters/mcp"
	"budgetree/internal/config"
)

func main() {
	dbFlag := flag.String("db", config.DBPath(), "path to the budget database")
	modelFlag := flag.String("model", config.SearchModel(), "claude model used for catalog search")
	verbose := flag.Bool("verbose", false, "log debug output to stderr")
	flag.Parse()

	// stdout carries the protocol
	config.SetupLogging(os.Stderr, *verbose)

	store, err := config.OpenStore(*dbFlag)
	if err != nil {
		log.Fatalf("budgetree-mcp: %v", err)
	}
	defer store.Close()

	searcher := claudecli.NewSearcher(claudecli.WithModel(*modelFlag))
	docs := filesystem.NewDocumentStore()

	mcpServer := server.NewMCPServer(
		"budgetree-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, store, searcher)
	mcpadapter.RegisterWriteTools(mcpServer, store, searcher, docs)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Printf("budgetree-mcp: %v", err)
		store.Close()
		os.Exit(1)
	}
}

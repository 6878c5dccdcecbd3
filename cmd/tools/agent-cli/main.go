// cmd/tools/agent-cli/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"jobboard-agent/internal/agentclient"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/intent"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	baseURL := fs.String("url", envOr("AGENT_SERVER_URL", agentclient.DefaultBaseURL), "Agent server base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	verbose := fs.Bool("v", false, "Log requests to stderr")
	_ = fs.Parse(os.Args[2:])
	input := strings.Join(fs.Args(), " ")

	log := logger.NewNoOpLogger()
	if *verbose {
		log = logger.NewFromOptions(logger.Options{Level: "debug", Format: "console", Output: "stderr"})
	}
	client := agentclient.New(*baseURL, *timeout, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var (
		out interface{}
		err error
	)
	switch cmd {
	case "intent":
		out, err = client.Intent(ctx, input)
	case "run":
		out, err = client.Run(ctx, input)
	case "undo":
		out, err = client.Undo(ctx)
	case "health":
		err = client.Health(ctx)
		out = map[string]bool{"ok": err == nil}
	case "parse":
		// offline, no server needed
		out = intent.Classify(input)
	case "help", "-h", "--help":
		help()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func help() {
	fmt.Println("Usage: agent-cli <command> [flags] [text...]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  intent <text>   Classify a command on the server")
	fmt.Println("  run <text>      Classify and execute a command on the board")
	fmt.Println("  undo            Revert the last board edit")
	fmt.Println("  health          Check the server is up")
	fmt.Println("  parse <text>    Classify locally without a server")
	fmt.Println("")
	fmt.Println("Flags:")
	fmt.Println("  -url string        Agent server base URL (default $AGENT_SERVER_URL or " + agentclient.DefaultBaseURL + ")")
	fmt.Println("  -timeout duration  Request timeout (default 10s)")
	fmt.Println("  -v                 Log requests to stderr")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println(`  agent-cli run "move Acme Corp to Interview"`)
	fmt.Println(`  agent-cli intent "followup Startup X 2025-01-15"`)
}

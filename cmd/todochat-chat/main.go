// ABOUTME: Terminal chat client for the todochat server.
// ABOUTME: REPL with simulated streaming output, JWT auth, and TOML config.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"

	"github.com/tansell/todochat/internal/api"
	"github.com/tansell/todochat/internal/client"
)

// clientConfig is the TOML config for the chat client.
type clientConfig struct {
	Server struct {
		URL string `toml:"url"`
	} `toml:"server"`
	User   string `toml:"user"`
	Token  string `toml:"token"`
	Stream struct {
		ChunkSize    int `toml:"chunk_size"`
		ChunkDelayMS int `toml:"chunk_delay_ms"`
	} `toml:"stream"`
}

// getClientConfigPath returns the path to the chat client config file.
func getClientConfigPath() string {
	if envPath := os.Getenv("TODOCHAT_CHAT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "chat.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "todochat", "chat.toml")
}

// loadClientConfig reads the TOML config, then applies env overrides.
// A missing file is fine; everything has an env or flag fallback.
func loadClientConfig() (*clientConfig, error) {
	var cfg clientConfig

	path := getClientConfigPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if url := os.Getenv("TODOCHAT_SERVER"); url != "" {
		cfg.Server.URL = url
	}
	if user := os.Getenv("TODOCHAT_USER"); user != "" {
		cfg.User = user
	}
	if token := os.Getenv("TODOCHAT_TOKEN"); token != "" {
		cfg.Token = token
	}

	return &cfg, nil
}

func main() {
	serverFlag := flag.String("server", "", "Server URL (overrides config)")
	userFlag := flag.String("user", "", "User id (overrides config)")
	conversationFlag := flag.String("conversation", "", "Resume an existing conversation id")
	flag.Parse()

	cfg, err := loadClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *serverFlag != "" {
		cfg.Server.URL = *serverFlag
	}
	if *userFlag != "" {
		cfg.User = *userFlag
	}
	if cfg.Server.URL == "" {
		cfg.Server.URL = "http://localhost:8080"
	}
	if cfg.User == "" {
		fmt.Fprintln(os.Stderr, "Error: no user configured (set user in chat.toml, TODOCHAT_USER, or --user)")
		os.Exit(1)
	}
	if cfg.Token == "" {
		fmt.Fprintln(os.Stderr, "Error: no token configured (set token in chat.toml or TODOCHAT_TOKEN)")
		fmt.Fprintln(os.Stderr, "Mint one with: todochat-server token --user "+cfg.User)
		os.Exit(1)
	}

	if err := runREPL(cfg, *conversationFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runREPL(cfg *clientConfig, conversationID string) error {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	cyan.Printf("todochat connected to %s as %s\n", cfg.Server.URL, cfg.User)
	gray.Println("Type a message, /new for a fresh conversation, /list for history, /quit to exit.")
	gray.Println("Ctrl+C cancels a streaming reply.")
	fmt.Println()

	// done is signaled once per send attempt, whatever its outcome
	done := make(chan struct{}, 1)

	callbacks := client.Callbacks{
		OnChunk: func(chunk string) {
			fmt.Print(chunk)
		},
		OnComplete: func(resp *api.ChatResponse) {
			fmt.Println()
			if resp.Fallback {
				yellow.Println("(offline assistant answered; the backend was unreachable)")
			}
			conversationID = resp.ConversationID
			done <- struct{}{}
		},
		OnError: func(err error) {
			red.Printf("error: %v\n", err)
			done <- struct{}{}
		},
	}

	opts := client.Options{}
	if cfg.Stream.ChunkSize > 0 {
		opts.ChunkSize = cfg.Stream.ChunkSize
	}
	if cfg.Stream.ChunkDelayMS > 0 {
		opts.ChunkDelay = time.Duration(cfg.Stream.ChunkDelayMS) * time.Millisecond
	}
	presenter := client.New(cfg.Server.URL, cfg.Token, callbacks, opts)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		gray.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/new":
			conversationID = ""
			presenter.Reset()
			gray.Println("started a new conversation")
			continue
		case line == "/list":
			if err := printConversations(cfg); err != nil {
				red.Printf("error: %v\n", err)
			}
			continue
		case strings.HasPrefix(line, "/"):
			red.Printf("unknown command: %s\n", line)
			continue
		}

		presenter.Send(context.Background(), cfg.User, line, conversationID)

		// Wait for the attempt to finish; Ctrl+C cancels the stream
		waiting := true
		for waiting {
			select {
			case <-done:
				waiting = false
			case <-sigCh:
				presenter.Cancel()
				waitForTerminal(presenter)
				// Drain a completion that raced the cancel
				select {
				case <-done:
				default:
				}
				fmt.Println()
				yellow.Println("(cancelled)")
				waiting = false
			}
		}
		presenter.Reset()
		fmt.Println()
	}
}

// waitForTerminal blocks briefly until the presenter settles after Cancel.
func waitForTerminal(p *client.Presenter) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		switch p.Status() {
		case client.StatusCancelled, client.StatusComplete, client.StatusError, client.StatusIdle:
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// printConversations lists the user's conversations, newest first.
func printConversations(cfg *clientConfig) error {
	url := fmt.Sprintf("%s/api/%s/conversations", cfg.Server.URL, cfg.User)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var list api.ListConversationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return err
	}

	if len(list.Conversations) == 0 {
		fmt.Println("no conversations yet")
		return nil
	}

	gray := color.New(color.FgHiBlack)
	for _, c := range list.Conversations {
		fmt.Printf("%s  %s", c.ID, c.Title)
		gray.Printf("  (%d messages, updated %s)\n", c.MessageCount, c.UpdatedAt)
	}
	return nil
}

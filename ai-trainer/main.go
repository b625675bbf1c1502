package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Self-play benchmark client. It drives the game server through the same
// HTTP API the frontend uses: configure the engine, start AI-vs-AI games,
// poll until each one is decided and report the aggregate outcome.

type bencher struct {
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	gameTimeout  time.Duration
	logger       *log.Logger
}

type statusResponse struct {
	Status    string         `json:"status"`
	Winner    string         `json:"winner"`
	MoveCount int            `json:"move_count"`
	History   []historyEntry `json:"history"`
	Config    map[string]any `json:"config"`
}

type historyEntry struct {
	Move          string  `json:"move"`
	Player        string  `json:"player"`
	ElapsedMs     float64 `json:"elapsed_ms"`
	IsAi          bool    `json:"is_ai"`
	CapturedCount int     `json:"captured_count"`
}

type gameResult struct {
	winner    string
	plies     int
	avgMoveMs float64
	duration  time.Duration
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "game server base URL")
	games := flag.Int("games", 10, "number of self-play games")
	depth := flag.Int("depth", 0, "search depth override, 0 keeps the server's setting")
	poll := flag.Duration("poll", 200*time.Millisecond, "status poll interval")
	timeout := flag.Duration("game-timeout", 10*time.Minute, "abort a game that runs longer than this")
	flag.Parse()

	logger := log.New(os.Stdout, "[trainer] ", log.LstdFlags)
	b := &bencher{
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      *addr,
		pollInterval: *poll,
		gameTimeout:  *timeout,
		logger:       logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.waitForServer(ctx); err != nil {
		logger.Fatalf("server not reachable at %s: %v", b.baseURL, err)
	}
	if *depth > 0 {
		if err := b.setSearchDepth(ctx, *depth); err != nil {
			logger.Fatalf("failed to set search depth: %v", err)
		}
		logger.Printf("search depth set to %d", *depth)
	}

	var results []gameResult
	whiteWins, blackWins := 0, 0
	for i := 0; i < *games; i++ {
		if ctx.Err() != nil {
			break
		}
		result, err := b.playGame(ctx)
		if err != nil {
			logger.Printf("game %d aborted: %v", i+1, err)
			break
		}
		results = append(results, result)
		if result.winner == "White" {
			whiteWins++
		} else {
			blackWins++
		}
		logger.Printf("game %d: %s won in %d plies (%.0fms/move, %s total)",
			i+1, result.winner, result.plies, result.avgMoveMs, result.duration.Round(time.Second))
	}

	if len(results) == 0 {
		logger.Printf("no games finished")
		return
	}
	totalPlies := 0
	totalMoveMs := 0.0
	for _, r := range results {
		totalPlies += r.plies
		totalMoveMs += r.avgMoveMs
	}
	logger.Printf("summary: %d games, White %d / Black %d, avg %.1f plies, avg %.0fms/move",
		len(results), whiteWins, blackWins,
		float64(totalPlies)/float64(len(results)),
		totalMoveMs/float64(len(results)))
}

func (b *bencher) waitForServer(ctx context.Context) error {
	deadline := time.Now().Add(15 * time.Second)
	for {
		err := b.get(ctx, "/api/ping", nil)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (b *bencher) setSearchDepth(ctx context.Context, depth int) error {
	var status statusResponse
	if err := b.get(ctx, "/api/status", &status); err != nil {
		return err
	}
	config := status.Config
	if config == nil {
		return fmt.Errorf("status response carries no config")
	}
	config["ai_depth"] = depth
	payload := map[string]any{"config": config}
	return b.post(ctx, "/api/settings", payload, nil)
}

func (b *bencher) playGame(ctx context.Context) (gameResult, error) {
	start := time.Now()
	payload := map[string]any{
		"settings": map[string]any{"mode": "ai_vs_ai"},
	}
	if err := b.post(ctx, "/api/start", payload, nil); err != nil {
		return gameResult{}, err
	}

	deadline := time.Now().Add(b.gameTimeout)
	for {
		select {
		case <-ctx.Done():
			return gameResult{}, ctx.Err()
		case <-time.After(b.pollInterval):
		}
		if time.Now().After(deadline) {
			return gameResult{}, fmt.Errorf("game still running after %s", b.gameTimeout)
		}
		var status statusResponse
		if err := b.get(ctx, "/api/status", &status); err != nil {
			return gameResult{}, err
		}
		if status.Status != "white_won" && status.Status != "black_won" {
			continue
		}
		totalMs := 0.0
		for _, entry := range status.History {
			totalMs += entry.ElapsedMs
		}
		avg := 0.0
		if status.MoveCount > 0 {
			avg = totalMs / float64(status.MoveCount)
		}
		return gameResult{
			winner:    status.Winner,
			plies:     status.MoveCount,
			avgMoveMs: avg,
			duration:  time.Since(start),
		}, nil
	}
}

func (b *bencher) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return err
	}
	return b.do(req, out)
}

func (b *bencher) post(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, out)
}

func (b *bencher) do(req *http.Request, out any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s (%s)", req.Method, req.URL.Path, resp.Status, bytes.TrimSpace(body))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

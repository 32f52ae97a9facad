// main.go - Traffic seeding tool for Trackline
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"log/slog"

	"github.com/google/uuid"

	v1 "trackline/api/v1"
	"trackline/internal/events"
)

// SeedConfig holds the configuration for the traffic seeder
type SeedConfig struct {
	BaseURL     string
	Origin      string
	Concurrency int
	Count       int
	Timeout     time.Duration
}

var (
	sentCount   int64
	failedCount int64
)

var seedPaths = []string{
	"/",
	"/products",
	"/pricing",
	"/about",
	"/blog",
	"/blog/launch",
	"/contact",
	"/docs",
}

var seedUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "Base URL of the API")
	concurrency := flag.Int("c", 4, "Number of concurrent clients")
	count := flag.Int("n", 500, "Total number of events to send")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	origin := os.Getenv("TRACKLINE_ORIGIN")
	if origin == "" {
		origin = "https://example.com"
	}

	config := &SeedConfig{
		BaseURL:     *baseURL,
		Origin:      origin,
		Concurrency: *concurrency,
		Count:       *count,
		Timeout:     *timeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		fmt.Printf("Received signal %v, shutting down...\n", sig)
		cancel()
	}()

	logger.Info("Seeding traffic",
		slog.String("url", config.BaseURL),
		slog.Int("count", config.Count),
		slog.Int("concurrency", config.Concurrency))

	start := time.Now()
	seed(ctx, config, logger)

	fmt.Printf("Done: sent %d events (%d failed) in %v\n",
		atomic.LoadInt64(&sentCount), atomic.LoadInt64(&failedCount), time.Since(start).Round(time.Millisecond))
}

// seed runs the worker pool until the requested number of events has been sent
func seed(ctx context.Context, config *SeedConfig, logger *slog.Logger) {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < config.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{Timeout: config.Timeout}
			randGen := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for range jobs {
				// Each iteration simulates a short visitor session
				sessionID := uuid.New().String()
				ip := fmt.Sprintf("203.0.113.%d", randGen.Intn(250)+1)
				userAgent := seedUserAgents[randGen.Intn(len(seedUserAgents))]

				for _, params := range buildSession(randGen, sessionID) {
					if ctx.Err() != nil {
						return
					}
					if err := sendEvent(client, config, params, ip, userAgent); err != nil {
						atomic.AddInt64(&failedCount, 1)
						logger.Warn("Failed to send event", slog.Any("error", err))
						continue
					}
					atomic.AddInt64(&sentCount, 1)
				}
			}
		}(i)
	}

	sessions := config.Count / 3
	if sessions < 1 {
		sessions = 1
	}
	for i := 0; i < sessions; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// buildSession generates the event sequence for one simulated visitor
func buildSession(randGen *rand.Rand, sessionID string) []v1.CreateEventParams {
	path := seedPaths[randGen.Intn(len(seedPaths))]

	session := []v1.CreateEventParams{
		{EventName: events.EventPageview, Path: path, SessionID: sessionID},
	}

	// Roughly half the visitors enter the experiment funnel
	if randGen.Float64() < 0.5 {
		variant := v1.VariantA
		if randGen.Float64() < 0.5 {
			variant = v1.VariantB
		}
		metadata := map[string]interface{}{events.MetadataVariantKey: variant}

		session = append(session, v1.CreateEventParams{
			EventName: events.EventExperimentView, Path: path, SessionID: sessionID, Metadata: metadata,
		})
		if randGen.Float64() < 0.3 {
			session = append(session, v1.CreateEventParams{
				EventName: events.EventConversion, Path: path, SessionID: sessionID, Metadata: metadata,
			})
		}
	} else if randGen.Float64() < 0.4 {
		session = append(session, v1.CreateEventParams{
			EventName: events.EventPageview, Path: seedPaths[randGen.Intn(len(seedPaths))], SessionID: sessionID,
		})
	}

	return session
}

// sendEvent posts a single event to the ingestion endpoint
func sendEvent(client *http.Client, config *SeedConfig, params v1.CreateEventParams, ip, userAgent string) error {
	jsonData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	req, err := http.NewRequest("POST", config.BaseURL+"/api/v1/events", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Origin", config.Origin)
	req.Header.Set("X-Forwarded-For", ip)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"legendemer/internal/infra"
)

// geminikey reselects the API key of a running server through
// POST /v1/credentials.
func main() {
	_ = godotenv.Load()

	var (
		keyFlag    string
		serverFlag string
		tokenFlag  string
	)
	flag.StringVar(&keyFlag, "key", "", "Gemini API key (fallbacks to GEMINI_API_KEY)")
	flag.StringVar(&serverFlag, "server", "http://localhost:8080", "base URL of the API server")
	flag.StringVar(&tokenFlag, "token", os.Getenv("CREDENTIALS_ADMIN_TOKEN"), "admin bearer token")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "GEMINI API key is required via -key or environment")
		os.Exit(1)
	}

	logger := infra.NewLoggerTo(os.Stderr, "cli").With().Str("cmd", "geminikey").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := submit(ctx, http.DefaultClient, serverFlag, tokenFlag, key); err != nil {
		logger.Error().Err(err).Msg("failed to replace api key")
		os.Exit(1)
	}
	fmt.Println("GEMINI API key replaced successfully")
}

func submit(ctx context.Context, client *http.Client, server, token, key string) error {
	body, err := json.Marshal(map[string]string{"api_key": key})
	if err != nil {
		return err
	}
	url := strings.TrimRight(server, "/") + "/v1/credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("server answered %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

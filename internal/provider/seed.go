package provider

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SeedSource supplies seeds for the match simulator when no fixed seed is
// configured.
type SeedSource interface {
	Seed(ctx context.Context) (int64, error)
}

// RandomOrgSeeder draws true random seeds from RANDOM.ORG, falling back
// to crypto/rand when the API key is unset or the service is unreachable.
// Simulation runs stay reproducible either way: the drawn seed is logged
// at startup and can be replayed through SIM_SEED.
type RandomOrgSeeder struct {
	apiKey string
	logger *slog.Logger
	client *http.Client
}

// NewRandomOrgSeeder creates a seeder. An empty apiKey skips the API
// entirely.
func NewRandomOrgSeeder(apiKey string, logger *slog.Logger) *RandomOrgSeeder {
	return &RandomOrgSeeder{
		apiKey: apiKey,
		logger: logger,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Seed returns one 63-bit seed.
func (s *RandomOrgSeeder) Seed(ctx context.Context) (int64, error) {
	if s.apiKey == "" {
		return csprngSeed()
	}

	seed, err := s.fetchSeed(ctx)
	if err != nil {
		s.logger.Warn("random.org unavailable, falling back to CSPRNG", "error", err)
		return csprngSeed()
	}
	return seed, nil
}

func (s *RandomOrgSeeder) fetchSeed(ctx context.Context) (int64, error) {
	reqBody := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]interface{}{
			"apiKey":      s.apiKey,
			"n":           2,
			"min":         0,
			"max":         2147483647,
			"replacement": true,
		},
		"id": 1,
	}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.random.org/json-rpc/4/invoke", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("api returned %d", resp.StatusCode)
	}

	var response struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if response.Error != nil {
		return 0, fmt.Errorf("api error: %s", response.Error.Message)
	}
	if len(response.Result.Random.Data) < 2 {
		return 0, fmt.Errorf("api returned %d integers, want 2", len(response.Result.Random.Data))
	}

	// Two 31-bit draws folded into one 62-bit seed.
	return response.Result.Random.Data[0]<<31 | response.Result.Random.Data[1], nil
}

func csprngSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("csprng: %w", err)
	}
	seed := int64(binary.BigEndian.Uint64(buf[:]) &^ (1 << 63))
	return seed, nil
}

package provider

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_FallbackWithoutAPIKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewRandomOrgSeeder("", logger)

	seed, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, seed, int64(0))
}

func TestSeed_SuccessiveDrawsDiffer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewRandomOrgSeeder("", logger)

	a, err := s.Seed(context.Background())
	require.NoError(t, err)
	b, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

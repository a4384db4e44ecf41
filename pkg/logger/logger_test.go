package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInfoIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "workshop-test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithOrderID(ctx, "order-9")
	logg.Info(ctx, "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "workshop-test", entry["service"])
	require.Equal(t, "req-1", entry["request_id"])
	require.Equal(t, "order-9", entry["order_id"])
	require.Equal(t, "hello", entry["message"])
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "workshop-test", Level: zerolog.InfoLevel, Output: &buf})

	logg.Error(context.Background(), "failed", nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "failed", entry["message"])
	require.NotEmpty(t, entry["stack"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

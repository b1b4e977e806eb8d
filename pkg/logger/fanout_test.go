package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanoutHandler(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every sink", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		log := slog.New(newFanoutHandler(
			slog.NewJSONHandler(&a, nil),
			slog.NewJSONHandler(&b, nil),
		))

		log.Info("hello", slog.String("k", "v"))

		require.Contains(t, a.String(), `"msg":"hello"`)
		require.Contains(t, b.String(), `"msg":"hello"`)
		require.Contains(t, b.String(), `"k":"v"`)
	})

	t.Run("level gating is per sink", func(t *testing.T) {
		t.Parallel()

		var info, warnOnly bytes.Buffer
		h := newFanoutHandler(
			slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
			slog.NewJSONHandler(&warnOnly, &slog.HandlerOptions{Level: slog.LevelWarn}),
		)
		log := slog.New(h)

		require.True(t, h.Enabled(context.Background(), slog.LevelInfo))
		log.Info("routine")

		require.Contains(t, info.String(), "routine")
		require.Empty(t, warnOnly.String())
	})

	t.Run("attrs and groups propagate", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(newFanoutHandler(slog.NewJSONHandler(&buf, nil))).
			With(slog.String("app", "auth")).
			WithGroup("req")

		log.Info("done", slog.String("id", "42"))

		require.Contains(t, buf.String(), `"app":"auth"`)
		require.Contains(t, buf.String(), `"req":{"id":"42"}`)
	})
}

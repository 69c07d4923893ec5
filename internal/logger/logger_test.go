package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProdWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("prod", &buf)

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len(), "debug must be filtered in prod")

	l.Info().Str("roll", "R100").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "R100", entry["roll"])
	assert.Equal(t, "students-api", entry["service"])
	assert.Contains(t, entry, "time")
}

func TestNew_StagingWritesJSONAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("staging", &buf)

	l.Debug().Msg("debugging")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_DevWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("dev", &buf)

	l.Debug().Msg("hello console")

	assert.Contains(t, buf.String(), "hello console")
	assert.False(t, json.Valid(buf.Bytes()), "dev output should be human readable, not JSON")
}

func TestNop_DiscardsOutput(t *testing.T) {
	l := Nop()
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter("prod", &buf)

	child := base.GetChildLogger()
	child.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", "abc")
	})
	ctx := child.WithContext(context.Background())

	FromContext(ctx).Info().Msg("from ctx")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["trace_id"])
}

func TestFromRequest_WithoutLoggerNeverNil(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	l := FromRequest(r)
	require.NotNil(t, l)
	l.Info().Msg("does not panic")
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_EscribeNivelYMetadatos(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug")

	l.Log("warn", "pedido rechazado", map[string]any{"user_id": 42, "reason": "stock"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "pedido rechazado", entry["message"])
	assert.EqualValues(t, 42, entry["user_id"])
	assert.Equal(t, "stock", entry["reason"])
}

func TestLog_RespetaNivelMinimo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "error")

	l.Log("info", "no debería salir", nil)
	assert.Zero(t, buf.Len())

	l.Log("error", "sí sale", nil)
	assert.NotZero(t, buf.Len())
}

func TestNop_NoPanica(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Log("error", "x", map[string]any{"a": 1})
		Nop().Info().Msg("y")
	})
}

func TestParseLevel_DesconocidoEsInfo(t *testing.T) {
	assert.Equal(t, "info", parseLevel("verbose").String())
	assert.Equal(t, "trace", parseLevel("trace").String())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\nCONTRACTS_TEST_A=one\nCONTRACTS_TEST_B=\"two words\"\n",
	), 0o644))

	l := NewEnvLoader()
	require.NoError(t, l.Load(path))
	assert.Equal(t, "one", l.Get("CONTRACTS_TEST_A"))
	assert.Equal(t, "two words", l.Get("CONTRACTS_TEST_B"))
	assert.Len(t, l.All(), 2)
}

func TestEnvLoader_LoadMissing(t *testing.T) {
	err := NewEnvLoader().Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestEnvLoader_ProcessEnvWins(t *testing.T) {
	t.Setenv("CONTRACTS_TEST_PRECEDENCE", "process")
	l := NewEnvLoader()
	l.Set("CONTRACTS_TEST_PRECEDENCE", "file")
	assert.Equal(t, "process", l.Get("CONTRACTS_TEST_PRECEDENCE"))
}

func TestEnvLoader_Defaults(t *testing.T) {
	l := NewEnvLoader()
	assert.Equal(t, "fallback", l.GetWithDefault("CONTRACTS_TEST_UNSET", "fallback"))

	_, err := l.GetRequired("CONTRACTS_TEST_UNSET")
	require.Error(t, err)

	l.Set("CONTRACTS_TEST_SET", "v")
	v, err := l.GetRequired("CONTRACTS_TEST_SET")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestRedactSecret(t *testing.T) {
	assert.Equal(t, "", RedactSecret(""))
	assert.Equal(t, "****", RedactSecret("abcd"))
	assert.Equal(t, "abcd****ijkl", RedactSecret("abcdefghijkl"))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "not a url\x7f", RedactURL("not a url\x7f"))
	assert.Equal(t, "ws://localhost:9000/ws", RedactURL("ws://localhost:9000/ws"))
	out := RedactURL("ws://host/ws?api_key=0123456789abcdef&x=1")
	assert.Contains(t, out, "x=1")
	assert.NotContains(t, out, "0123456789abcdef")
}

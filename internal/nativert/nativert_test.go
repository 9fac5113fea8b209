package nativert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalModule is a hand-encoded WASM binary exporting two no-op functions,
// "start" and "stop", both backed by the same empty function body. Used to
// exercise Loader.Open/handle.StartFunc/StopFunc without a build toolchain.
var minimalModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section: () -> ()
	0x03, 0x02, 0x01, 0x00, // function section: func 0 uses type 0
	0x07, 0x10, 0x02, // export section, 2 exports
	0x05, 's', 't', 'a', 'r', 't', 0x00, 0x00, // export "start" -> func 0
	0x04, 's', 't', 'o', 'p', 0x00, 0x00, // export "stop" -> func 0
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b, // code section: one empty body
}

func writeModule(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), minimalModule, 0o644))
}

func TestLoader_OpenAndInvoke(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "plugin.wasm")

	l := New(context.Background())
	defer l.Close()

	h, err := l.Open(context.Background(), dir, "plugin.wasm")
	require.NoError(t, err)
	defer h.Close()

	start, ok := h.StartFunc("start")
	require.True(t, ok)
	assert.NoError(t, start())

	stop, ok := h.StopFunc("stop")
	require.True(t, ok)
	assert.NoError(t, stop())

	_, ok = h.StartFunc("does-not-exist")
	assert.False(t, ok)
}

func TestLoader_OpenMissingFile(t *testing.T) {
	l := New(context.Background())
	defer l.Close()

	_, err := l.Open(context.Background(), t.TempDir(), "nope.wasm")
	assert.Error(t, err)
}

func TestLoader_CloseWithoutOpen(t *testing.T) {
	l := New(context.Background())
	assert.NoError(t, l.Close())
}

func TestLoader_SharesRuntimeAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.wasm")
	writeModule(t, dir, "b.wasm")

	l := New(context.Background())
	defer l.Close()

	ha, err := l.Open(context.Background(), dir, "a.wasm")
	require.NoError(t, err)
	defer ha.Close()

	hb, err := l.Open(context.Background(), dir, "b.wasm")
	require.NoError(t, err)
	defer hb.Close()

	startA, ok := ha.StartFunc("start")
	require.True(t, ok)
	assert.NoError(t, startA())

	startB, ok := hb.StartFunc("start")
	require.True(t, ok)
	assert.NoError(t, startB())
}

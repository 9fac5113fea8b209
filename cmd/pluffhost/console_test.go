package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluffgo/pluffgo/pkg/pluff"
)

func TestRunConsole_LoadListInfo(t *testing.T) {
	pluff.Init()
	defer pluff.Destroy()
	pctx := pluff.NewContext(nil, nil, nil)
	defer pctx.Destroy(context.Background())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.yaml"), []byte("id: com.example.console\nversion: \"1.0\"\n"), 0o644))

	script := strings.Join([]string{
		"load " + dir,
		"list",
		"info com.example.console",
		"exit",
	}, "\n") + "\n"

	var out strings.Builder
	err := runConsole(context.Background(), pctx, strings.NewReader(script), &out)
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "installed com.example.console")
	assert.Contains(t, output, "com.example.console")
	assert.Contains(t, output, "state: INSTALLED")
}

func TestRunConsole_UnknownCommand(t *testing.T) {
	pluff.Init()
	defer pluff.Destroy()
	pctx := pluff.NewContext(nil, nil, nil)
	defer pctx.Destroy(context.Background())

	var out strings.Builder
	err := runConsole(context.Background(), pctx, strings.NewReader("bogus\nexit\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}

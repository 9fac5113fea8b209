// Package nativert implements engine.RuntimeLoader/engine.RuntimeHandle
// against WASM modules loaded through wazero, standing in for the native
// dlopen/dlsym loader described by spec.md §4.2 ("runtime library... exposes
// a start and a stop symbol"). Grounded on
// Andrei-cloud-go_hsm/internal/plugins/manager.go's runtime creation, module
// instantiation and named-export resolution.
package nativert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/pluffgo/pluffgo/internal/engine"
)

// Loader opens WASM runtime libraries. One wazero.Runtime backs every handle
// it opens; modules are independent instances within that runtime, so a
// plug-in's own globals and linear memory stay isolated from its neighbors.
type Loader struct {
	mu  sync.Mutex
	rt  wazero.Runtime
	ctx context.Context
}

// New returns a Loader whose wazero runtime is created lazily on first Open,
// using ctx as the runtime's background context.
func New(ctx context.Context) *Loader {
	return &Loader{ctx: ctx}
}

func (l *Loader) runtime() (wazero.Runtime, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rt != nil {
		return l.rt, nil
	}
	rt := wazero.NewRuntime(l.ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(l.ctx, rt); err != nil {
		rt.Close(l.ctx)
		return nil, fmt.Errorf("instantiating WASI: %w", err)
	}
	l.rt = rt
	return rt, nil
}

// Open compiles and instantiates installDir/relPath as a WASM module and
// returns a handle resolving exported functions by name.
func (l *Loader) Open(ctx context.Context, installDir, relPath string) (engine.RuntimeHandle, error) {
	rt, err := l.runtime()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(installDir, relPath)
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading runtime library %s: %w", path, err)
	}

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compiling runtime library %s: %w", path, err)
	}

	cfg := wazero.NewModuleConfig().
		WithName(relPath).
		WithStartFunctions()

	module, err := rt.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("instantiating runtime library %s: %w", path, err)
	}

	return &handle{module: module}, nil
}

// Close tears down the loader's shared wazero runtime and every module
// instantiated through it.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rt == nil {
		return nil
	}
	err := l.rt.Close(l.ctx)
	l.rt = nil
	return err
}

// handle adapts one instantiated WASM module to engine.RuntimeHandle.
type handle struct {
	module api.Module
}

func (h *handle) StartFunc(name string) (engine.StartFunc, bool) {
	fn := h.module.ExportedFunction(name)
	if fn == nil {
		return nil, false
	}
	return func() error {
		_, err := fn.Call(context.Background())
		return err
	}, true
}

func (h *handle) StopFunc(name string) (engine.StopFunc, bool) {
	fn := h.module.ExportedFunction(name)
	if fn == nil {
		return nil, false
	}
	return func() error {
		_, err := fn.Call(context.Background())
		return err
	}, true
}

func (h *handle) Close() error {
	return h.module.Close(context.Background())
}

package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// WazeroExecutor runs WASI modules under wazero with no filesystem or
// network access beyond what the caller explicitly mounts — the default
// posture for anything invoked from a guard-governed operation.
type WazeroExecutor struct {
	runtime wazero.Runtime
}

// NewWazeroExecutor builds a wazero runtime with the WASI preview1 host
// functions instantiated, the minimum needed to run a compiled
// shell/Python-in-WASM module.
func NewWazeroExecutor(ctx context.Context) (*WazeroExecutor, error) {
	runtime := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("sandbox: instantiate wasi: %w", err)
	}
	return &WazeroExecutor{runtime: runtime}, nil
}

func (w *WazeroExecutor) Run(ctx context.Context, inv Invocation) (Result, error) {
	code, err := os.ReadFile(inv.ModulePath)
	if err != nil {
		return Result{}, fmt.Errorf("sandbox: read module: %w", err)
	}

	var stdout, stderr bytes.Buffer
	config := wazero.NewModuleConfig().
		WithArgs(inv.Args...).
		WithStdin(bytes.NewReader(inv.Stdin)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := w.runtime.InstantiateWithConfig(ctx, code, config)
	exitCode := 0
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		exitCode = 1
	}

	return Result{ExitCode: exitCode, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

func (w *WazeroExecutor) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

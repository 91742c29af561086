package app

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"quilbridge/internal/forest"
	"quilbridge/internal/qvm"
	"quilbridge/internal/store"
)

// Wire bundles the qvmd client, the handle store and the logger for
// the CLI. Backends are built per command on top of it.
type Wire struct {
	Config  Config
	Client  *qvm.Client
	Handles *store.HandleStore
	Logger  *zap.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	handles, err := store.NewHandleStore(cfg.Home)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, errors.Wrap(err, "app: build logger")
		}
	}

	client := qvm.NewClient(&qvm.ClientConfig{
		BaseURL: cfg.QVMURL,
		Timeout: cfg.Timeout,
	})

	return &Wire{
		Config:  cfg,
		Client:  client,
		Handles: handles,
		Logger:  logger,
	}, nil
}

// Backend builds a shot backend for the named device. An empty name
// falls back to the config's device, then to the executor's first QPU.
func (w *Wire) Backend(ctx context.Context, name string) (*forest.Backend, error) {
	if name == "" {
		name = w.Config.Device
	}
	desc, err := forest.FindDevice(ctx, w.Client, name)
	if err != nil {
		return nil, err
	}
	return forest.NewBackend(w.Client, desc, w.Handles)
}

// StateBackend builds a wavefunction backend over the same executor.
func (w *Wire) StateBackend() *forest.StateBackend {
	return forest.NewStateBackend(w.Client)
}

// Close flushes buffered log output.
func (w *Wire) Close() {
	_ = w.Logger.Sync()
}

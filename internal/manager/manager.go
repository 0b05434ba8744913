package manager

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"chatd/internal/engine"
)

// Manager owns the single engine handle for the process and gates all access
// to it. The handle is created by Load at most once; request handlers share it
// read-only once status reads Ready and never close it themselves.
type Manager struct {
	cfg Config
	log zerolog.Logger

	status  atomic.Int32
	lastErr atomic.Value // string

	// eng is written by Load before the atomic store of StatusReady, so any
	// reader that observes Ready also observes the handle.
	eng      engine.Engine
	loadOnce sync.Once

	// size 1: single in-flight generation (see admission.go)
	genCh chan struct{}

	// newEngine is swapped out by tests to substitute an engine double.
	newEngine func(path string, cfg engine.Config) (engine.Engine, error)
}

// New constructs a Manager in the Unloaded state.
func New(cfg Config, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:       cfg.withDefaults(),
		log:       log,
		genCh:     make(chan struct{}, 1),
		newEngine: engine.New,
	}
}

// Load loads the model at path. It is a no-op after the first call: status is
// terminal once Ready or Failed. A failed load degrades the process (status
// Failed, process keeps serving /health) instead of aborting it.
func (m *Manager) Load(path string) {
	m.loadOnce.Do(func() {
		m.status.Store(int32(StatusLoading))
		m.log.Info().Str("model", path).Int("ctx_size", m.cfg.CtxSize).Msg("loading model")
		eng, err := m.newEngine(path, engine.Config{
			CtxSize:   m.cfg.CtxSize,
			GPULayers: *m.cfg.GPULayers,
			Threads:   m.cfg.Threads,
		})
		if err != nil {
			m.lastErr.Store(err.Error())
			m.status.Store(int32(StatusFailed))
			m.log.Error().Err(err).Str("model", path).Msg("model load failed, serving degraded")
			return
		}
		m.eng = eng
		m.status.Store(int32(StatusReady))
		m.log.Info().Str("model", path).Msg("model ready")
	})
}

// Status returns the current model status. Safe to call concurrently with any
// other operation; a plain atomic read, no locking.
func (m *Manager) Status() Status {
	return Status(m.status.Load())
}

// ModelLoaded reports whether the model finished loading successfully.
func (m *Manager) ModelLoaded() bool {
	return m.Status() == StatusReady
}

// LastError returns the load error message, or "" if none occurred.
func (m *Manager) LastError() string {
	if v := m.lastErr.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// Close releases the engine. Called on shutdown only; request handlers never
// close the handle.
func (m *Manager) Close() error {
	if m.Status() == StatusReady && m.eng != nil {
		return m.eng.Close()
	}
	return nil
}

package manager

import "time"

// Defaults applied when corresponding Config fields are unset. The context
// window and full GPU offload mirror how the model is meant to be loaded for
// this service; they are not request tunables.
const (
	defaultCtxSize   = 2048
	defaultGPULayers = -1 // attempt full offload
	defaultMaxWait   = 2 * time.Minute

	// Request-parameter defaults applied when the client omits them.
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.7
)

// Config encapsulates tunables for Manager construction.
type Config struct {
	CtxSize   int
	GPULayers *int // nil means default; 0 is a meaningful value (CPU only)
	Threads   int
	// MaxWait bounds how long a request waits for the in-flight generation
	// slot before being rejected as too busy.
	MaxWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.CtxSize <= 0 {
		c.CtxSize = defaultCtxSize
	}
	if c.GPULayers == nil {
		n := defaultGPULayers
		c.GPULayers = &n
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	return c
}

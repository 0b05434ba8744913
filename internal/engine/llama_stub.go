//go:build !llama

package engine

// No-CGO stub compiled when the 'llama' build tag is not set. Keeps default
// builds and CI CGO-free; New fails fast instead of mocking inference, which
// degrades the process to a Failed model status rather than pretending to
// generate text.

// New reports the runtime as unavailable in untagged builds.
func New(modelPath string, cfg Config) (Engine, error) {
	return nil, ErrNotBuilt
}

package manager

// modelNotLoadedError signals that a request arrived while the model is not
// Ready. Mapped to 503 at the HTTP layer.
type modelNotLoadedError struct{ status Status }

func (e modelNotLoadedError) Error() string { return "model not loaded (status: " + e.status.String() + ")" }

// ErrModelNotLoaded constructs a modelNotLoadedError for the given status.
func ErrModelNotLoaded(s Status) error { return modelNotLoadedError{status: s} }

// IsModelNotLoaded reports whether err indicates the model was not Ready.
func IsModelNotLoaded(err error) bool {
	_, ok := err.(modelNotLoadedError)
	return ok
}

// tooBusyError signals an admission timeout for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "too busy: generation slot wait timed out" }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

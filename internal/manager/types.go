package manager

// Status is the process-wide readiness state of the model resource. It has a
// single writer (Load) and many concurrent readers, so it is stored behind an
// atomic in the Manager.
type Status int32

const (
	StatusUnloaded Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnloaded:
		return "unloaded"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

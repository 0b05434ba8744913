package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints. Default is 1 MiB.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// ResponseMode selects the wire protocol of POST /chat. One mode per
// deployment; the canonical mode is SSE streaming.
type ResponseMode string

const (
	ModeSSE  ResponseMode = "sse"
	ModeJSON ResponseMode = "json"
)

var responseMode = ModeSSE

// SetResponseMode configures the /chat response protocol. Unknown values fall
// back to SSE.
func SetResponseMode(m ResponseMode) {
	switch m {
	case ModeSSE, ModeJSON:
		responseMode = m
	default:
		responseMode = ModeSSE
	}
}

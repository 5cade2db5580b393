package providers

// Common error format strings (SonarQube S1192)
const (
	ErrMarshalRequest = "marshal request: %w"
	ErrCreateRequest  = "create request: %w"
	ErrDecodeResponse = "decode response: %w"
)

// Common HTTP constants
const (
	ContentTypeJSON     = "application/json"
	ChatCompletionsPath = "/chat/completions"

	// maxErrorBody caps how much of a failed response is kept.
	maxErrorBody = 64 << 10
)

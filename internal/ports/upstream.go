package ports

import "context"

// Chunk is one streamed unit from the generation service. Err is set on a
// mid-stream failure; the channel is closed right after. Bytes already
// relayed before the failure cannot be retracted.
type Chunk struct {
	Content string
	Err     error
}

// Generator streams completions from the upstream model server. A nil error
// with an open channel means the upstream accepted the request; connect and
// HTTP-level failures surface as domain.ErrUpstreamUnavailable before any
// chunk is produced. Cancelling ctx must abort the upstream call.
type Generator interface {
	Stream(ctx context.Context, messages []Message) (<-chan Chunk, error)
}

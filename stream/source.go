package stream

import (
	"context"
	"io"
)

// ContextSource wraps a ByteSource so that every read first checks ctx.
//
// The buffer itself has no notion of cancellation; callers that need it wrap the source.
// A read that is already blocked is not interrupted, the cancellation is observed by the
// next read.
type ContextSource struct {
	ctx context.Context //nolint:containedctx
	src io.Reader
}

// NewContextSource returns a ByteSource that fails with ctx.Err() once ctx is done.
func NewContextSource(ctx context.Context, src io.Reader) *ContextSource {
	return &ContextSource{ctx: ctx, src: src}
}

// Read implements io.Reader.
func (s *ContextSource) Read(p []byte) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}

	return s.src.Read(p)
}

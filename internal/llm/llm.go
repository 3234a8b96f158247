// Package llm streams persona-written recaps from a chat model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrPersonaRejected = errors.New("character description rejected by moderation")
	ErrNotConfigured   = errors.New("llm provider not configured")
)

// Streamer produces a completion incrementally. The content channel is closed
// when the stream ends; at most one error is sent on the error channel, which
// is closed afterwards.
type Streamer interface {
	Stream(ctx context.Context, system, user string) (<-chan string, <-chan error)
}

// Moderator screens user supplied text before it reaches a prompt.
type Moderator interface {
	Moderate(ctx context.Context, text string) (flagged bool, err error)
}

// Drain copies every chunk to w and returns the stream's error, if any.
func Drain(ctx context.Context, content <-chan string, errs <-chan error, w io.Writer) error {
	for content != nil || errs != nil {
		select {
		case chunk, ok := <-content:
			if !ok {
				content = nil
				continue
			}
			if _, err := io.WriteString(w, chunk); err != nil {
				return fmt.Errorf("writing recap: %w", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

package chat

import (
	"context"

	"github.com/diogo/ragchat/internal/models"
)

// Streamer is the part of the gateway client that serves chat
type Streamer interface {
	StreamChat(ctx context.Context, req models.ChatRequest, onChunk func(chunk string)) error
}

// Event is one step of a running exchange. At most one event has Done set,
// and it is the last one sent. Once ctx ends nobody is waited on, so the
// channel may close without a Done event.
type Event struct {
	ExchangeID string
	Chunk      string
	Err        error
	Done       bool
}

// Stream runs req in a goroutine and delivers its chunks on the returned
// channel, in order. The channel is closed after the Done event.
func Stream(ctx context.Context, client Streamer, exchangeID string, req models.ChatRequest) <-chan Event {
	events := make(chan Event, 16)

	go func() {
		defer close(events)

		err := client.StreamChat(ctx, req, func(chunk string) {
			select {
			case events <- Event{ExchangeID: exchangeID, Chunk: chunk}:
			case <-ctx.Done():
			}
		})
		select {
		case events <- Event{ExchangeID: exchangeID, Err: err, Done: true}:
		case <-ctx.Done():
		}
	}()

	return events
}

// Apply folds an event into the transcript. It returns false when the
// event belongs to an exchange the transcript no longer owns.
func (t *Transcript) Apply(ev Event) bool {
	switch {
	case !ev.Done:
		return t.Append(ev.ExchangeID, ev.Chunk)
	case ev.Err != nil:
		return t.Fail(ev.ExchangeID, ev.Err)
	default:
		return t.Finish(ev.ExchangeID)
	}
}

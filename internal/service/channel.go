package service

import "context"

// RelayChannel delivers a formatted notification message to an external
// chat service on behalf of a site's bot credentials.
type RelayChannel interface {
	Send(ctx context.Context, botToken, chatID, text string) error
}

// noopRelayChannel swallows every message. Used when outbound delivery is
// disabled at deploy time.
type noopRelayChannel struct{}

// NewNoopRelayChannel creates a relay channel that delivers nothing.
func NewNoopRelayChannel() RelayChannel {
	return noopRelayChannel{}
}

func (noopRelayChannel) Send(ctx context.Context, botToken, chatID, text string) error {
	return nil
}

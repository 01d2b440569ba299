package bus

import "context"

// Bus is the contract between chat channels and the engagement loop.
type Bus interface {
	// PublishInbound delivers a message from a channel to the loop.
	PublishInbound(msg InboundMessage)
	// PublishOutbound delivers a reply from the loop to a channel.
	PublishOutbound(msg OutboundMessage)
	// PublishOutboundContext is PublishOutbound that gives up when ctx is done.
	PublishOutboundContext(ctx context.Context, msg OutboundMessage) error
	// InboundChan returns a receive-only channel for the loop to consume.
	InboundChan() <-chan InboundMessage
	// OutboundChan returns a receive-only channel for the channel manager to consume.
	OutboundChan() <-chan OutboundMessage
}

// MessageBus is the default in-process Bus implementation backed by buffered Go channels.
//
// Channels push InboundMessages; the loop consumes them and pushes
// OutboundMessages back for the channel manager to route.
type MessageBus struct {
	inbound  chan InboundMessage  // channels -> loop
	outbound chan OutboundMessage // loop -> channels
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
	}
}

// PublishInbound sends an InboundMessage to the loop.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	b.inbound <- msg
}

// PublishOutbound sends an OutboundMessage to the channel manager.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.outbound <- msg
}

// PublishOutboundContext sends an OutboundMessage unless ctx is cancelled
// first, so a full buffer cannot block shutdown.
func (b *MessageBus) PublishOutboundContext(ctx context.Context, msg OutboundMessage) error {
	select {
	case b.outbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MessageBus) InboundChan() <-chan InboundMessage {
	return b.inbound
}

func (b *MessageBus) OutboundChan() <-chan OutboundMessage {
	return b.outbound
}

func (b *MessageBus) InboundSize() int { return len(b.inbound) }

func (b *MessageBus) OutboundSize() int { return len(b.outbound) }

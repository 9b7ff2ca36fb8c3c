package authclient

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// NoticeKind distinguishes the two user-visible failure messages.
type NoticeKind uint8

const (
	// NoticeRejected carries the server's response body.
	NoticeRejected NoticeKind = iota
	// NoticeUnavailable carries Config.Messages.Unavailable.
	NoticeUnavailable
)

func (k NoticeKind) String() string {
	if k == NoticeUnavailable {
		return "unavailable"
	}
	return "rejected"
}

// Notice is a message meant for the person using the client.
type Notice struct {
	Operation Operation
	Kind      NoticeKind
	// Status is the HTTP status for rejected notices and zero otherwise.
	Status  int
	Message string
}

// Notifier presents notices to the user. Notify is called once per failed
// operation, after any state change caused by that operation, on the caller's
// goroutine. It must not block: the ctx it receives outlives the caller's
// cancellation so that a notice about a cancelled request is still delivered.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// NoOpNotifier discards notices.
type NoOpNotifier struct{}

// Notify does nothing.
func (NoOpNotifier) Notify(context.Context, Notice) {}

// WriterNotifier writes each notice message on its own line.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier returns a notifier that writes to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify writes the message followed by a newline.
func (n *WriterNotifier) Notify(_ context.Context, notice Notice) {
	if n == nil || n.w == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = io.WriteString(n.w, notice.Message+"\n")
}

// ChannelNotifier forwards notices to a buffered channel. When the buffer is
// full the notice is dropped and counted.
type ChannelNotifier struct {
	notices chan Notice
	dropped atomic.Uint64
}

// NewChannelNotifier returns a notifier with the given buffer size, at least one.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNotifier{notices: make(chan Notice, buffer)}
}

// Notify enqueues notice without waiting.
func (n *ChannelNotifier) Notify(_ context.Context, notice Notice) {
	select {
	case n.notices <- notice:
	default:
		n.dropped.Add(1)
	}
}

// Notices returns the receive side of the buffer.
func (n *ChannelNotifier) Notices() <-chan Notice {
	return n.notices
}

// Dropped reports how many notices were discarded because the buffer was full.
func (n *ChannelNotifier) Dropped() uint64 {
	return n.dropped.Load()
}

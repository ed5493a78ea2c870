// Package events implements the command-channel bus that every scanning
// component uses to mutate shared state (stats, filters, output, the scan
// tree, the wordlist). Handlers process one command at a time off an
// unbounded channel; every other component only ever holds a Sender.
package events

import (
	"context"

	"go.uber.org/zap"
)

// Command is one message accepted by a Bus. Only the field relevant to
// Kind is read by the handler; the rest are zero.
type Command struct {
	Kind Kind

	// scalar payloads
	ErrorKind string
	Status    int
	Field     string
	Delta     int64
	FDelta    float64
	Offset    int
	Path      string
	Indices   []int
	Words     []string
	URL       string
	Ext       string
	Message   string
	Targets   []string

	Filter   any
	Response any

	// reply channels, set only for commands that block the caller
	Reply     chan<- struct{}
	ETAReply  chan<- float64
	BoolReply chan<- bool
}

// Kind enumerates every command accepted by a Bus, matching the bus
// contract: AddRequest, AddError, AddStatus, AddToUsizeField,
// SubtractFromUsizeField, AddToF64Field, CreateBar, Save, LoadStats,
// AddFilter, RemoveFilters, Report, ScanInitialUrls, ScanNewUrl,
// TryRecursion, UpdateWordlist, JoinTasks, Ping, Sync,
// AddDiscoveredExtension, WriteToDisk, Exit, UpdateTargets,
// QueryOverallBarEta.
type Kind int

const (
	AddRequest Kind = iota
	AddError
	AddStatus
	AddToUsizeField
	SubtractFromUsizeField
	AddToF64Field
	CreateBar
	Save
	LoadStats
	AddFilter
	RemoveFilters
	Report
	ScanInitialUrls
	ScanNewUrl
	TryRecursion
	UpdateWordlist
	JoinTasks
	Ping
	Sync
	AddDiscoveredExtension
	WriteToDisk
	Exit
	UpdateTargets
	QueryOverallBarEta
)

// Handler processes one Command. Implemented per-domain by stats,
// filters, output, scan and wordlist; a Bus just wires the channel.
type Handler interface {
	Handle(ctx context.Context, cmd Command)
}

// Sender is the write side every producer holds. Sends never block the
// caller on backpressure and never drop a command — the channel is
// genuinely unbounded, per spec.md's "every command send onto a full
// channel is non-blocking" contract.
type Sender struct {
	in chan<- Command
}

// Bus owns the receive side: a single goroutine draining the relayed
// queue and calling handler.Handle for every command until it observes
// Exit.
type Bus struct {
	in      chan Command
	out     chan Command
	handler Handler
	log     *zap.Logger
	done    chan struct{}
}

// New starts a Bus backed by handler and returns it; senders are
// obtained via Sender().
//
// in and out are both unbuffered; the queue goroutine started here
// relays between them through a growable slice, so a Send never blocks
// on the handler's processing rate and the queue has no fixed capacity.
func New(handler Handler, log *zap.Logger) *Bus {
	b := &Bus{
		in:      make(chan Command),
		out:     make(chan Command),
		handler: handler,
		log:     log,
		done:    make(chan struct{}),
	}
	go b.queue()
	return b
}

// queue relays commands from in to out through an unbounded slice buffer,
// so sends onto in are always accepted immediately regardless of how far
// behind the handler in Run is.
func (b *Bus) queue() {
	var pending []Command
	for {
		if len(pending) == 0 {
			cmd, ok := <-b.in
			if !ok {
				close(b.out)
				return
			}
			pending = append(pending, cmd)
			continue
		}

		select {
		case cmd, ok := <-b.in:
			if !ok {
				for _, c := range pending {
					b.out <- c
				}
				close(b.out)
				return
			}
			pending = append(pending, cmd)
		case b.out <- pending[0]:
			pending = pending[1:]
		}
	}
}

// Run drains commands until Exit is observed or ctx is cancelled, then
// closes done. Call once, typically in its own goroutine.
func (b *Bus) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case cmd, ok := <-b.out:
			if !ok {
				return
			}
			b.handler.Handle(ctx, cmd)
			if cmd.Kind == Exit {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Done reports when the Bus's goroutine has returned.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Sender returns a write handle to the bus.
func (b *Bus) Sender() Sender {
	return Sender{in: b.in}
}

// Send enqueues cmd onto the unbounded queue. It never drops a command
// and never blocks on the handler falling behind — only briefly on the
// queue goroutine's own scheduling.
func (s Sender) Send(cmd Command) {
	s.in <- cmd
}

// SyncWait sends a Sync command and blocks until the handler has
// processed every command queued before it — the back-pressure barrier
// used between TryRecursion and Report.
func (s Sender) SyncWait() {
	reply := make(chan struct{})
	s.in <- Command{Kind: Sync, Reply: reply}
	<-reply
}

// PingOnce sends a fire-and-forget liveness nudge; handlers treat it as a
// no-op.
func (s Sender) PingOnce() {
	s.Send(Command{Kind: Ping})
}

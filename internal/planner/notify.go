package planner

import (
	"context"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/log"
)

// changeBuffer bounds the notifications waiting for a slow broker.
const changeBuffer = 64

type change struct {
	ctx   context.Context
	kind  keys.Kind
	scope core.Scope
	key   string
}

// publisher hands change notifications to the Notifier from its own
// goroutine, so planner operations never wait on the broker.
type publisher struct {
	notifier Notifier
	logger   *log.Logger
	queue    chan change
	done     chan struct{}
}

func newPublisher(n Notifier, logger *log.Logger) *publisher {
	pub := &publisher{
		notifier: n,
		logger:   logger,
		queue:    make(chan change, changeBuffer),
		done:     make(chan struct{}),
	}
	go pub.run()
	return pub
}

func (pub *publisher) run() {
	defer close(pub.done)
	for c := range pub.queue {
		if err := pub.notifier.BucketChanged(c.ctx, c.kind, c.scope, c.key); err != nil {
			pub.logger.WarnContext(c.ctx, "Change notification failed",
				log.FieldKind, string(c.kind),
				log.FieldKey, c.key,
				log.FieldError, err)
		}
	}
}

// enqueue never blocks. A full queue drops the notification.
func (pub *publisher) enqueue(c change) {
	select {
	case pub.queue <- c:
	default:
		pub.logger.WarnContext(c.ctx, "Change notification dropped, queue full",
			log.FieldKind, string(c.kind),
			log.FieldKey, c.key)
	}
}

// close delivers what is queued and stops the goroutine.
func (pub *publisher) close() {
	close(pub.queue)
	<-pub.done
}

package analytics

import (
	"context"
	"log/slog"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/kafka"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
)

// Collector buffers analytics events and publishes them to Kafka without
// blocking the query path. Events are dropped, not queued unboundedly, when
// the buffer is full.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector publishing through the given producer.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		logger:   logger.WithComponent("analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop; it drains remaining events when ctx is
// cancelled.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event without blocking.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the publish loop to exit.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event any) {
	if err := c.producer.Publish(ctx, kafka.Event{Key: "analytics", Value: event}); err != nil {
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

// drainRemaining flushes whatever is still buffered in one batch write.
func (c *Collector) drainRemaining() {
	var events []kafka.Event
loop:
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				break loop
			}
			events = append(events, kafka.Event{Key: "analytics", Value: event})
		default:
			break loop
		}
	}
	if len(events) == 0 {
		return
	}
	if err := c.producer.PublishBatch(context.Background(), events); err != nil {
		c.logger.Error("failed to flush buffered events", "count", len(events), "error", err)
	}
}

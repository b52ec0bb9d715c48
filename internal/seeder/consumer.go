package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
	"github.com/yanchenliu/moodlog-backend/pkg/metrics"
	"github.com/yanchenliu/moodlog-backend/pkg/pubsub"
)

// Consumer drains the seed subscription and provisions sample data for each
// new profile.
type Consumer struct {
	seeder  Service
	logg    *logger.Logger
	metrics *metrics.SeedConsumerMetrics
}

type handleResult struct {
	ack  bool
	nack bool
}

// NewConsumer constructs a seed event consumer. Metrics may be nil.
func NewConsumer(seeder Service, logg *logger.Logger, m *metrics.SeedConsumerMetrics) (*Consumer, error) {
	if seeder == nil {
		return nil, fmt.Errorf("seeder service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Consumer{seeder: seeder, logg: logg, metrics: m}, nil
}

// Run blocks receiving from the seed subscription until ctx is canceled.
func (c *Consumer) Run(ctx context.Context, sub *gcppubsub.Subscriber) error {
	if sub == nil {
		return fmt.Errorf("seed subscription is required")
	}
	return sub.Receive(ctx, c.Handle)
}

// Handle processes one message. Malformed payloads are acked so they do not
// poison the subscription; transient seeding failures are nacked for retry.
func (c *Consumer) Handle(ctx context.Context, msg *gcppubsub.Message) {
	result := c.process(ctx, msg)
	switch {
	case result.nack:
		msg.Nack()
	case result.ack:
		msg.Ack()
	}
}

func (c *Consumer) process(ctx context.Context, msg *gcppubsub.Message) handleResult {
	var event pubsub.SeedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(ctx, "dropping malformed seed event", err)
		c.metrics.IncHandled(metrics.SeedOutcomeMalformed)
		return handleResult{ack: true}
	}
	if event.Type != pubsub.SeedEventType || event.UserID == uuid.Nil {
		c.logg.Warn(ctx, "dropping unexpected seed event")
		c.metrics.IncHandled(metrics.SeedOutcomeMalformed)
		return handleResult{ack: true}
	}

	ctx = c.logg.WithUserID(ctx, event.UserID.String())
	start := time.Now()
	seeded, err := c.seeder.Seed(ctx, event.UserID)
	if err != nil {
		c.logg.Error(ctx, "failed to seed sample data", err)
		c.metrics.ObserveDuration(metrics.SeedOutcomeFailed, time.Since(start))
		c.metrics.IncHandled(metrics.SeedOutcomeFailed)
		return handleResult{nack: true}
	}

	outcome := metrics.SeedOutcomeSeeded
	if !seeded {
		outcome = metrics.SeedOutcomeDuplicate
		c.logg.Debug(ctx, "seed already performed, skipping")
	}
	c.metrics.ObserveDuration(outcome, time.Since(start))
	c.metrics.IncHandled(outcome)
	return handleResult{ack: true}
}

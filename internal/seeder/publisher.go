package seeder

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/yanchenliu/moodlog-backend/pkg/errors"
	"github.com/yanchenliu/moodlog-backend/pkg/pubsub"
)

// Publisher emits profile.created events onto the seed topic. It satisfies
// the profile service's SeedNotifier.
type Publisher struct {
	publisher *gcppubsub.Publisher
}

// NewPublisher wraps the seed topic publisher handle.
func NewPublisher(publisher *gcppubsub.Publisher) (*Publisher, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher is required")
	}
	return &Publisher{publisher: publisher}, nil
}

// NotifyProfileCreated publishes a seed event and waits for the server ack.
func (p *Publisher) NotifyProfileCreated(ctx context.Context, userID uuid.UUID) error {
	payload, err := json.Marshal(pubsub.SeedEvent{
		Type:   pubsub.SeedEventType,
		UserID: userID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal seed event")
	}

	result := p.publisher.Publish(ctx, &gcppubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event_type": pubsub.SeedEventType},
	})
	if _, err := result.Get(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish seed event")
	}
	return nil
}

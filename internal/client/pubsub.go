package client

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"
)

// PubSubClient wraps the Google Cloud Pub/Sub client. Practice events
// (attempt.scored, lesson.transcribed) are published here for downstream
// analytics consumers; the service itself never subscribes.
type PubSubClient struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubClient creates a new Pub/Sub client.
func NewPubSubClient(ctx context.Context, projectID, topicID string) (*PubSubClient, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &PubSubClient{
		client: client,
		topic:  client.Topic(topicID),
	}, nil
}

// Close closes the client.
func (c *PubSubClient) Close() {
	if c.topic != nil {
		c.topic.Stop()
	}
	if c.client != nil {
		c.client.Close()
	}
}

// Publish publishes a message with attributes and waits for the result.
func (c *PubSubClient) Publish(ctx context.Context, data interface{}, attrs map[string]string) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	result := c.topic.Publish(ctx, &pubsub.Message{
		Data:       jsonData,
		Attributes: attrs,
	})

	_, err = result.Get(ctx)
	return err
}

// PublishAsync publishes a message without waiting for the server ack.
// Used for best-effort events on the request path.
func (c *PubSubClient) PublishAsync(ctx context.Context, data interface{}, attrs map[string]string) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	c.topic.Publish(ctx, &pubsub.Message{
		Data:       jsonData,
		Attributes: attrs,
	})
}

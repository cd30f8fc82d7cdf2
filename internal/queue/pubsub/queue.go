// Package pubsub provides a work queue backed by a gocloud.dev pub/sub broker.
// The broker's own redelivery mechanics supply the lease semantics: a received
// message stays invisible until acked, nacked, or its ack deadline passes.
//
// The backend is selected by driver URL, e.g. "mem://expenses" for tests or an
// SQS queue URL in deployments.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcpubsub "gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/awssnssqs" // SQS driver
	_ "gocloud.dev/pubsub/mempubsub" // in-memory driver for tests

	apperrors "github.com/allisson/expenses/internal/errors"
	"github.com/allisson/expenses/internal/queue"
)

// WorkQueue implements queue.WorkQueue over a gocloud.dev topic/subscription pair.
type WorkQueue struct {
	topic        *gcpubsub.Topic
	subscription *gcpubsub.Subscription
}

// message is the wire representation of a work item.
type message struct {
	ExpenseID  string    `json:"expense_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempts   int       `json:"attempts"`
}

// New opens the topic and subscription identified by the given driver URLs.
func New(ctx context.Context, topicURL, subscriptionURL string) (*WorkQueue, error) {
	topic, err := gcpubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open work queue topic")
	}

	subscription, err := gcpubsub.OpenSubscription(ctx, subscriptionURL)
	if err != nil {
		_ = topic.Shutdown(ctx)
		return nil, apperrors.Wrap(err, "failed to open work queue subscription")
	}

	return &WorkQueue{topic: topic, subscription: subscription}, nil
}

// Enqueue publishes a work item to the topic.
func (q *WorkQueue) Enqueue(ctx context.Context, item *queue.WorkItem) error {
	body, err := json.Marshal(message{
		ExpenseID:  item.ExpenseID.String(),
		EnqueuedAt: item.EnqueuedAt,
		Attempts:   item.Attempts,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to encode work item")
	}

	if err := q.topic.Send(ctx, &gcpubsub.Message{Body: body}); err != nil {
		return apperrors.Wrap(err, "failed to enqueue work item")
	}
	return nil
}

// Lease blocks up to maxWait for a message. Returns (nil, nil) when none
// arrives in time.
func (q *WorkQueue) Lease(ctx context.Context, maxWait time.Duration) (*queue.Delivery, error) {
	receiveCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	msg, err := q.subscription.Receive(receiveCtx)
	if err != nil {
		// An expired wait is an empty result, not a failure. Receive wraps
		// the context error, so match by the parent context's state too.
		if errors.Is(err, context.DeadlineExceeded) || (receiveCtx.Err() != nil && ctx.Err() == nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Wrap(err, "failed to lease work item")
	}

	var wire message
	if err := json.Unmarshal(msg.Body, &wire); err != nil {
		// Undecodable messages can never be processed; drop them rather than
		// redeliver forever.
		msg.Ack()
		return nil, apperrors.Wrap(err, "failed to decode work item")
	}

	item := queue.WorkItem{
		EnqueuedAt: wire.EnqueuedAt,
		Attempts:   wire.Attempts + 1,
	}
	if err := item.ExpenseID.UnmarshalText([]byte(wire.ExpenseID)); err != nil {
		msg.Ack()
		return nil, apperrors.Wrap(err, "failed to parse work item expense id")
	}

	return &queue.Delivery{
		Item:       item,
		LeaseToken: queue.NewLeaseToken(),
		Receipt:    msg,
	}, nil
}

// Ack acknowledges the underlying broker message.
func (q *WorkQueue) Ack(ctx context.Context, delivery *queue.Delivery) error {
	msg, ok := delivery.Receipt.(*gcpubsub.Message)
	if !ok {
		return apperrors.New("delivery has no broker receipt")
	}
	msg.Ack()
	return nil
}

// Release negatively acknowledges the message so the broker redelivers it
// without waiting for the ack deadline. Brokers without nack support fall
// back to deadline expiry.
func (q *WorkQueue) Release(ctx context.Context, delivery *queue.Delivery) error {
	msg, ok := delivery.Receipt.(*gcpubsub.Message)
	if !ok {
		return apperrors.New("delivery has no broker receipt")
	}
	if msg.Nackable() {
		msg.Nack()
	}
	return nil
}

// Shutdown closes the topic and subscription.
func (q *WorkQueue) Shutdown(ctx context.Context) error {
	var errs []error
	if err := q.subscription.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := q.topic.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

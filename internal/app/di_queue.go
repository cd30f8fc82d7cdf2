package app

import (
	"context"
	"fmt"

	"github.com/allisson/expenses/internal/queue"
	queuePubsub "github.com/allisson/expenses/internal/queue/pubsub"
	queueRepository "github.com/allisson/expenses/internal/queue/repository"
)

// WorkQueue returns the work queue based on the configured backend.
func (c *Container) WorkQueue() (queue.WorkQueue, error) {
	var err error
	c.workQueueInit.Do(func() {
		c.workQueue, err = c.initWorkQueue()
		if err != nil {
			c.initErrors["workQueue"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workQueue"]; exists {
		return nil, storedErr
	}
	return c.workQueue, nil
}

// initWorkQueue creates the work queue for the configured backend.
//
// The "sql" backend shares the record store's database so it needs no extra
// infrastructure; "pubsub" delegates to a gocloud.dev topic and subscription.
func (c *Container) initWorkQueue() (queue.WorkQueue, error) {
	switch c.config.QueueBackend {
	case "sql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for work queue: %w", err)
		}

		switch c.config.DBDriver {
		case "postgres":
			return queueRepository.NewPostgreSQLWorkQueue(db, c.config.QueueLeaseDuration), nil
		case "mysql":
			return queueRepository.NewMySQLWorkQueue(db, c.config.QueueLeaseDuration), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	case "pubsub":
		workQueue, err := queuePubsub.New(
			context.Background(),
			c.config.QueueTopicURL,
			c.config.QueueSubscriptionURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub work queue: %w", err)
		}
		return workQueue, nil
	default:
		return nil, fmt.Errorf("unsupported queue backend: %s", c.config.QueueBackend)
	}
}

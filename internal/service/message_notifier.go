package service

import (
	"context"
	"fmt"
	"strconv"

	"telehealth-consult/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

// Subscription delivers a signal each time a message is published to the
// consultation it was opened for. Close must be called once done.
type Subscription interface {
	C() <-chan struct{}
	Close() error
}

// MessageNotifier fans chat appends out to long-polling readers.
type MessageNotifier interface {
	Publish(ctx context.Context, msg *entity.Message) error
	Subscribe(ctx context.Context, consultationID int64) (Subscription, error)
}

func messageChannel(consultationID int64) string {
	return fmt.Sprintf("consultation:%d:messages", consultationID)
}

type redisMessageNotifier struct {
	client *redis.Client
}

func NewRedisMessageNotifier(client *redis.Client) MessageNotifier {
	return &redisMessageNotifier{client: client}
}

func (n *redisMessageNotifier) Publish(ctx context.Context, msg *entity.Message) error {
	return n.client.Publish(ctx, messageChannel(msg.ConsultationID), strconv.FormatInt(msg.ID, 10)).Err()
}

func (n *redisMessageNotifier) Subscribe(ctx context.Context, consultationID int64) (Subscription, error) {
	pubsub := n.client.Subscribe(ctx, messageChannel(consultationID))
	// Receive blocks until the subscription is confirmed, so a publish that
	// follows cannot be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		c:      make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go sub.forward()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	c      chan struct{}
	done   chan struct{}
}

func (s *redisSubscription) forward() {
	ch := s.pubsub.Channel()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
			select {
			case s.c <- struct{}{}:
			default:
			}
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) C() <-chan struct{} {
	return s.c
}

func (s *redisSubscription) Close() error {
	close(s.done)
	return s.pubsub.Close()
}

package reminderdue

import (
	"context"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/rabbitmq"
	"remindbot/internal/rabbitmq/schema"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher pushes due reminders onto the delivery queue. It is the fire
// sink of the scheduler engine: delivery itself happens on the consumer
// side, decoupled from the timer goroutine.
type Publisher struct {
	log        logging.Logger
	channel    *rabbitmq.Channel
	exchange   string
	routingKey string
}

func New(log logging.Logger, channel *rabbitmq.Channel, exchange string, routingKey string) *Publisher {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	return &Publisher{log: log, channel: channel, exchange: exchange, routingKey: routingKey}
}

func (p *Publisher) PublishDueReminder(ctx context.Context, id reminder.ID, fireTime time.Time) error {
	msg := schema.DueReminder{ID: int64(id), FireTime: fireTime}
	body, err := msg.Marshal()
	if err != nil {
		logging.Error(ctx, p.log, err, logging.Entry("reminderID", id))
		return err
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		logging.Error(ctx, p.log, err, logging.Entry("reminderID", id))
		return err
	}
	p.log.Info(
		ctx,
		"Due reminder published.",
		logging.Entry("RK", p.routingKey),
		logging.Entry("reminderID", id),
		logging.Entry("fireTime", fireTime),
	)
	return nil
}

package reminderdue

import (
	"context"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	sendreminder "remindbot/internal/core/services/send_reminder"
	"remindbot/internal/rabbitmq"
	"remindbot/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	log     logging.Logger
	channel *rabbitmq.Channel
	queue   string
	service services.Service[sendreminder.Input, sendreminder.Result]
}

func New(
	log logging.Logger,
	channel *rabbitmq.Channel,
	queue string,
	service services.Service[sendreminder.Input, sendreminder.Result],
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}

	return &Consumer{log: log, channel: channel, queue: queue, service: service}
}

func (c *Consumer) Consume() error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		c.log.Error(context.Background(), "Could not start consuming.", logging.Entry("err", err))
		return err
	}

	go func() {
		for delivery := range deliveries {
			due := &schema.DueReminder{}
			if err := due.Unmarshal(delivery.Body); err != nil {
				c.log.Error(
					context.Background(),
					"Could not unmarshal due reminder.",
					logging.Entry("err", err),
					logging.Entry("body", string(delivery.Body)),
				)
				c.ack(delivery)
				continue
			}

			c.log.Info(
				context.Background(),
				"Got due reminder.",
				logging.Entry("reminderID", due.ID),
				logging.Entry("fireTime", due.FireTime),
			)
			_, err := c.service.Run(
				context.Background(),
				sendreminder.Input{ReminderID: reminder.ID(due.ID), FireTime: due.FireTime},
			)
			if err != nil {
				c.log.Error(
					context.Background(),
					"Could not deliver reminder, service returned an error.",
					logging.Entry("reminderID", due.ID),
					logging.Entry("err", err),
				)
			}
			c.ack(delivery)
		}
	}()
	return nil
}

func (c *Consumer) ack(delivery amqp091.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.log.Error(context.Background(), "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}

package rabbitmq

import (
	"context"
	"fmt"
	"remindbot/internal/core/domain/logging"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection wraps amqp.Connection with automatic reconnects. The underlying
// connection is swapped by the reconnect goroutine, so access goes through
// the mutex-guarded accessors.
type Connection struct {
	lock sync.Mutex
	conn *amqp.Connection
	log  logging.Logger
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{
		conn: conn,
		log:  log,
	}

	go func() {
		for {
			reason, ok := <-connection.current().NotifyClose(make(chan *amqp.Error))
			if !ok {
				log.Info(context.Background(), "RabbitMQ connection closed.")
				break
			}

			log.Warning(context.Background(), "RabbitMQ connection lost.", logging.Entry("reason", *reason))
			for {
				time.Sleep(reconnectDelay)

				conn, err := amqp.Dial(url)
				if err == nil {
					connection.replace(conn)
					log.Info(context.Background(), "RabbitMQ reconnect succeeded.")
					break
				}
				log.Error(context.Background(), "RabbitMQ reconnect failed.", logging.Entry("err", err))
			}
		}
	}()

	return connection, nil
}

func (c *Connection) current() *amqp.Connection {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.conn
}

func (c *Connection) replace(conn *amqp.Connection) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.conn = conn
}

func (c *Connection) Close() error {
	return c.current().Close()
}

// Channel returns an auto-recreating channel on top of the connection.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.current().Channel()
	if err != nil {
		return nil, err
	}

	channel := &Channel{
		channel: ch,
		log:     c.log,
	}

	go func() {
		for {
			reason, ok := <-channel.current().NotifyClose(make(chan *amqp.Error))
			// Exit if the channel was closed by us.
			if !ok || channel.IsClosed() {
				channel.Close() // ensure the closed flag is set
				break
			}

			c.log.Warning(context.Background(), "RabbitMQ channel closed.", logging.Entry("reason", *reason))
			for {
				time.Sleep(reconnectDelay)

				ch, err := c.current().Channel()
				if err == nil {
					c.log.Info(context.Background(), "RabbitMQ channel recreated.")
					channel.replace(ch)
					break
				}

				c.log.Error(context.Background(), "Channel recreate failed.", logging.Entry("err", err))
			}
		}
	}()

	return channel, nil
}

// Channel wraps amqp.Channel, recovering consumers across reconnects. Like
// the connection, the underlying channel is swapped on recreate and read
// through the mutex-guarded accessors.
type Channel struct {
	lock    sync.Mutex
	channel *amqp.Channel
	closed  int32
	log     logging.Logger
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.channel
}

func (ch *Channel) replace(channel *amqp.Channel) {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	ch.channel = channel
}

// IsClosed reports whether the channel was closed by us rather than by the
// broker.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if ch.IsClosed() {
		return amqp.ErrClosed
	}

	atomic.StoreInt32(&ch.closed, 1)

	return ch.current().Close()
}

func (ch *Channel) QueueDeclare(
	name string,
	durable, autoDelete, exclusive, noWait bool,
	args amqp.Table,
) (amqp.Queue, error) {
	return ch.current().QueueDeclare(name, durable, autoDelete, exclusive, noWait, args)
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	return ch.current().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Consume delivers messages until the channel is closed by us; broker-side
// interruptions are retried transparently.
func (ch *Channel) Consume(
	queue, consumer string,
	autoAck, exclusive, noLocal, noWait bool,
	args amqp.Table,
) (<-chan amqp.Delivery, error) {
	deliveries := make(chan amqp.Delivery)

	go func() {
		for {
			d, err := ch.current().Consume(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
			if err != nil {
				ch.log.Error(context.Background(), "Consume failed.", logging.Entry("err", err))
				time.Sleep(reconnectDelay)
				continue
			}

			for msg := range d {
				deliveries <- msg
			}

			// Wait before checking the flag: it may not be set yet right
			// after the broker closed the delivery stream.
			time.Sleep(reconnectDelay)

			if ch.IsClosed() {
				ch.log.Info(context.Background(), "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				break
			}
		}
	}()

	return deliveries, nil
}

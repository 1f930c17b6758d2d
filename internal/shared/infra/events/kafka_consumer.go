package events

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler procesa un mensaje ya leído. Un error se registra y el
// mensaje se da por consumido.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte) error
}

// MessageReader es la parte de *kafka.Reader que se usa.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

const (
	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// ConsumerAdapter es el "oído" que escucha en Kafka.
type ConsumerAdapter struct {
	reader     MessageReader
	handler    MessageHandler
	topic      string
	log        *zap.Logger
	retryDelay time.Duration
}

func NewConsumerAdapter(reader MessageReader, topic string, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:     reader,
		handler:    handler,
		topic:      topic,
		log:        log,
		retryDelay: defaultRetryDelay,
	}
}

// WithRetryDelay fija la espera inicial tras un error de lectura. Cada fallo
// seguido la duplica, hasta 30s.
func (c *ConsumerAdapter) WithRetryDelay(d time.Duration) *ConsumerAdapter {
	if d > 0 {
		c.retryDelay = d
	}
	return c
}

// Start lanza Run en una goroutine.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	go c.Run(ctx)
}

// Run consume hasta que el contexto se cancela o el reader se cierra (io.EOF).
func (c *ConsumerAdapter) Run(ctx context.Context) {
	c.log.Info("🎧 Iniciando consumidor de Kafka", zap.String("topic", c.topic))
	delay := c.retryDelay
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Consumidor de Kafka detenido", zap.String("topic", c.topic))
				return
			}
			if errors.Is(err, io.EOF) {
				c.log.Info("Reader de Kafka cerrado", zap.String("topic", c.topic))
				return
			}
			c.log.Error("Error al leer mensaje de Kafka",
				zap.String("topic", c.topic),
				zap.Duration("retry_in", delay),
				zap.Error(err))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				c.log.Info("Consumidor de Kafka detenido", zap.String("topic", c.topic))
				return
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		delay = c.retryDelay

		if err := c.handler.HandleMessage(ctx, string(msg.Key), msg.Value); err != nil {
			c.log.Warn("Mensaje descartado",
				zap.String("topic", c.topic),
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

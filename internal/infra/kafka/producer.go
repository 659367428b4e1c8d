package kafka

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
)

// Producer delivers activity events. With kafka.async it queues messages on
// a sarama.AsyncProducer and only logs delivery failures; otherwise every
// Send waits for the partition leader through a sarama.SyncProducer.
type Producer struct {
	async  sarama.AsyncProducer
	sync   sarama.SyncProducer
	logger *zap.Logger
	cfg    config.KafkaSettings

	done chan struct{}
	wg   sync.WaitGroup
}

// NewProducer dials the configured brokers in the mode selected by cfg.Async.
func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	sc := producerConfig(cfg.Async)

	if !cfg.Async {
		sp, err := sarama.NewSyncProducer(cfg.Brokers, sc)
		if err != nil {
			return nil, fmt.Errorf("create kafka sync producer: %w", err)
		}
		logger.Info("kafka producer ready", zap.String("mode", "sync"), zap.Strings("brokers", cfg.Brokers))
		return newSyncProducer(sp, cfg, logger), nil
	}

	ap, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka async producer: %w", err)
	}
	logger.Info("kafka producer ready", zap.String("mode", "async"), zap.Strings("brokers", cfg.Brokers))
	return newProducer(ap, cfg, logger), nil
}

func producerConfig(async bool) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_5_0_0
	sc.ClientID = "social-client"

	// Activity events are advisory; leader ack is enough.
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Errors = true
	// SyncProducer refuses to start without successes.
	sc.Producer.Return.Successes = !async
	if async {
		sc.Producer.Flush.Frequency = 100 * time.Millisecond
		sc.Producer.Flush.Messages = 100
	}

	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond
	return sc
}

func newProducer(ap sarama.AsyncProducer, cfg config.KafkaSettings, logger *zap.Logger) *Producer {
	p := &Producer{async: ap, cfg: cfg, logger: logger, done: make(chan struct{})}
	p.wg.Add(1)
	go p.logFailures()
	return p
}

func newSyncProducer(sp sarama.SyncProducer, cfg config.KafkaSettings, logger *zap.Logger) *Producer {
	return &Producer{sync: sp, cfg: cfg, logger: logger, done: make(chan struct{})}
}

func (p *Producer) logFailures() {
	defer p.wg.Done()
	for {
		select {
		case perr, ok := <-p.async.Errors():
			if !ok {
				return
			}
			if perr != nil && perr.Msg != nil {
				p.logger.Warn("activity event dropped", zap.String("topic", perr.Msg.Topic), zap.Error(perr.Err))
			}
		case <-p.done:
			return
		}
	}
}

// Send hands msg to Kafka. In async mode it returns once the message is
// queued, giving up when ctx ends first; in sync mode it returns the
// broker's verdict.
func (p *Producer) Send(ctx context.Context, msg *sarama.ProducerMessage) error {
	if p.sync == nil {
		select {
		case p.async.Input() <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send to %s: %w", msg.Topic, err)
	}
	p.logger.Debug("activity event delivered",
		zap.String("topic", msg.Topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close flushes buffered messages and stops the failure logger.
func (p *Producer) Close() error {
	close(p.done)

	var err error
	if p.sync != nil {
		err = p.sync.Close()
	} else {
		err = p.async.Close()
	}
	p.wg.Wait()

	if err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

// TopicName prefixes eventType with kafka.topic_prefix unless it already
// carries it.
func (p *Producer) TopicName(eventType string) string {
	prefix := p.cfg.TopicPrefix
	if prefix == "" || strings.HasPrefix(eventType, prefix+".") {
		return eventType
	}
	return prefix + "." + eventType
}

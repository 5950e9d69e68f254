package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
	"github.com/xdg-go/scram"
)

const eventQueueSize = 64

type GameOverEvent struct {
	Event      string  `json:"event"`
	GameID     string  `json:"gameId"`
	Winner     string  `json:"winner"`
	Moves      int     `json:"moves"`
	Duration   float64 `json:"duration_seconds"`
	Transcript string  `json:"transcript"`
}

// EventProducer publishes game-over events to Kafka from its own goroutine,
// so a slow broker never holds up the game.
type EventProducer struct {
	producer  sarama.SyncProducer
	topic     string
	queue     chan GameOverEvent
	drained   chan struct{}
	closeOnce sync.Once
}

func NewEventProducer(brokers []string, topic string) (*EventProducer, error) {
	p, err := sarama.NewSyncProducer(brokers, producerConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return newEventProducerWith(p, topic), nil
}

// producerConfig enables SASL/SCRAM-SHA-256 over TLS when KAFKA_USER is set.
func producerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "omok"
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	if user := os.Getenv("KAFKA_USER"); user != "" {
		config.Net.SASL.Enable = true
		config.Net.SASL.User = user
		config.Net.SASL.Password = os.Getenv("KAFKA_PASSWORD")
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &scramClient{hash: sha256.New}
		}
		config.Net.TLS.Enable = true
	}
	return config
}

func newEventProducerWith(p sarama.SyncProducer, topic string) *EventProducer {
	ep := &EventProducer{
		producer: p,
		topic:    topic,
		queue:    make(chan GameOverEvent, eventQueueSize),
		drained:  make(chan struct{}),
	}
	go ep.drain()
	return ep
}

func (p *EventProducer) drain() {
	defer close(p.drained)
	for event := range p.queue {
		if err := p.EmitGameOver(event); err != nil {
			log.Warn().Err(err).Msg("analytics event dropped")
		}
	}
}

func (p *EventProducer) EmitGameOver(event GameOverEvent) error {
	val, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode game over event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.GameID),
		Value: sarama.ByteEncoder(val),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send game over event %s: %w", event.GameID, err)
	}
	log.Debug().Str("game", event.GameID).Int32("partition", partition).Int64("offset", offset).Msg("game over event sent")
	return nil
}

// Hook adapts the producer to Game's game-over callback. It only enqueues;
// events arriving while the queue is full are dropped with a warning.
func (p *EventProducer) Hook() func(GameOverEvent) {
	return func(event GameOverEvent) {
		select {
		case p.queue <- event:
		default:
			log.Warn().Str("game", event.GameID).Msg("analytics queue full, event dropped")
		}
	}
}

// Close flushes queued events and closes the Kafka producer. The hook must
// not be called afterwards.
func (p *EventProducer) Close() error {
	p.closeOnce.Do(func() { close(p.queue) })
	<-p.drained
	return p.producer.Close()
}

// scramClient drives one SCRAM conversation for sarama.
type scramClient struct {
	hash scram.HashGeneratorFcn
	conv *scram.ClientConversation
}

func (c *scramClient) Begin(user, password, authzID string) error {
	client, err := c.hash.NewClient(user, password, authzID)
	if err != nil {
		return fmt.Errorf("scram client: %w", err)
	}
	c.conv = client.NewConversation()
	return nil
}

func (c *scramClient) Step(challenge string) (string, error) {
	return c.conv.Step(challenge)
}

func (c *scramClient) Done() bool {
	return c.conv.Done()
}

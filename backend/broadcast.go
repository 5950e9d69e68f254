package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Subscriber is one websocket connection attached to a Broadcaster. Frames
// that do not fit in its queue are dropped.
type Subscriber struct {
	queue chan []byte
}

func (s *Subscriber) deliver(msg wsMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("encode websocket frame")
		return
	}
	select {
	case s.queue <- frame:
	default:
	}
}

// Broadcaster fans messages out to every subscriber. A lossy broadcaster
// drops messages instead of blocking the publisher when its outbox is full.
type Broadcaster struct {
	name   string
	lossy  bool
	outbox chan wsMessage

	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

func NewBroadcaster(name string, buffer int, lossy bool) *Broadcaster {
	return &Broadcaster{
		name:        name,
		lossy:       lossy,
		outbox:      make(chan wsMessage, buffer),
		subscribers: make(map[*Subscriber]struct{}),
	}
}

func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.outbox:
			b.mu.Lock()
			for sub := range b.subscribers {
				sub.deliver(msg)
			}
			b.mu.Unlock()
		}
	}
}

func (b *Broadcaster) Publish(kind string, payload any) {
	msg := wsMessage{Type: kind, Payload: mustMarshal(payload)}
	if !b.lossy {
		b.outbox <- msg
		return
	}
	select {
	case b.outbox <- msg:
	default:
		log.Trace().Str("feed", b.name).Str("type", kind).Msg("dropped message")
	}
}

// subscribe registers a new subscriber. greet runs before any broadcast can
// reach it.
func (b *Broadcaster) subscribe(greet func(*Subscriber)) *Subscriber {
	sub := &Subscriber{queue: make(chan []byte, 16)}
	if greet != nil {
		greet(sub)
	}
	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub.queue)
	}
}

func (b *Broadcaster) HasSubscribers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers) > 0
}

// ServeWS upgrades the request and keeps the connection subscribed until the
// peer goes away. onMessage, when set, receives every decoded client
// message.
func (b *Broadcaster) ServeWS(w http.ResponseWriter, r *http.Request, greet func(*Subscriber), onMessage func(*Subscriber, wsMessage)) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("feed", b.name).Msg("websocket upgrade failed")
		return
	}
	sub := b.subscribe(greet)
	log.Debug().Str("feed", b.name).Str("remote", r.RemoteAddr).Msg("websocket subscribed")

	go func() {
		defer conn.Close()
		if err := pumpWS(conn, sub.queue, wsPingInterval); err != nil {
			log.Debug().Err(err).Str("feed", b.name).Msg("websocket writer stopped")
		}
	}()

	defer b.Unsubscribe(sub)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if onMessage == nil {
			continue
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		onMessage(sub, msg)
	}
}

package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// feed fans journal entries out to websocket clients. It satisfies
// journal.Sink so it can be attached to the engine channel directly.
type feed struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

func newFeed(logger *log.Logger) *feed {
	return &feed{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: make(map[chan []byte]struct{}),
	}
}

// Write broadcasts v. Slow clients drop messages rather than block the
// publisher, which holds the engine lock.
func (f *feed) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c <- b:
		default:
		}
	}
	return nil
}

func (f *feed) add() chan []byte {
	c := make(chan []byte, 64)
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()
	return c
}

func (f *feed) remove(c chan []byte) {
	f.mu.Lock()
	delete(f.clients, c)
	f.mu.Unlock()
}

func (f *feed) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	out := f.add()
	defer f.remove(out)

	// reader: only watches for close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
			return
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				f.log.Printf("feed: write: %v", err)
				return
			}
		}
	}
}

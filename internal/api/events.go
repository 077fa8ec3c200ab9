package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/jask/cncdeck/internal/machine"
)

// Envelope is one message on the controller's event socket.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// MachineProfiles decodes a machine list payload. A null payload is an
// empty list.
func (e Envelope) MachineProfiles() ([]machine.Profile, error) {
	var out []machine.Profile
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &out); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Topic, err)
		}
	}
	return machine.Ensure(out), nil
}

// EventStream reads envelopes from the controller.
type EventStream struct {
	conn *websocket.Conn
}

// EventsURL returns the websocket address of the event endpoint.
func (c *Client) EventsURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/events"
}

// Events dials the event socket.
func (c *Client) Events(ctx context.Context) (*EventStream, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.EventsURL(), header)
	if err != nil {
		if resp != nil {
			return nil, &StatusError{Method: http.MethodGet, Path: "/api/events", Code: resp.StatusCode}
		}
		return nil, fmt.Errorf("dial events: %w", err)
	}
	return &EventStream{conn: conn}, nil
}

// Next blocks until the next envelope arrives.
func (s *EventStream) Next() (Envelope, error) {
	var env Envelope
	if err := s.conn.ReadJSON(&env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Close closes the socket.
func (s *EventStream) Close() error {
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

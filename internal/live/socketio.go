package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Engine.IO packet types
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Socket.IO packet types, carried inside an Engine.IO message
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

// NewRecordEvent is the event name announcing a freshly ingested resume
const NewRecordEvent = "newEmail"

type openPayload struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// packet is one decoded frame
type packet struct {
	engine byte
	socket byte
	data   string
}

func parsePacket(frame string) (packet, error) {
	if frame == "" {
		return packet{}, errors.New("empty frame")
	}
	p := packet{engine: frame[0], data: frame[1:]}
	if p.engine == eioMessage {
		if p.data == "" {
			return packet{}, errors.New("empty socket packet")
		}
		p.socket = p.data[0]
		p.data = p.data[1:]
	}
	return p, nil
}

// parseEvent decodes a Socket.IO event body: ["name", arg, ...]
func parseEvent(data string) (string, json.RawMessage, error) {
	// skip an optional namespace prefix ("/ns,") and ack id
	if strings.HasPrefix(data, "/") {
		if i := strings.IndexByte(data, ','); i >= 0 {
			data = data[i+1:]
		}
	}
	if i := strings.IndexByte(data, '['); i > 0 {
		data = data[i:]
	}

	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(data), &parts); err != nil {
		return "", nil, fmt.Errorf("invalid event payload: %w", err)
	}
	if len(parts) == 0 {
		return "", nil, errors.New("event without name")
	}

	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, fmt.Errorf("invalid event name: %w", err)
	}
	if len(parts) < 2 {
		return name, nil, nil
	}
	return name, parts[1], nil
}

// connectFrame is the namespace connect packet, carrying the token when set
func connectFrame(token string) string {
	frame := string([]byte{eioMessage, sioConnect})
	if token == "" {
		return frame
	}
	auth, _ := json.Marshal(map[string]string{"token": token})
	return frame + string(auth)
}

// socketURL maps the API base URL to the Engine.IO websocket endpoint
func socketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/socket.io/"
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}

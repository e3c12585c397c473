package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to complete the opening handshake.
	handshakeTimeout = 15 * time.Second

	// Maximum message size allowed from peer. Roster snapshots of busy
	// rooms run to hundreds of kilobytes.
	maxMessageSize = 4 << 20
)

// Negotiation values of the Tinychat web client
const (
	DefaultURL         = "wss://wss.tinychat.com"
	DefaultHost        = "wss.tinychat.com"
	DefaultOrigin      = "https://tinychat.com"
	DefaultSubprotocol = "tc"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/59.0.3040.0 Safari/537.36"
)

// Profile is the handshake the dialer presents to the server.
type Profile struct {
	URL          string
	Host         string
	Origin       string
	Subprotocols []string
	Header       http.Header

	// Compression offers permessage-deflate. gorilla/websocket owns the
	// Sec-WebSocket-Extensions header and only offers the no-context-takeover
	// variant it can decode.
	Compression bool
}

// DefaultProfile returns the Tinychat web client handshake.
func DefaultProfile() Profile {
	header := http.Header{}
	header.Set("User-Agent", browserUserAgent)
	header.Set("Accept-Language", "en-US,en;q=0.8")
	header.Set("Accept-Encoding", "gzip, deflate, sdch, br")

	return Profile{
		URL:          DefaultURL,
		Host:         DefaultHost,
		Origin:       DefaultOrigin,
		Subprotocols: []string{DefaultSubprotocol},
		Header:       header,
		Compression:  true,
	}
}

// RequestHeader builds the handshake headers handed to gorilla/websocket.
func (p Profile) RequestHeader() http.Header {
	header := p.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if p.Host != "" {
		header.Set("Host", p.Host)
	}
	if p.Origin != "" {
		header.Set("Origin", p.Origin)
	}
	return header
}

// Dialer opens connections using a Profile
type Dialer struct {
	profile Profile
	dialer  *websocket.Dialer
}

// NewDialer creates a dialer for the given profile
func NewDialer(profile Profile) *Dialer {
	return &Dialer{
		profile: profile,
		dialer: &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  handshakeTimeout,
			ReadBufferSize:    4096,
			WriteBufferSize:   4096,
			Subprotocols:      profile.Subprotocols,
			EnableCompression: profile.Compression,
		},
	}
}

// Profile returns the handshake profile of the dialer.
func (d *Dialer) Profile() Profile {
	return d.profile
}

// Dial performs the opening handshake.
func (d *Dialer) Dial(ctx context.Context) (*Conn, error) {
	if _, err := url.Parse(d.profile.URL); err != nil {
		return nil, fmt.Errorf("invalid socket URL: %w", err)
	}

	conn, resp, err := d.dialer.DialContext(ctx, d.profile.URL, d.profile.RequestHeader())
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("handshake rejected with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}

	if len(d.profile.Subprotocols) > 0 && conn.Subprotocol() == "" {
		log.Printf("Warning: server did not select a subprotocol (offered %v)", d.profile.Subprotocols)
	}

	conn.SetReadLimit(maxMessageSize)
	return &Conn{conn: conn}, nil
}

// Conn is an open socket carrying text frames
type Conn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// ReadText blocks until the next text frame arrives. Binary frames are
// skipped; control frames are handled by gorilla/websocket.
func (c *Conn) ReadText() ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return nil, err
		}

		if messageType != websocket.TextMessage {
			log.Printf("Skipping non-text frame (type %d, %d bytes)", messageType, len(data))
			continue
		}
		return data, nil
	}
}

// WriteText sends data as one text frame.
func (c *Conn) WriteText(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Subprotocol returns the subprotocol selected by the server.
func (c *Conn) Subprotocol() string {
	return c.conn.Subprotocol()
}

// Close sends a close frame and closes the underlying connection. It is safe
// to call more than once and from another goroutine.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(writeWait)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

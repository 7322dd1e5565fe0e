package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/models"
	"golang.org/x/net/websocket"
)

// PushState is the state of the push channel.
type PushState int32

const (
	PushDisconnected PushState = iota
	PushConnecting
	PushConnected
)

func (s PushState) String() string {
	switch s {
	case PushConnecting:
		return "connecting"
	case PushConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// SyncURL is the push endpoint of a user under the websocket base URL.
func SyncURL(wsBaseURL string, userID int64) string {
	return fmt.Sprintf("%s/ws/sync/%d", strings.TrimRight(wsBaseURL, "/"), userID)
}

// PushOptions configures reconnect behaviour.
type PushOptions struct {
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// PushService keeps a websocket to the backend open and turns every received
// message into one change event. It reconnects with exponential backoff.
type PushService struct {
	dialer Dialer
	url    string
	bus    Publisher
	opts   PushOptions
	log    *slog.Logger

	state    atomic.Int32
	received atomic.Uint64

	mu        sync.RWMutex
	lastError string
}

func NewPushService(dialer Dialer, url string, bus Publisher, opts PushOptions) *PushService {
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = time.Second
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = opts.MinBackoff
	}
	return &PushService{
		dialer: dialer,
		url:    url,
		bus:    bus,
		opts:   opts,
		log:    logger.WithComponent("push_service").With("url", url),
	}
}

func (p *PushService) State() PushState { return PushState(p.state.Load()) }

// Connected is false whenever the channel is not delivering notices.
func (p *PushService) Connected() bool { return p.State() == PushConnected }

// Received returns the number of messages received over all connections.
func (p *PushService) Received() uint64 { return p.received.Load() }

// LastError returns the most recent connection failure, empty while connected.
func (p *PushService) LastError() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastError
}

func (p *PushService) setState(s PushState, err error) {
	p.state.Store(int32(s))
	p.mu.Lock()
	if err != nil {
		p.lastError = err.Error()
	} else if s == PushConnected {
		p.lastError = ""
	}
	p.mu.Unlock()
}

func (p *PushService) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.opts.MinBackoff
	bo.MaxInterval = p.opts.MaxBackoff
	bo.MaxElapsedTime = 0 // retry forever
	bo.Reset()
	return bo
}

// Run connects and keeps reconnecting until ctx is cancelled. The backoff is
// reset after every connection that was established.
func (p *PushService) Run(ctx context.Context) error {
	bo := p.newBackOff()
	p.log.Info("Push channel started")

	for {
		connected, err := p.session(ctx)
		if ctx.Err() != nil {
			p.setState(PushDisconnected, nil)
			p.log.Info("Push channel stopped")
			return ctx.Err()
		}
		if connected {
			bo.Reset()
		}

		wait := bo.NextBackOff()
		p.log.Warn("Push channel disconnected, reconnecting", "error", err, "retryIn", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.setState(PushDisconnected, nil)
			p.log.Info("Push channel stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// session runs one connection until it fails. connected reports whether the dial succeeded.
func (p *PushService) session(ctx context.Context) (connected bool, err error) {
	p.setState(PushConnecting, nil)

	conn, err := p.dialer.Dial(ctx, p.url)
	if err != nil {
		p.setState(PushDisconnected, err)
		return false, err
	}
	p.setState(PushConnected, nil)
	p.log.Info("Push channel connected")

	// Receive has no context; closing the connection unblocks it.
	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { conn.Close() }) }
	stop := context.AfterFunc(ctx, closeConn)
	defer stop()
	defer closeConn()

	for {
		msg, err := conn.Receive()
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			p.setState(PushDisconnected, err)
			return true, err
		}
		p.handleMessage(msg)
	}
}

// handleMessage publishes one event per message regardless of its shape.
func (p *PushService) handleMessage(msg []byte) {
	p.received.Add(1)

	var notice models.SyncNotice
	if err := json.Unmarshal(msg, &notice); err == nil && notice.Type != "" {
		p.log.Debug("Received sync notice", "type", notice.Type, "resource", notice.Resource, "action", notice.Action)
	} else {
		p.log.Debug("Received sync message", "bytes", len(msg))
	}

	p.bus.Publish(ChangeEvent{Source: SourcePush, At: time.Now()})
}

// websocketDialer dials the backend with golang.org/x/net/websocket.
type websocketDialer struct {
	origin string
	header http.Header
}

// NewWebSocketDialer returns a Dialer sending origin and, if set, a bearer token.
func NewWebSocketDialer(origin, accessToken string) Dialer {
	h := http.Header{}
	if accessToken != "" {
		h.Set("Authorization", "Bearer "+accessToken)
	}
	return &websocketDialer{origin: origin, header: h}
}

func (d *websocketDialer) Dial(ctx context.Context, url string) (MessageConn, error) {
	cfg, err := websocket.NewConfig(url, d.origin)
	if err != nil {
		return nil, fmt.Errorf("invalid push channel URL %q: %w", url, err)
	}
	cfg.Header = d.header.Clone()

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialing push channel: %w", err)
	}
	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) Receive() ([]byte, error) {
	var msg []byte
	if err := websocket.Message.Receive(c.conn, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *websocketConn) Close() error {
	err := c.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names exchanged with the editor.
const (
	EventHello = "graph:hello"
	EventEdit  = "graph:edit"
	EventAck   = "graph:ack"
)

const (
	connectTimeout = 15 * time.Second
	// DefaultQueueSize bounds the edits buffered between two frames.
	DefaultQueueSize = 256
)

// ErrEmptyPayload is returned when an edit event carries no data.
var ErrEmptyPayload = errors.New("edit event has no payload")

// Config describes the editor endpoint.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	QueueSize          int
}

// AckMessage reports the outcome of one applied edit back to the editor.
type AckMessage struct {
	Session string                `json:"session"`
	Seq     uint64                `json:"seq"`
	Op      graphmodel.EditOp     `json:"op"`
	Result  graphmodel.EditResult `json:"result"`
	Error   string                `json:"error,omitempty"`
}

// Bridge is a connected editor session.
type Bridge struct {
	io      *socket.Socket
	session string
	edits   chan graphmodel.Edit

	seq     atomic.Uint64
	dropped atomic.Uint64
}

// Dial connects to the editor and announces a fresh session id.
func Dial(ctx context.Context, cfg Config) (*Bridge, error) {
	session := uuid.NewString()
	ctx, logger := ctxlog.With(ctx, "component", "remote", "url", cfg.URL, "session", session)
	logger.Info("Connecting to editor...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("editor URL %q must include scheme and host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	b := &Bridge{session: session, edits: make(chan graphmodel.Edit, size)}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	b.io = io

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to editor.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := connectError(errs...)
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		connectChan <- err
	})
	io.On(types.EventName(EventEdit), func(data ...any) {
		b.receive(ctx, data...)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}

	io.Emit(EventHello, map[string]any{"session": session})
	return b, nil
}

// connectError normalizes the payload of a connect_error event.
func connectError(errs ...any) error {
	if len(errs) == 0 || errs[0] == nil {
		return errors.New("connect_error without details")
	}
	if err, ok := errs[0].(error); ok {
		return err
	}
	return fmt.Errorf("%v", errs[0])
}

// Session returns the id announced to the editor.
func (b *Bridge) Session() string {
	return b.session
}

// receive runs on a socket.io goroutine. It never blocks: when the queue is
// full the edit is dropped and counted.
func (b *Bridge) receive(ctx context.Context, data ...any) {
	logger := ctxlog.FromContext(ctx)
	if len(data) == 0 {
		logger.Warn("Ignoring edit event.", "error", ErrEmptyPayload)
		return
	}
	e, err := DecodeEdit(data[0])
	if err != nil {
		logger.Warn("Ignoring malformed edit.", "error", err)
		return
	}
	b.enqueue(ctx, e)
}

func (b *Bridge) enqueue(ctx context.Context, e graphmodel.Edit) {
	select {
	case b.edits <- e:
	default:
		n := b.dropped.Add(1)
		ctxlog.FromContext(ctx).Warn("Edit queue full, dropping edit.", "op", e.Op, "dropped", n)
	}
}

// Drain returns every queued edit without blocking. It is called by the
// frame loop between frames.
func (b *Bridge) Drain() []graphmodel.Edit {
	var out []graphmodel.Edit
	for {
		select {
		case e := <-b.edits:
			out = append(out, e)
		default:
			return out
		}
	}
}

// Dropped returns the number of edits discarded because the queue was full.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// Ack reports an applied edit to the editor.
func (b *Bridge) Ack(ctx context.Context, e graphmodel.Edit, res graphmodel.EditResult, applyErr error) {
	ack := AckMessage{Session: b.session, Seq: b.seq.Add(1), Op: e.Op, Result: res}
	if applyErr != nil {
		ack.Error = applyErr.Error()
	}
	if b.io == nil {
		return
	}
	jsonData, _ := json.Marshal(ack)
	ctxlog.FromContext(ctx).Debug("Emitting event", "event", EventAck, "data", string(jsonData))
	b.io.Emit(EventAck, ack)
}

// Close disconnects from the editor.
func (b *Bridge) Close(ctx context.Context) {
	if b.io == nil {
		return
	}
	ctxlog.FromContext(ctx).Info("Disconnecting from editor.", "sid", b.io.Id(), "session", b.session)
	b.io.Disconnect()
}

// DecodeEdit converts an event payload into an edit. The editor may send
// either a decoded JSON object or the JSON text itself.
func DecodeEdit(payload any) (graphmodel.Edit, error) {
	var raw []byte
	switch p := payload.(type) {
	case nil:
		return graphmodel.Edit{}, ErrEmptyPayload
	case string:
		raw = []byte(p)
	case []byte:
		raw = p
	default:
		var err error
		if raw, err = json.Marshal(p); err != nil {
			return graphmodel.Edit{}, fmt.Errorf("re-encode edit payload: %w", err)
		}
	}

	var e graphmodel.Edit
	if err := json.Unmarshal(raw, &e); err != nil {
		return graphmodel.Edit{}, fmt.Errorf("decode edit: %w", err)
	}
	if e.Op == "" {
		return graphmodel.Edit{}, errors.New("decode edit: missing op")
	}
	return e, nil
}

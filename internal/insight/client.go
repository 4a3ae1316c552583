package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds one analysis call end to end. AI-backend
	// computations run far longer than the financial-sync domains.
	DefaultTimeout = 180 * time.Second

	// DefaultStaleness is how long a completed insight stays fresh on
	// the client before a repeat request opens a new stream.
	DefaultStaleness = 5 * time.Minute

	readBufferSize = 4 << 10
)

// Config carries the client's construction parameters.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Staleness time.Duration
	Logger    *zap.Logger
	// OnUpdate, when set, observes every state transition. Called
	// without internal locks held.
	OnUpdate func(State)
}

// Client runs one state machine per insight kind. Transitions for a
// single kind are strictly sequential; a new request for a kind already
// in flight cancels the running stream and restarts it (the
// cancel-and-restart policy).
type Client struct {
	http      *http.Client
	baseURL   string
	timeout   time.Duration
	staleness time.Duration
	logger    *zap.Logger
	onUpdate  func(State)
	now       func() time.Time

	mu      sync.Mutex
	states  map[Kind]State
	cancels map[Kind]context.CancelFunc
	gens    map[Kind]uint64
}

// NewClient builds an insight client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	staleness := cfg.Staleness
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:      &http.Client{}, // deadline comes from the per-call context
		baseURL:   cfg.BaseURL,
		timeout:   timeout,
		staleness: staleness,
		logger:    logger.Named("insight"),
		onUpdate:  cfg.OnUpdate,
		now:       time.Now,
		states:    make(map[Kind]State),
		cancels:   make(map[Kind]context.CancelFunc),
		gens:      make(map[Kind]uint64),
	}
}

// WithClock substitutes the time source. Test hook.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Get returns the kind's current state, Idle if never requested.
func (c *Client) Get(kind Kind) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[kind]; ok {
		return st
	}
	return State{Kind: kind, Phase: PhaseIdle}
}

// Fetch drives the kind's state machine to a terminal state and returns
// it. A repeat request within the staleness window returns the cached
// completion without opening a stream.
func (c *Client) Fetch(ctx context.Context, kind Kind) State {
	c.mu.Lock()
	if st, ok := c.states[kind]; ok && st.Fresh(c.now(), c.staleness) {
		c.mu.Unlock()
		c.logger.Debug("served from staleness cache", zap.String("kind", string(kind)))
		return st
	}

	// Cancel-and-restart: an in-flight stream for this kind yields to
	// the new request.
	if cancel, ok := c.cancels[kind]; ok {
		cancel()
	}
	streamCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.cancels[kind] = cancel
	c.gens[kind]++
	gen := c.gens[kind]
	st := State{Kind: kind, Phase: PhaseLoading, StatusMessage: "Preparing analysis"}
	c.states[kind] = st
	c.mu.Unlock()
	c.notify(st)

	defer func() {
		cancel()
		c.mu.Lock()
		if c.gens[kind] == gen {
			delete(c.cancels, kind)
		}
		c.mu.Unlock()
	}()

	return c.stream(streamCtx, kind, gen)
}

// setState applies a mutation if this fetch is still the kind's current
// generation; a superseded fetch observes but no longer writes.
func (c *Client) setState(kind Kind, gen uint64, mutate func(*State)) State {
	c.mu.Lock()
	st := c.states[kind]
	if c.gens[kind] != gen {
		c.mu.Unlock()
		return st
	}
	mutate(&st)
	c.states[kind] = st
	c.mu.Unlock()
	c.notify(st)
	return st
}

func (c *Client) notify(st State) {
	if c.onUpdate != nil {
		c.onUpdate(st)
	}
}

func (c *Client) streamURL(kind Kind) string   { return c.baseURL + "/insights/" + string(kind) + "/stream" }
func (c *Client) fallbackURL(kind Kind) string { return c.baseURL + "/insights/" + string(kind) }

// stream consumes data frames until a complete frame, a failure, or
// cancellation. Any failure routes through exactly one fallback attempt.
func (c *Client) stream(ctx context.Context, kind Kind, gen uint64) State {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.streamURL(kind), bytes.NewBufferString("{}"))
	if err != nil {
		return c.fallback(ctx, kind, gen, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fallback(ctx, kind, gen, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return c.fallback(ctx, kind, gen, fmt.Errorf("stream status %d", resp.StatusCode))
	}

	var parser LineParser
	buf := make([]byte, readBufferSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, line := range parser.Feed(buf[:n]) {
				frame, ok, err := DecodeFrame(line)
				if err != nil {
					c.logger.Warn("skipping malformed frame",
						zap.String("kind", string(kind)), zap.Error(err))
					continue
				}
				if !ok {
					continue
				}
				if final, done := c.applyFrame(ctx, kind, gen, frame); done {
					return final
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				// Stream ended without a complete frame.
				return c.fallback(ctx, kind, gen, errors.New("stream ended before completion"))
			}
			return c.fallback(ctx, kind, gen, readErr)
		}
	}
}

// applyFrame folds one frame into the state machine. done is true on a
// terminal state.
func (c *Client) applyFrame(ctx context.Context, kind Kind, gen uint64, frame Frame) (State, bool) {
	switch frame.Type {
	case FrameStatus:
		c.setState(kind, gen, func(s *State) {
			s.Phase = PhaseLoading
			s.StatusMessage = frame.Message
		})
		return State{}, false

	case FrameContent:
		c.setState(kind, gen, func(s *State) {
			s.Phase = PhaseStreaming
			s.Content = frame.Content
		})
		return State{}, false

	case FrameComplete:
		final := c.setState(kind, gen, func(s *State) {
			s.Phase = PhaseComplete
			if frame.Content != "" {
				s.Content = frame.Content
			}
			s.FetchedAt = c.now()
			s.Err = ""
		})
		c.logger.Info("insight complete", zap.String("kind", string(kind)))
		return final, true

	case FrameError:
		msg := frame.Message
		if msg == "" {
			msg = "server aborted the stream"
		}
		return c.fallback(ctx, kind, gen, errors.New(msg)), true

	default:
		c.logger.Debug("ignoring unknown frame type",
			zap.String("kind", string(kind)), zap.String("type", frame.Type))
		return State{}, false
	}
}

// fallbackResponse is the non-streaming endpoint's body.
type fallbackResponse struct {
	Insights string `json:"insights"`
}

// fallback makes the single non-streaming attempt after a stream failure.
// A cancelled consumer gets the current state back untouched; the machine
// otherwise always lands in FallbackComplete or FallbackFailed, never
// hangs in Loading.
func (c *Client) fallback(ctx context.Context, kind Kind, gen uint64, cause error) State {
	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// Consumer unsubscribed or was superseded; nothing to surface.
		return c.Get(kind)
	}

	c.logger.Warn("stream failed, attempting fallback",
		zap.String("kind", string(kind)), zap.Error(cause))
	c.setState(kind, gen, func(s *State) {
		s.Phase = PhaseStreamFailed
	})
	c.setState(kind, gen, func(s *State) {
		s.Phase = PhaseFallbackRequested
	})

	fail := func(err error) State {
		return c.setState(kind, gen, func(s *State) {
			s.Phase = PhaseFallbackFailed
			s.Err = fmt.Sprintf("analysis for %q is unavailable right now: %v", kind, err)
		})
	}

	// The stream context may already be spent; give the fallback its own
	// deadline derived from the caller-independent budget.
	fbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fbCtx, http.MethodPost, c.fallbackURL(kind), bytes.NewBufferString("{}"))
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fail(fmt.Errorf("fallback status %d", resp.StatusCode))
	}

	var body fallbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fail(err)
	}

	final := c.setState(kind, gen, func(s *State) {
		s.Phase = PhaseFallbackComplete
		s.Content = body.Insights
		s.FetchedAt = c.now()
		s.Err = ""
	})
	c.logger.Info("fallback complete", zap.String("kind", string(kind)))
	return final
}

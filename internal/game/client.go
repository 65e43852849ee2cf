// internal/game/client.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/highcard/internal/gameapi"
	"github.com/jason-s-yu/highcard/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrWrongPhase is returned when an operation is invoked in a phase that does not allow it.
	ErrWrongPhase = errors.New("operation not allowed in current phase")

	// ErrRequestInFlight is returned when an operation is invoked while another is awaiting the service.
	ErrRequestInFlight = errors.New("a request is already in flight")

	// ErrSessionClosed is returned once the session has been torn down.
	ErrSessionClosed = errors.New("session closed")
)

// RoundService is the remote game service as seen by a Client.
type RoundService interface {
	Start(ctx context.Context) (*gameapi.RoundResponse, error)
	DrawCards(ctx context.Context) (*gameapi.RoundResponse, error)
}

// OnChangeFunc observes every mutation of the session. It receives a snapshot.
type OnChangeFunc func(models.GameSession)

// operation names used in logs, errors and round records.
const (
	opStartGame = "start_game"
	opDrawCard  = "draw_card"
)

// Client owns one GameSession and mediates between UI triggers and the
// game service. It is safe for concurrent use; at most one request to the
// service is in flight at a time.
type Client struct {
	mu      sync.Mutex
	session models.GameSession
	closed  bool

	svc       RoundService
	onChange  OnChangeFunc
	publisher RoundPublisher
	logger    *logrus.Entry

	// ctx lives as long as the session; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Client.
type Option func(*Client)

// WithSessionID sets the session ID instead of a random one.
func WithSessionID(id uuid.UUID) Option {
	return func(c *Client) {
		c.session.ID = id
	}
}

// WithOnChange registers fn to be called after each session mutation.
func WithOnChange(fn OnChangeFunc) Option {
	return func(c *Client) {
		c.onChange = fn
	}
}

// WithPublisher registers a sink for applied rounds.
func WithPublisher(p RoundPublisher) Option {
	return func(c *Client) {
		c.publisher = p
	}
}

// WithLogger sets the base logger entry.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithParentContext ties the session lifetime to ctx in addition to Close.
func WithParentContext(ctx context.Context) Option {
	return func(c *Client) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// NewClient creates an idle session backed by svc.
func NewClient(svc RoundService, opts ...Option) *Client {
	c := &Client{
		session: models.NewGameSession(uuid.New()),
		svc:     svc,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.ctx)
	c.logger = c.logger.WithField("session", c.session.ID)
	return c
}

// ID returns the session ID.
func (c *Client) ID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

// Snapshot returns a copy of the current session.
func (c *Client) Snapshot() models.GameSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// Phase returns the current phase.
func (c *Client) Phase() models.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Phase
}

// Done is closed when the session is closed.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close ends the session. An in-flight request is cancelled and its
// response, if any, is discarded.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.session.Pending = false
	c.mu.Unlock()

	c.cancel()
	c.logger.Debug("session closed")
}

// StartGame begins a new match. The session must be idle.
func (c *Client) StartGame(ctx context.Context) (models.GameSession, error) {
	return c.do(ctx, opStartGame, models.PhaseIdle, c.svc.Start)
}

// DrawCard plays the next round. The session must be started.
func (c *Client) DrawCard(ctx context.Context) (models.GameSession, error) {
	return c.do(ctx, opDrawCard, models.PhaseStarted, c.svc.DrawCards)
}

// do runs one operation: guard, one service call, apply.
func (c *Client) do(ctx context.Context, op string, want models.Phase, call func(context.Context) (*gameapi.RoundResponse, error)) (models.GameSession, error) {
	c.mu.Lock()
	if err := c.admitLocked(op, want); err != nil {
		snap := c.session.Clone()
		c.mu.Unlock()
		return snap, err
	}
	c.session.Pending = true
	pending := c.session.Clone()
	c.mu.Unlock()
	c.notify(pending)

	reqCtx, stop := c.requestContext(ctx)
	resp, err := call(reqCtx)
	stop()

	c.mu.Lock()
	if c.closed || c.ctx.Err() != nil {
		c.session.Pending = false
		snap := c.session.Clone()
		c.mu.Unlock()
		c.logger.WithField("op", op).Debug("discarding response for closed session")
		return snap, ErrSessionClosed
	}
	c.session.Pending = false
	if err != nil {
		c.session.LastError = UserMessage(err)
		snap := c.session.Clone()
		c.mu.Unlock()
		c.logger.WithFields(logrus.Fields{
			"op":    op,
			"phase": snap.Phase,
		}).WithError(err).Warn("game service request failed")
		c.notify(snap)
		return snap, fmt.Errorf("%s: %w", op, err)
	}
	c.applyLocked(op, resp)
	snap := c.session.Clone()
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"op":     op,
		"phase":  snap.Phase,
		"round":  snap.Round,
		"winner": snap.Winner,
	}).Info("round applied")
	c.publish(op, snap)
	c.notify(snap)
	return snap, nil
}

// admitLocked checks the preconditions of op. c.mu must be held.
func (c *Client) admitLocked(op string, want models.Phase) error {
	if c.closed || c.ctx.Err() != nil {
		return ErrSessionClosed
	}
	if c.session.Pending {
		return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
	}
	if c.session.Phase != want {
		return fmt.Errorf("%s in phase %s: %w", op, c.session.Phase, ErrWrongPhase)
	}
	return nil
}

// applyLocked writes a validated round into the session. c.mu must be held.
func (c *Client) applyLocked(op string, resp *gameapi.RoundResponse) {
	p1, p2 := resp.Players[0], resp.Players[1]
	c.session.Player1 = &p1
	c.session.Player2 = &p2
	c.session.LastError = ""

	switch op {
	case opStartGame:
		c.session.Phase = models.PhaseStarted
		c.session.Round = 1
		c.session.Winner = models.TieWinner
	case opDrawCard:
		c.session.Round++
		if resp.Finished {
			c.session.Phase = models.PhaseFinished
			c.session.Winner = resp.Winner
		}
	}
}

// requestContext merges the caller's context with the session lifetime.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

func (c *Client) notify(snap models.GameSession) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}

func (c *Client) publish(op string, snap models.GameSession) {
	if c.publisher == nil {
		return
	}
	rec := NewRoundRecord(op, snap, time.Now())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.publisher.PublishRound(ctx, rec); err != nil {
		c.logger.WithError(err).Warn("failed to publish round")
	}
}

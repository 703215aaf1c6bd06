package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-resty/resty/v2"

	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/retry"
)

const (
	readyPollInterval = 10 * time.Second
	createRetryDelay  = 2 * time.Second
	smokeTimeout      = 15 * time.Second
)

// versionInfo is the payload of the DevTools /json/version endpoint.
type versionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Pool hands out browser sessions backed by a remote DevTools grid.
type Pool struct {
	cfg    *config.GridConfig
	logger logger.Interface
	http   *resty.Client
	sem    chan struct{}
	closed atomic.Bool

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewPool creates a session pool against the configured grid. No connection
// is made until the first session is acquired.
func NewPool(cfg *config.GridConfig, log logger.Interface) (*Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: grid url is required", ErrGridUnavailable)
	}
	if cfg.MaxSessions <= 0 {
		return nil, fmt.Errorf("max sessions must be positive, got %d", cfg.MaxSessions)
	}

	client := resty.New().
		SetTimeout(cfg.HealthTimeout).
		SetBaseURL(cfg.URL)

	return &Pool{
		cfg:    cfg,
		logger: log.WithComponent("browser"),
		http:   client,
		sem:    make(chan struct{}, cfg.MaxSessions),
	}, nil
}

// HealthCheck probes the grid's version endpoint and returns nil when the
// grid is accepting connections.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var info versionInfo

	resp, err := p.http.R().
		SetContext(ctx).
		SetResult(&info).
		Get("/json/version")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGridUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrGridUnavailable, resp.StatusCode())
	}

	p.logger.Debug("grid healthy",
		"browser", info.Browser,
		"protocol", info.ProtocolVersion)

	return nil
}

// WaitUntilReady polls the grid until it answers health checks or the
// configured ready wait elapses.
func (p *Pool) WaitUntilReady(ctx context.Context) error {
	deadline := time.Now().Add(p.cfg.ReadyWait)

	for {
		err := p.HealthCheck(ctx)
		if err == nil {
			p.logger.Info("browser grid ready", "url", p.cfg.URL)
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: not ready after %s", ErrGridUnavailable, p.cfg.ReadyWait)
		}

		p.logger.Info("waiting for browser grid",
			"remaining", remaining.Round(time.Second).String())

		wait := readyPollInterval
		if remaining < wait {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for grid: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// Acquire leases a session, blocking while the pool is at capacity. The
// caller must Release the session when finished with it.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquiring session: %w", ctx.Err())
	}

	sess, err := p.createSession(ctx)
	if err != nil {
		<-p.sem
		return nil, err
	}

	return sess, nil
}

// createSession spins up a fresh tab on the grid with retry and verifies it
// with a smoke navigation before handing it out.
func (p *Pool) createSession(ctx context.Context) (*Session, error) {
	var sess *Session

	retryCfg := retry.Config{
		MaxAttempts:  p.cfg.CreateRetries,
		InitialDelay: createRetryDelay,
		MaxDelay:     30 * time.Second,
		Backoff:      retry.BackoffLinear,
	}

	err := retry.Do(ctx, retryCfg, func() error {
		if healthErr := p.HealthCheck(ctx); healthErr != nil {
			return healthErr
		}

		created, createErr := p.newSession()
		if createErr != nil {
			return createErr
		}

		sess = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionFailed, err)
	}

	p.logger.Debug("session acquired", "user_agent", sess.userAgent)

	return sess, nil
}

func (p *Pool) newSession() (*Session, error) {
	alloc, err := p.allocator()
	if err != nil {
		return nil, err
	}

	ua := randomUserAgent()

	tabCtx, tabCancel := chromedp.NewContext(alloc)
	sessCtx, sessCancel := context.WithTimeout(tabCtx, p.cfg.SessionTimeout)

	cancel := func() {
		sessCancel()
		tabCancel()
	}

	// Stealth must be applied before the first navigation so the injected
	// script covers every document the session loads.
	smokeCtx, smokeCancel := context.WithTimeout(sessCtx, smokeTimeout)
	defer smokeCancel()

	if runErr := chromedp.Run(smokeCtx,
		stealthTasks(ua),
		chromedp.Navigate("about:blank"),
	); runErr != nil {
		cancel()
		return nil, fmt.Errorf("session smoke test: %w", runErr)
	}

	return &Session{
		ctx:       sessCtx,
		cancel:    cancel,
		pool:      p,
		userAgent: ua,
	}, nil
}

// allocator lazily connects to the grid. The allocator context outlives
// individual sessions and is torn down by Close.
func (p *Pool) allocator() (context.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	if p.allocCtx == nil {
		p.allocCtx, p.allocCancel = chromedp.NewRemoteAllocator(context.Background(), p.cfg.URL)
	}

	return p.allocCtx, nil
}

// release returns a session's slot to the pool.
func (p *Pool) release() {
	<-p.sem
}

// Close tears down the grid connection. In-flight sessions are cancelled.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.allocCancel != nil {
		p.allocCancel()
		p.allocCtx = nil
		p.allocCancel = nil
	}

	p.logger.Info("browser pool closed")
}

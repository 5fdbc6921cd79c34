package server

import (
	"cmp"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"
)

// Hook priorities. Lower values run first.
const (
	PriorityReadiness = 0
	PriorityServers   = 10
	PriorityFlush     = 80
)

const defaultShutdownTimeout = 30 * time.Second

// ShutdownHook is one step of the shutdown sequence.
type ShutdownHook struct {
	Name     string
	Priority int
	Fn       func(ctx context.Context) error
}

// ShutdownConfig configures a ShutdownHandler.
type ShutdownConfig struct {
	// Timeout bounds the whole hook sequence. Zero means 30s.
	Timeout time.Duration
	// Signals that trigger shutdown. None means only Shutdown does.
	Signals []os.Signal
}

// DefaultShutdownConfig listens for SIGTERM and SIGINT.
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: defaultShutdownTimeout,
		Signals: []os.Signal{syscall.SIGTERM, syscall.SIGINT},
	}
}

// ShutdownHandler runs hooks in priority order, once, after a signal or an
// explicit Shutdown. Hooks share a single deadline.
type ShutdownHandler struct {
	timeout time.Duration
	signals []os.Signal

	mu      sync.Mutex
	hooks   []ShutdownHook
	trigger chan struct{} // nil until Start

	triggerOnce sync.Once
	stopping    chan struct{}
	done        chan struct{}
}

func NewShutdownHandler(cfg *ShutdownConfig) *ShutdownHandler {
	if cfg == nil {
		cfg = DefaultShutdownConfig()
	}
	return &ShutdownHandler{
		timeout:  cmp.Or(max(cfg.Timeout, 0), defaultShutdownTimeout),
		signals:  cfg.Signals,
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// RegisterHook adds a hook built from its parts.
func (s *ShutdownHandler) RegisterHook(name string, priority int, fn func(ctx context.Context) error) {
	s.Register(ShutdownHook{Name: name, Priority: priority, Fn: fn})
}

// Register adds hook. Hooks of equal priority keep registration order.
func (s *ShutdownHandler) Register(hook ShutdownHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Start arms the handler. Calling it again does nothing.
func (s *ShutdownHandler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trigger != nil {
		return
	}
	s.trigger = make(chan struct{})
	go s.watch(s.trigger)
}

// Shutdown begins the hook sequence. Before Start it is ignored.
func (s *ShutdownHandler) Shutdown() {
	s.mu.Lock()
	trigger := s.trigger
	s.mu.Unlock()
	if trigger == nil {
		return
	}
	s.triggerOnce.Do(func() { close(trigger) })
}

// Wait blocks until every hook has run.
func (s *ShutdownHandler) Wait() { <-s.done }

// WaitWithTimeout reports whether shutdown finished within timeout.
func (s *ShutdownHandler) WaitWithTimeout(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.done:
		return true
	case <-t.C:
		return false
	}
}

// Done closes once every hook has run.
func (s *ShutdownHandler) Done() <-chan struct{} { return s.done }

// Stopping closes when the hook sequence begins.
func (s *ShutdownHandler) Stopping() <-chan struct{} { return s.stopping }

func (s *ShutdownHandler) watch(trigger <-chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	if len(s.signals) > 0 {
		signal.Notify(sigCh, s.signals...)
		defer signal.Stop(sigCh)
	}
	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case <-trigger:
	}
	s.run()
}

// ordered returns a snapshot of the hooks sorted by priority.
func (s *ShutdownHandler) ordered() []ShutdownHook {
	s.mu.Lock()
	hooks := slices.Clone(s.hooks)
	s.mu.Unlock()
	slices.SortStableFunc(hooks, func(a, b ShutdownHook) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return hooks
}

func (s *ShutdownHandler) run() {
	close(s.stopping)
	defer close(s.done)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	for _, hook := range s.ordered() {
		runHook(ctx, hook)
	}
}

// runHook logs failures and keeps going so one bad hook cannot block the rest.
func runHook(ctx context.Context, hook ShutdownHook) {
	start := time.Now()
	if err := hook.Fn(ctx); err != nil {
		slog.Error("Shutdown hook failed", "hook", hook.Name, "error", err)
		return
	}
	slog.Debug("Shutdown hook finished", "hook", hook.Name, "duration", time.Since(start))
}

// HTTPServerShutdownHook stops a server so later hooks run without traffic.
func HTTPServerShutdownHook(name string, shutdownFn func(ctx context.Context) error) ShutdownHook {
	return ShutdownHook{Name: name, Priority: PriorityServers, Fn: shutdownFn}
}

// TracingShutdownHook flushes spans once the servers are down.
func TracingShutdownHook(shutdownFn func(ctx context.Context) error) ShutdownHook {
	return ShutdownHook{Name: "tracing", Priority: PriorityFlush, Fn: shutdownFn}
}

// ReadinessShutdownHook fails the readiness probe first.
func ReadinessShutdownHook(h *HealthServer) ShutdownHook {
	return ShutdownHook{
		Name:     "readiness",
		Priority: PriorityReadiness,
		Fn: func(context.Context) error {
			h.SetReady(false)
			return nil
		},
	}
}

// Package shutdown provides graceful shutdown functionality for gpuwatch.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/gpuwatch-project/gpuwatch/internal/logger"
)

// Hook represents a function that is called during shutdown
type Hook func(ctx context.Context) error

// HookPriority defines the order in which hooks are executed
type HookPriority int

const (
	// PriorityCritical hooks run first (e.g., stop accepting new connections)
	PriorityCritical HookPriority = 0
	// PriorityHigh hooks run second (e.g., stop broadcasting)
	PriorityHigh HookPriority = 1
	// PriorityNormal hooks run third (e.g., release native handles)
	PriorityNormal HookPriority = 2
	// PriorityLow hooks run last (e.g., flush logs)
	PriorityLow HookPriority = 3
)

// registeredHook pairs a hook with its name and priority
type registeredHook struct {
	name     string
	hook     Hook
	priority HookPriority
}

// Manager manages graceful shutdown
type Manager struct {
	mu       sync.Mutex
	hooks    []registeredHook
	timeout  time.Duration
	sigChan  chan os.Signal
	stopChan chan struct{}
	done     chan struct{}
	started  bool
	shutdown bool
}

// NewManager creates a new shutdown manager. timeout bounds the
// execution of each individual hook.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		timeout:  timeout,
		sigChan:  make(chan os.Signal, 1),
		stopChan: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Register registers a new shutdown hook with the given name and priority
func (m *Manager) Register(name string, hook Hook, priority HookPriority) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks = append(m.hooks, registeredHook{
		name:     name,
		hook:     hook,
		priority: priority,
	})
	logger.Debugf("registered shutdown hook: %s (priority: %d)", name, priority)
}

// Start begins listening for shutdown signals
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	go m.waitForShutdown()
}

// waitForShutdown waits for a shutdown trigger
func (m *Manager) waitForShutdown() {
	select {
	case sig := <-m.sigChan:
		logger.Infof("received signal: %v", sig)
	case <-m.stopChan:
		logger.Info("received stop request")
	}
	m.performShutdown()
}

// performShutdown executes all shutdown hooks in priority order
func (m *Manager) performShutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	hooks := make([]registeredHook, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	logger.Info("shutting down...")

	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].priority < hooks[j].priority
	})

	for _, h := range hooks {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)

		done := make(chan error, 1)
		go func(h registeredHook) {
			done <- h.hook(ctx)
		}(h)

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("shutdown hook %s failed: %v", h.name, err)
			} else {
				logger.Debugf("shutdown hook %s completed", h.name)
			}
		case <-ctx.Done():
			logger.Errorf("shutdown hook %s timed out after %v", h.name, m.timeout)
		}
		cancel()
	}

	logger.Info("shutdown complete")
	close(m.done)
}

// Stop triggers graceful shutdown programmatically
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		return
	}

	select {
	case m.stopChan <- struct{}{}:
	default:
	}
}

// Done returns a channel that's closed when shutdown is complete
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until shutdown is complete
func (m *Manager) Wait() {
	<-m.done
}

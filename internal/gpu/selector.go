package gpu

import (
	"fmt"
	"sync"
)

// BootstrapConfig controls backend selection and mock fallback behavior
type BootstrapConfig struct {
	// MockDevices is the number of simulated devices used when falling
	// back to the mock backend
	MockDevices int
	// MockSeed seeds the simulated device identities
	MockSeed int64
}

// hardwareFactory constructs the hardware backend. Injected in tests to
// force initialization failures.
type hardwareFactory func(log Logger) (Provider, func(), error)

// Selector resolves the active provider exactly once at bootstrap.
// There is no runtime re-attempt or hot-swap: if hardware availability
// changes later, a restart is required.
type Selector struct {
	provider  Provider
	shutdown  func()
	closeOnce sync.Once
}

// Bootstrap attempts hardware backend initialization and falls back to
// the mock backend on any failure, recording the reason in the service
// status. It never fails and never panics.
func Bootstrap(cfg BootstrapConfig, log Logger) *Selector {
	return bootstrapWith(newHardwareProvider, cfg, log)
}

func bootstrapWith(factory hardwareFactory, cfg BootstrapConfig, log Logger) *Selector {
	if log == nil {
		log = noopLogger{}
	}

	provider, shutdown, err := tryFactory(factory, log)
	if err != nil {
		log.Warnf("hardware backend unavailable, using mock backend: %v", err)
		return &Selector{
			provider: NewMockProvider(cfg.MockDevices, cfg.MockSeed, err.Error(), log),
			shutdown: func() {},
		}
	}

	log.Infof("hardware backend active")
	return &Selector{provider: provider, shutdown: shutdown}
}

// tryFactory invokes the hardware factory, converting a panic from the
// native layer into an ordinary init error
func tryFactory(factory hardwareFactory, log Logger) (provider Provider, shutdown func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			provider, shutdown = nil, nil
			err = &InitError{Cause: fmt.Sprintf("panic during initialization: %v", r)}
		}
	}()
	return factory(log)
}

// Provider returns the resolved provider. The reference is fixed after
// Bootstrap returns.
func (s *Selector) Provider() Provider {
	return s.provider
}

// Close releases the native library handle. Safe to call multiple times
// and safe to call when hardware initialization never succeeded.
func (s *Selector) Close() {
	s.closeOnce.Do(s.shutdown)
}

package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHooksRunInPriorityOrder(t *testing.T) {
	m := NewManager(time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) Hook {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	m.Register("logs", record("logs"), PriorityLow)
	m.Register("http", record("http"), PriorityCritical)
	m.Register("nvml", record("nvml"), PriorityNormal)
	m.Register("websocket", record("websocket"), PriorityHigh)

	m.Start()
	m.Stop()
	m.Wait()

	assert.Equal(t, []string{"http", "websocket", "nvml", "logs"}, order)
}

func TestFailingHookDoesNotBlockOthers(t *testing.T) {
	m := NewManager(time.Second)

	ran := false
	m.Register("failing", func(ctx context.Context) error {
		return errors.New("close failed")
	}, PriorityCritical)
	m.Register("after", func(ctx context.Context) error {
		ran = true
		return nil
	}, PriorityNormal)

	m.Start()
	m.Stop()
	m.Wait()

	assert.True(t, ran)
}

func TestHungHookTimesOut(t *testing.T) {
	m := NewManager(50 * time.Millisecond)

	m.Register("hung", func(ctx context.Context) error {
		<-time.After(5 * time.Second)
		return nil
	}, PriorityCritical)

	m.Start()
	m.Stop()

	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete after hook timeout")
	}
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	m := NewManager(time.Second)
	assert.NotPanics(t, func() { m.Stop() })
}

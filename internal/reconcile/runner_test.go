package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
)

func TestRunner_NotifyTriggersPass(t *testing.T) {
	repo := newMockIpoRepo(ipo.Ipo{ID: 1, Symbol: "AAA", Status: ipo.StatusListed})
	logs := &mockLogRepo{}
	resolver := &mockResolver{fn: func(string) (*quote.Quote, error) {
		return &quote.Quote{Price: 10, Source: "yahoo"}, nil
	}}
	svc := NewService(repo, logs, resolver, nil, WithGroupDelay(0))

	runner := NewRunner(svc, time.Hour) // tick far away so only Notify fires

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	runner.Notify()

	deadline := time.After(2 * time.Second)
	for {
		resolver.mu.Lock()
		calls := resolver.calls
		resolver.mu.Unlock()
		if calls >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out: Notify did not trigger a pass")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for runner shutdown")
	}
}

func TestRunner_StopsOnCancel(t *testing.T) {
	svc := NewService(newMockIpoRepo(), &mockLogRepo{}, &mockResolver{fn: nil}, nil)
	runner := NewRunner(svc, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for runner to stop")
	}
}

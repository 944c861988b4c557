package static

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillsenselab/rpckit/discovery"
)

func TestDiscover(t *testing.T) {
	p := NewProvider([]discovery.StaticEndpoint{
		{Name: "echo", Address: "10.0.0.1", Port: 50051},
		{Name: "echo", Address: "10.0.0.2", Port: 50051},
		{Name: "other", Address: "10.0.0.3", Port: 50052},
	})

	instances, err := p.Discover(context.Background(), "echo")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	if instances[0].Address != "10.0.0.1" || instances[1].Address != "10.0.0.2" {
		t.Errorf("instances out of input order: %v", instances)
	}
	for _, inst := range instances {
		if inst.Health != discovery.HealthHealthy {
			t.Errorf("static instances should be healthy, got %s", inst.Health)
		}
	}
}

func TestDiscoverUnknownService(t *testing.T) {
	p := NewProvider(nil)
	_, err := p.Discover(context.Background(), "missing")
	if !errors.Is(err, discovery.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestWatchEmitsInitialSet(t *testing.T) {
	p := NewProvider([]discovery.StaticEndpoint{
		{Name: "echo", Address: "10.0.0.1", Port: 50051},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx, "echo")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	select {
	case instances := <-ch:
		if len(instances) != 1 {
			t.Errorf("expected initial set of 1, got %d", len(instances))
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not emit initial instance set")
	}

	cancel()
	select {
	case _, open := <-ch:
		if open {
			t.Error("channel should close after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestFactoryRegistered(t *testing.T) {
	d, err := discovery.New(discovery.Config{
		Provider: "static",
		StaticEndpoints: []discovery.StaticEndpoint{
			{Name: "echo", Address: "10.0.0.1", Port: 50051},
		},
	}, nil)
	if err != nil {
		t.Fatalf("discovery.New: %v", err)
	}
	if _, ok := d.(*Provider); !ok {
		t.Errorf("expected *Provider, got %T", d)
	}
}

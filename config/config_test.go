package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skillsenselab/rpckit/proxy"
)

const sampleConfig = `
transport:
  connect_timeout: 5s
  keepalive:
    time: 20s
discovery:
  provider: consul
  consul_addr: consul.internal:8500
consumers:
  - service: billing.Invoices
    methods: [Create, Fetch]
    registry: true
    wait_for_available: 3s
    invoke: sync
    dispatch: unicast
    timeout: 2s
    method_timeouts:
      Create: 500ms
      Fetch: 1s
  - service: audit.Trail
    dispatch: broadcast
    providers:
      - "10.0.0.1:50051"
      - "10.0.0.2:50051"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadSample(t *testing.T) *File {
	t.Helper()
	var f File
	if err := Load("rpckit-test", &f, WithConfigFile(writeConfig(t, sampleConfig))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &f
}

func TestLoadParsesFile(t *testing.T) {
	f := loadSample(t)

	if f.Transport.ConnectTimeout != 5*time.Second {
		t.Errorf("connect_timeout = %s", f.Transport.ConnectTimeout)
	}
	if f.Transport.Keepalive.Time != 20*time.Second {
		t.Errorf("keepalive.time = %s", f.Transport.Keepalive.Time)
	}
	if f.Discovery.Provider != "consul" || f.Discovery.ConsulAddr != "consul.internal:8500" {
		t.Errorf("discovery = %+v", f.Discovery)
	}
	if len(f.Consumers) != 2 {
		t.Fatalf("consumers = %d", len(f.Consumers))
	}

	billing := f.Consumers[0]
	if billing.Service != "billing.Invoices" || !billing.Registry {
		t.Errorf("billing spec = %+v", billing)
	}
	if billing.WaitForAvailable != 3*time.Second {
		t.Errorf("wait_for_available = %s", billing.WaitForAvailable)
	}
	if billing.MethodTimeouts["Create"] != 500*time.Millisecond {
		t.Errorf("method_timeouts = %v", billing.MethodTimeouts)
	}
}

func TestFileValidate(t *testing.T) {
	f := loadSample(t)
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsStaticWithoutProviders(t *testing.T) {
	var f File
	err := Load("rpckit-test", &f, WithConfigFile(writeConfig(t, `
consumers:
  - service: audit.Trail
`)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.Validate(); err == nil {
		t.Fatal("expected validation failure for static consumer without providers")
	}
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	var f File
	if err := f.Validate(); err == nil {
		t.Fatal("expected validation failure for file without consumers")
	}
}

func TestConsumerSpecBuildRegistry(t *testing.T) {
	f := loadSample(t)
	cfg, source, err := f.Consumers[0].Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !source.HasRegistry() {
		t.Error("registry spec must yield a registry source")
	}
	if cfg.Service() != "billing.Invoices" {
		t.Errorf("service = %s", cfg.Service())
	}
	if cfg.WaitForAvailable() != 3*time.Second {
		t.Errorf("wait = %s", cfg.WaitForAvailable())
	}
	if cfg.Timeout() != 2*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout())
	}
	if cfg.MethodTimeouts()["Create"] != 500*time.Millisecond {
		t.Errorf("method timeouts = %v", cfg.MethodTimeouts())
	}
	if !cfg.Descriptor().HasMethod("Fetch") {
		t.Error("descriptor lost methods")
	}
}

func TestConsumerSpecBuildStatic(t *testing.T) {
	f := loadSample(t)
	cfg, source, err := f.Consumers[1].Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if source.HasRegistry() {
		t.Error("static spec must not yield a registry source")
	}
	addrs := source.ProviderAddresses()
	if len(addrs) != 2 || addrs[0].Host != "10.0.0.1" || addrs[1].Port != 50051 {
		t.Errorf("addresses = %v", addrs)
	}
	if cfg.DispatchType() != proxy.DispatchBroadcast {
		t.Errorf("dispatch = %s", cfg.DispatchType())
	}
}

func TestConsumerSpecBuildRejectsBadProvider(t *testing.T) {
	spec := ConsumerSpec{Service: "x.Y", Providers: []string{"not-an-address"}}
	if _, _, err := spec.Build(); err == nil {
		t.Fatal("expected error for malformed provider address")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("DISCOVERY_CONSUL_ADDR", "env.internal:8500")

	var f File
	if err := Load("rpckit-test", &f, WithConfigFile(writeConfig(t, sampleConfig))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Discovery.ConsulAddr != "env.internal:8500" {
		t.Errorf("env override ignored, got %s", f.Discovery.ConsulAddr)
	}
}

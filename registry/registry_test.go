package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalgreatworks0/ClientForge-sub014/module"
)

// fakeModule implements only the required contract
type fakeModule struct {
	name    string
	version string
	deps    []string

	mu        sync.Mutex
	initCount int
	initErr   error
	onInit    func(mctx *module.Context) error
}

func (f *fakeModule) Name() string            { return f.name }
func (f *fakeModule) Version() string         { return f.version }
func (f *fakeModule) Dependencies() []string  { return f.deps }
func (f *fakeModule) Initialize(ctx context.Context, mctx *module.Context) error {
	f.mu.Lock()
	f.initCount++
	f.mu.Unlock()
	if f.onInit != nil {
		return f.onInit(mctx)
	}
	return f.initErr
}

func (f *fakeModule) initializations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCount
}

func newFake(name string, deps ...string) *fakeModule {
	return &fakeModule{name: name, version: "1.0.0", deps: deps}
}

// optionalModule adds warn-only dependencies
type optionalModule struct {
	*fakeModule
	optional []string
}

func (o *optionalModule) OptionalDependencies() []string { return o.optional }

// shutdownModule records shutdown invocations
type shutdownModule struct {
	*fakeModule
	onShutdown func() error
}

func (s *shutdownModule) Shutdown(ctx context.Context) error {
	if s.onShutdown != nil {
		return s.onShutdown()
	}
	return nil
}

// migratingModule adds a best-effort migration hook
type migratingModule struct {
	*fakeModule
	migrateErr error
	migrated   bool
}

func (m *migratingModule) Migrate(ctx context.Context, mctx *module.Context) error {
	m.migrated = true
	return m.migrateErr
}

// healthModule reports a fixed health
type healthModule struct {
	*fakeModule
	health module.Health
}

func (h *healthModule) HealthCheck(ctx context.Context) module.Health { return h.health }

func TestRegister_Validation(t *testing.T) {
	r := New()

	var merr *module.Error

	err := r.Register(&fakeModule{name: "", version: "1.0.0"})
	require.Error(t, err)
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, module.PhaseRegister, merr.Phase)

	err = r.Register(&fakeModule{name: "auth", version: ""})
	require.Error(t, err)
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, module.PhaseRegister, merr.Phase)
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newFake("auth")))

	err := r.Register(newFake("auth"))
	require.Error(t, err)

	var merr *module.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "auth", merr.Module)
	assert.Equal(t, module.PhaseRegister, merr.Phase)
}

func TestAccessors(t *testing.T) {
	r := New()
	auth := newFake("auth")
	require.NoError(t, r.Register(auth))

	assert.True(t, r.HasModule("auth"))
	assert.False(t, r.HasModule("contacts"))

	got, err := r.GetModule("auth")
	require.NoError(t, err)
	assert.Same(t, module.Interface(auth), got)

	_, err = r.GetModule("contacts")
	assert.Error(t, err)

	assert.Len(t, r.GetModules(), 1)
	assert.Empty(t, r.LoadOrder(), "load order is empty until InitializeAll runs")
}

func TestUnregister_BlockedByDependent(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newFake("auth")))
	require.NoError(t, r.Register(newFake("contacts", "auth")))

	err := r.Unregister("auth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contacts")
	assert.True(t, r.HasModule("auth"))
}

func TestUnregister_RemovesModule(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newFake("auth")))
	require.NoError(t, r.Register(newFake("contacts", "auth")))

	require.NoError(t, r.Unregister("contacts"))
	assert.False(t, r.HasModule("contacts"))

	// With the dependent gone, auth can be removed too
	require.NoError(t, r.Unregister("auth"))
	assert.False(t, r.HasModule("auth"))
}

func TestUnregister_NotBlockedByOptionalDependent(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newFake("billing")))
	require.NoError(t, r.Register(&optionalModule{
		fakeModule: newFake("analytics"),
		optional:   []string{"billing"},
	}))

	// Optional dependencies are warn-only, so they never pin a module
	require.NoError(t, r.Unregister("billing"))
	assert.False(t, r.HasModule("billing"))
}

func TestUnregister_Unknown(t *testing.T) {
	r := New()
	assert.Error(t, r.Unregister("ghost"))
}

func TestHealthCheck(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newFake("plain")))
	require.NoError(t, r.Register(&healthModule{
		fakeModule: newFake("search"),
		health:     module.Degraded("index rebuilding"),
	}))
	require.NoError(t, r.Register(&fakeModule{
		name: "broken", version: "1.0.0", initErr: errors.New("boom"),
	}))

	require.NoError(t, r.InitializeAll(context.Background(), nil))

	health := r.HealthCheck(context.Background())
	assert.Equal(t, module.StatusOK, health["plain"].Status)
	assert.Equal(t, module.StatusDegraded, health["search"].Status)
	assert.Equal(t, module.StatusDown, health["broken"].Status)
}

func TestExecuteWithCircuitBreaker(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newFake("deals")))

	out, err := r.ExecuteWithCircuitBreaker("deals", func() (any, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	_, err = r.ExecuteWithCircuitBreaker("ghost", func() (any, error) { return nil, nil })
	assert.Error(t, err)
}

package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"traefiker/internal/constants"
	"traefiker/internal/container"

	"github.com/stretchr/testify/mock"
)

// FakeContainer is a container held by FakeRuntime
type FakeContainer struct {
	ID      string
	Name    string
	Image   string
	Env     []string
	Labels  map[string]string
	Network string
	Running bool
}

// FakeRuntime is an in-memory container.Runtime. It behaves like a daemon
// with respect to names: creating a second container under a taken name fails.
type FakeRuntime struct {
	mu         sync.Mutex
	containers map[string]*FakeContainer
	calls      map[string][]interface{}
	errors     map[string]error
	nextID     int
	maxLive    map[string]int

	// ImageEnv is reported by Inspect ahead of the container's own variables
	ImageEnv []string

	// CreateFn is called by Create before the container is stored when set
	CreateFn func(ctx context.Context, spec *container.CreateSpec) error
}

// NewFakeRuntime creates an empty fake runtime
func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{
		containers: make(map[string]*FakeContainer),
		calls:      make(map[string][]interface{}),
		errors:     make(map[string]error),
		maxLive:    make(map[string]int),
	}
}

// SetError makes every later call of method fail with err. A nil err clears it.
func (f *FakeRuntime) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errors, method)
		return
	}
	f.errors[method] = err
}

// GetCalls returns the refs or specs method was called with
func (f *FakeRuntime) GetCalls(method string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}(nil), f.calls[method]...)
}

// CallCount returns how often method was called
func (f *FakeRuntime) CallCount(method string) int {
	return len(f.GetCalls(method))
}

// TotalCalls returns the number of calls across all methods
func (f *FakeRuntime) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, calls := range f.calls {
		total += len(calls)
	}
	return total
}

// Containers returns a snapshot of the stored containers
func (f *FakeRuntime) Containers() []FakeContainer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeContainer, 0, len(f.containers))
	for _, c := range f.containers {
		out = append(out, *c)
	}
	return out
}

// ContainersFor returns the containers labelled with the service name
func (f *FakeRuntime) ContainersFor(service string) []FakeContainer {
	var out []FakeContainer
	for _, c := range f.Containers() {
		if c.Labels[constants.LabelService] == service {
			out = append(out, c)
		}
	}
	return out
}

// MaxLiveFor returns the largest number of containers that ever existed at
// the same time for the service
func (f *FakeRuntime) MaxLiveFor(service string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLive[service]
}

func (f *FakeRuntime) record(method string, arg interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method] = append(f.calls[method], arg)
	return f.errors[method]
}

// find looks a container up by ID or name; callers hold mu
func (f *FakeRuntime) find(ref string) *FakeContainer {
	if c, ok := f.containers[ref]; ok {
		return c
	}
	for _, c := range f.containers {
		if c.Name == ref {
			return c
		}
	}
	return nil
}

func (f *FakeRuntime) notFound(operation, ref string) error {
	err := container.NewContainerError(container.ErrorTypeContainerNotFound, operation,
		fmt.Sprintf("no such container: %s", ref), nil)
	err.ContainerID = ref
	return err
}

// Create implements container.Runtime
func (f *FakeRuntime) Create(ctx context.Context, spec *container.CreateSpec) (*container.Handle, error) {
	if err := f.record("Create", spec); err != nil {
		return nil, err
	}
	if f.CreateFn != nil {
		if err := f.CreateFn(ctx, spec); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.find(spec.Name) != nil {
		return nil, container.NewContainerError(container.ErrorTypeConflict, "create",
			fmt.Sprintf("container name %s is already in use", spec.Name), nil)
	}

	f.nextID++
	c := &FakeContainer{
		ID:      fmt.Sprintf("%064x", f.nextID),
		Name:    spec.Name,
		Image:   spec.Image,
		Env:     append([]string(nil), spec.Env...),
		Labels:  spec.Labels,
		Network: spec.Network,
	}
	f.containers[c.ID] = c

	if service := c.Labels[constants.LabelService]; service != "" {
		live := 0
		for _, other := range f.containers {
			if other.Labels[constants.LabelService] == service {
				live++
			}
		}
		if live > f.maxLive[service] {
			f.maxLive[service] = live
		}
	}

	return &container.Handle{ID: c.ID, Name: c.Name}, nil
}

// Start implements container.Runtime
func (f *FakeRuntime) Start(_ context.Context, ref string) error {
	if err := f.record("Start", ref); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.find(ref)
	if c == nil {
		return f.notFound("start", ref)
	}
	c.Running = true
	return nil
}

// Stop implements container.Runtime
func (f *FakeRuntime) Stop(_ context.Context, ref string) error {
	if err := f.record("Stop", ref); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.find(ref)
	if c == nil {
		return f.notFound("stop", ref)
	}
	c.Running = false
	return nil
}

// Remove implements container.Runtime; removing a missing container succeeds
func (f *FakeRuntime) Remove(_ context.Context, ref string) error {
	if err := f.record("Remove", ref); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c := f.find(ref); c != nil {
		delete(f.containers, c.ID)
	}
	return nil
}

// Inspect implements container.Runtime
func (f *FakeRuntime) Inspect(_ context.Context, ref string) (*container.Inspection, error) {
	if err := f.record("Inspect", ref); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.find(ref)
	if c == nil {
		return nil, f.notFound("inspect", ref)
	}

	network := c.Network
	if network == "" {
		network = "bridge"
	}
	state := "created"
	if c.Running {
		state = "running"
	}
	return &container.Inspection{
		ID:          c.ID,
		Name:        "/" + strings.TrimPrefix(c.Name, "/"),
		NetworkMode: network,
		Env:         append(append([]string(nil), f.ImageEnv...), c.Env...),
		State:       state,
	}, nil
}

// MockRuntime is a testify mock of container.Runtime
type MockRuntime struct {
	mock.Mock
}

// Create implements container.Runtime
func (m *MockRuntime) Create(ctx context.Context, spec *container.CreateSpec) (*container.Handle, error) {
	args := m.Called(ctx, spec)
	if handle := args.Get(0); handle != nil {
		return handle.(*container.Handle), args.Error(1)
	}
	return nil, args.Error(1)
}

// Start implements container.Runtime
func (m *MockRuntime) Start(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

// Stop implements container.Runtime
func (m *MockRuntime) Stop(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

// Remove implements container.Runtime
func (m *MockRuntime) Remove(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

// Inspect implements container.Runtime
func (m *MockRuntime) Inspect(ctx context.Context, ref string) (*container.Inspection, error) {
	args := m.Called(ctx, ref)
	if inspection := args.Get(0); inspection != nil {
		return inspection.(*container.Inspection), args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	_ container.Runtime = (*FakeRuntime)(nil)
	_ container.Runtime = (*MockRuntime)(nil)
)

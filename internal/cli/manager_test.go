package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/server"
	"traefiker/internal/service"
	"traefiker/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testLauncher struct {
	manager  *service.Manager
	database *db.DB
	opened   int
	served   *ServeOptions
}

func newTestLauncher(t *testing.T, runtime *testutil.FakeRuntime) *testLauncher {
	t.Helper()

	database := testutil.SetupTestDB(t)
	manager := service.NewManager(db.NewStore(database), runtime, service.Options{
		Network:          "traefiker",
		OperationTimeout: 5 * time.Second,
		PullTimeout:      5 * time.Second,
	})
	t.Cleanup(func() { manager.Close(context.Background()) })

	return &testLauncher{manager: manager, database: database}
}

func (l *testLauncher) OpenLocal(ctx context.Context, configPath string) (*Backend, error) {
	l.opened++
	return &Backend{Services: l.manager, Wait: l.manager.Wait}, nil
}

func (l *testLauncher) Serve(ctx context.Context, opts ServeOptions) error {
	l.served = &opts
	return nil
}

func execute(t *testing.T, launcher Launcher, args ...string) (string, error) {
	t.Helper()

	m := New(launcher)
	var out bytes.Buffer
	m.Root().SetOut(&out)
	m.Root().SetErr(&out)
	err := m.ExecuteWithContext(context.Background(), args)
	return out.String(), err
}

func TestLocalServiceLifecycle(t *testing.T) {
	t.Setenv(ServerEnv, "")
	runtime := testutil.NewFakeRuntime()
	launcher := newTestLauncher(t, runtime)

	out, err := execute(t, launcher, "project", "create", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Project shop created")

	out, err = execute(t, launcher, "service", "create", "web", "--image", "nginx", "--project", "shop", "--host", "shop.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "RUNNING")
	assert.Contains(t, out, "shop.example.com")

	out, err = execute(t, launcher, "service", "get", "web", "-o", "json")
	require.NoError(t, err)
	var rec service.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, db.StatusRunning, rec.Status)
	assert.Equal(t, "shop", rec.Project)

	_, err = execute(t, launcher, "service", "update", "web", "-e", "GREETING=hello", "--redirect", "^/old=>/new")
	require.NoError(t, err)

	out, err = execute(t, launcher, "service", "list", "-o", "yaml")
	require.NoError(t, err)
	var page map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &page))
	assert.Equal(t, 1, page["total_items"])

	out, err = execute(t, launcher, "service", "stop", "web")
	require.NoError(t, err)
	assert.Contains(t, out, "STOPPED")

	_, err = execute(t, launcher, "service", "delete", "web")
	require.NoError(t, err)
	assert.Empty(t, runtime.Containers())

	_, err = execute(t, launcher, "service", "get", "web")
	assert.True(t, errors.IsNotFound(err))
}

func TestLocalCreateReportsProvisioningFailure(t *testing.T) {
	t.Setenv(ServerEnv, "")
	runtime := testutil.NewFakeRuntime()
	runtime.SetError("Create", assert.AnError)
	launcher := newTestLauncher(t, runtime)

	_, err := execute(t, launcher, "project", "create", "shop")
	require.NoError(t, err)

	out, err := execute(t, launcher, "service", "create", "web", "--image", "nginx", "--project", "shop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to provision")
	assert.Contains(t, out, "ERROR")
}

func TestRemoteModeUsesServer(t *testing.T) {
	runtime := testutil.NewFakeRuntime()
	launcher := newTestLauncher(t, runtime)
	ts := httptest.NewServer(server.New(nil, launcher.manager, launcher.database).Handler())
	defer ts.Close()

	_, err := execute(t, launcher, "--server", ts.URL, "project", "create", "shop")
	require.NoError(t, err)

	out, err := execute(t, launcher, "--server", ts.URL, "service", "create", "web",
		"--image", "nginx", "--project", "shop", "--wait", "--timeout", "10s")
	require.NoError(t, err)
	assert.Contains(t, out, "RUNNING")

	t.Setenv(ServerEnv, ts.URL)
	out, err = execute(t, launcher, "project", "services", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "web")

	assert.Zero(t, launcher.opened)
}

func TestServeCommand(t *testing.T) {
	launcher := newTestLauncher(t, testutil.NewFakeRuntime())

	_, err := execute(t, launcher, "serve", "--port", "9090", "--config", "/tmp/traefiker.toml")
	require.NoError(t, err)
	require.NotNil(t, launcher.served)
	assert.Equal(t, 9090, launcher.served.Port)
	assert.Equal(t, "/tmp/traefiker.toml", launcher.served.ConfigPath)
}

func TestInvalidFlags(t *testing.T) {
	t.Setenv(ServerEnv, "")
	launcher := newTestLauncher(t, testutil.NewFakeRuntime())

	_, err := execute(t, launcher, "project", "list", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = execute(t, launcher, "service", "update", "web", "-e", "NOVALUE")
	assert.ErrorContains(t, err, "KEY=VALUE")

	_, err = execute(t, launcher, "service", "list", "--status", "sleeping")
	assert.ErrorContains(t, err, "unknown status")

	_, err = execute(t, launcher, "service", "create", "web", "--project", "shop")
	assert.Error(t, err)
}

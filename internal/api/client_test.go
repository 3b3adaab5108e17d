package api

import (
	"context"
	"net/http"
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
)

func newTestClient(t *testing.T) (*Client, *service.Manager, *testutil.FakeRuntime) {
	t.Helper()

	database := testutil.SetupTestDB(t)
	runtime := testutil.NewFakeRuntime()
	manager := service.NewManager(db.NewStore(database), runtime, service.Options{
		Network:          "traefiker",
		OperationTimeout: 5 * time.Second,
		PullTimeout:      5 * time.Second,
	})
	t.Cleanup(func() { manager.Close(context.Background()) })

	ts := httptest.NewServer(server.New(nil, manager, database).Handler())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL + "/"), manager, runtime
}

func TestClientServiceLifecycle(t *testing.T) {
	client, manager, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Health(ctx))

	project, err := client.CreateProject(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, "shop", project.Name)

	created, err := client.Create(ctx, service.CreateRequest{
		Name:    "web",
		Image:   "nginx:1.27",
		Hosts:   []string{"shop.example.com"},
		Project: "shop",
	})
	require.NoError(t, err)
	assert.Equal(t, db.StatusPulling, created.Status)

	manager.Wait()

	got, err := client.Get(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, db.StatusRunning, got.Status)
	assert.Equal(t, "shop", got.Project)

	stopped, err := client.Stop(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, db.StatusStopped, stopped.Status)

	started, err := client.Start(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, db.StatusRunning, started.Status)

	_, err = client.Recreate(ctx, "web", "")
	require.NoError(t, err)
	manager.Wait()

	services, err := client.ListProjectServices(ctx, "shop")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, db.StatusCreated, services[0].Status)

	require.NoError(t, client.Delete(ctx, "web"))

	_, err = client.Get(ctx, "web")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestClientDecodesErrors(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateProject(ctx, "shop")
	require.NoError(t, err)
	_, err = client.CreateProject(ctx, "shop")
	assert.True(t, errors.HasCode(err, errors.ErrProjectExists))

	te, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, te.GetHTTPStatus())

	_, err = client.Update(ctx, "web", service.UpdateRequest{})
	assert.True(t, errors.IsInvalidRequest(err))

	_, err = client.List(ctx, service.ListOptions{Status: "sleeping"})
	assert.True(t, errors.IsInvalidRequest(err))
}

func TestClientList(t *testing.T) {
	client, manager, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateProject(ctx, "shop")
	require.NoError(t, err)
	for _, name := range []string{"web", "api", "worker"} {
		_, err := client.Create(ctx, service.CreateRequest{Name: name, Image: "nginx", Project: "shop"})
		require.NoError(t, err)
	}
	manager.Wait()

	page, err := client.List(ctx, service.ListOptions{Project: "shop", Status: db.StatusRunning, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestClientNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := NewClient(ts.URL).Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAPICall))
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestClientUnreachable(t *testing.T) {
	err := NewClient("http://127.0.0.1:1").Health(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrNetworkConnection))
}

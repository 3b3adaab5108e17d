//go:build integration

package integration_test

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"traefiker/internal/constants"
	"traefiker/internal/container"
	"traefiker/internal/db"
	"traefiker/internal/service"

	"github.com/stretchr/testify/suite"
)

const (
	testImage   = "traefik/whoami:v1.10"
	testNetwork = "traefiker-integration"
)

// DockerLifecycleTestSuite drives the service manager against a real Docker daemon
type DockerLifecycleTestSuite struct {
	suite.Suite
	db      *db.DB
	runtime *container.DockerRuntime
	manager *service.Manager
}

func TestDockerLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(DockerLifecycleTestSuite))
}

func (s *DockerLifecycleTestSuite) SetupSuite() {
	// Skip if Docker is not available
	if err := exec.Command("docker", "info").Run(); err != nil {
		s.T().Skip("Docker is not available, skipping lifecycle tests")
	}

	var err error
	s.runtime, err = container.NewDockerRuntime(container.DockerConfig{StopTimeout: 2 * time.Second})
	s.Require().NoError(err)
	s.Require().NoError(s.runtime.EnsureNetwork(context.Background(), testNetwork))
}

func (s *DockerLifecycleTestSuite) SetupTest() {
	var err error
	s.db, err = db.New(db.DefaultConfig(filepath.Join(s.T().TempDir(), "traefiker.db")))
	s.Require().NoError(err)
	s.Require().NoError(s.db.Migrate())

	store := db.NewStore(s.db)
	s.manager = service.NewManager(store, s.runtime, service.Options{
		ContainerPrefix:  "traefiker_it_",
		Network:          testNetwork,
		Entrypoint:       constants.DefaultEntrypoint,
		OperationTimeout: 30 * time.Second,
		PullTimeout:      5 * time.Minute,
	})

	_, err = s.manager.CreateProject(context.Background(), "integration")
	s.Require().NoError(err)
}

func (s *DockerLifecycleTestSuite) TearDownTest() {
	ctx := context.Background()
	s.manager.Wait()

	if records, err := s.manager.ListProjectServices(ctx, "integration"); err == nil {
		for _, rec := range records {
			if err := s.manager.Delete(ctx, rec.Name); err != nil {
				s.T().Logf("cleanup of %s failed: %v", rec.Name, err)
			}
		}
	}
	s.manager.Close(ctx)
	s.db.Close()
}

func (s *DockerLifecycleTestSuite) TearDownSuite() {
	if s.runtime != nil {
		s.runtime.Close()
	}
}

func (s *DockerLifecycleTestSuite) TestCreateStopStartDelete() {
	ctx := context.Background()

	_, err := s.manager.Create(ctx, service.CreateRequest{
		Name:    "whoami",
		Image:   testImage,
		Hosts:   []string{"whoami.localhost"},
		Project: "integration",
	})
	s.Require().NoError(err)
	s.manager.Wait()

	rec, err := s.manager.Get(ctx, "whoami")
	s.Require().NoError(err)
	s.Require().Equal(db.StatusRunning, rec.Status)
	s.Require().NotNil(rec.Container)
	s.Equal(testNetwork, rec.Container.Network)

	inspection, err := s.runtime.Inspect(ctx, rec.Container.ContainerID)
	s.Require().NoError(err)
	s.Equal("running", inspection.State)

	rec, err = s.manager.Stop(ctx, "whoami")
	s.Require().NoError(err)
	s.Equal(db.StatusStopped, rec.Status)

	rec, err = s.manager.Start(ctx, "whoami")
	s.Require().NoError(err)
	s.Equal(db.StatusRunning, rec.Status)

	containerID := rec.Container.ContainerID
	s.Require().NoError(s.manager.Delete(ctx, "whoami"))

	_, err = s.runtime.Inspect(ctx, containerID)
	s.True(container.IsNotFound(err))
}

func (s *DockerLifecycleTestSuite) TestUpdateReplacesContainer() {
	ctx := context.Background()

	_, err := s.manager.Create(ctx, service.CreateRequest{
		Name:    "echo",
		Image:   testImage,
		Project: "integration",
	})
	s.Require().NoError(err)
	s.manager.Wait()

	before, err := s.manager.Get(ctx, "echo")
	s.Require().NoError(err)
	s.Require().NotNil(before.Container)

	_, err = s.manager.Update(ctx, "echo", service.UpdateRequest{
		Environment: []service.EnvVar{{Key: "WHOAMI_NAME", Value: "integration"}},
	})
	s.Require().NoError(err)
	s.manager.Wait()

	after, err := s.manager.Get(ctx, "echo")
	s.Require().NoError(err)
	s.Require().NotNil(after.Container)
	s.NotEqual(before.Container.ContainerID, after.Container.ContainerID)
	s.Equal(db.StatusRunning, after.Status)

	inspection, err := s.runtime.Inspect(ctx, after.Container.ContainerID)
	s.Require().NoError(err)
	s.Contains(inspection.Env, "WHOAMI_NAME=integration")
}

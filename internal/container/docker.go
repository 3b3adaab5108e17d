package container

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"traefiker/internal/constants"
	"traefiker/internal/logger"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// builtinNetworks are provided by the daemon and never created by us
var builtinNetworks = map[string]bool{
	"":        true,
	"bridge":  true,
	"host":    true,
	"none":    true,
	"default": true,
}

// DockerConfig configures the Docker Engine runtime
type DockerConfig struct {
	// Host overrides DOCKER_HOST when not empty
	Host string
	// StopTimeout is the grace period before the daemon kills a stopping container
	StopTimeout time.Duration
}

// DockerRuntime implements Runtime over the Docker Engine API
type DockerRuntime struct {
	cli         client.APIClient
	stopTimeout time.Duration
}

// NewDockerRuntime connects to the Docker daemon described by cfg and the environment
func NewDockerRuntime(cfg DockerConfig) (*DockerRuntime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewContainerError(ErrorTypeRuntimeNotFound, "connect", "failed to create docker client", err)
	}
	return NewDockerRuntimeWithClient(cli, cfg.StopTimeout), nil
}

// NewDockerRuntimeWithClient wraps an existing Docker API client
func NewDockerRuntimeWithClient(cli client.APIClient, stopTimeout time.Duration) *DockerRuntime {
	if stopTimeout <= 0 {
		stopTimeout = constants.DefaultStopGracePeriod
	}
	return &DockerRuntime{
		cli:         cli,
		stopTimeout: stopTimeout,
	}
}

// Ping checks that the daemon answers
func (r *DockerRuntime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return NewContainerError(ErrorTypeRuntimeNotFound, "ping", "docker daemon is not reachable", err)
	}
	return nil
}

// Close releases the client's idle connections
func (r *DockerRuntime) Close() error {
	return r.cli.Close()
}

// EnsureNetwork creates the user-defined network containers are attached to
func (r *DockerRuntime) EnsureNetwork(ctx context.Context, name string) error {
	if builtinNetworks[name] {
		return nil
	}

	if _, err := r.cli.NetworkInspect(ctx, name, network.InspectOptions{}); err == nil {
		return nil
	} else if !client.IsErrNotFound(err) {
		return wrapError("inspect network", name, err)
	}

	_, err := r.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{constants.LabelManaged: "true"},
	})
	if err != nil && !errdefs.IsConflict(err) {
		return wrapError("create network", name, err)
	}

	logger.WithFields(logger.Fields{"network": name}).Info("Docker network ready")
	return nil
}

// Create pulls the image when absent and creates the container
func (r *DockerRuntime) Create(ctx context.Context, spec *CreateSpec) (*Handle, error) {
	if err := r.ensureImage(ctx, spec.Image); err != nil {
		return nil, err
	}

	config := &container.Config{
		Image:  spec.Image,
		Env:    spec.Env,
		Labels: spec.Labels,
	}
	hostConfig := &container.HostConfig{
		NetworkMode: container.NetworkMode(spec.Network),
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyUnlessStopped,
		},
	}

	resp, err := r.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if err != nil {
		return nil, wrapError("create", spec.Name, err)
	}

	for _, warning := range resp.Warnings {
		logger.WithFields(logger.Fields{
			"container_id": resp.ID,
			"name":         spec.Name,
		}).Warn(warning)
	}

	return &Handle{ID: resp.ID, Name: spec.Name}, nil
}

// ensureImage pulls ref unless a local image already matches it
func (r *DockerRuntime) ensureImage(ctx context.Context, ref string) error {
	images, err := r.cli.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return wrapError("list images", ref, err)
	}
	if len(images) > 0 {
		return nil
	}

	logger.WithFields(logger.Fields{"image": ref}).Info("Pulling image")

	reader, err := r.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewContainerError(ErrorTypeImageNotFound, "pull", fmt.Sprintf("image %s not found", ref), err)
		}
		return wrapError("pull", ref, err)
	}
	defer reader.Close()

	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return wrapError("pull", ref, err)
	}
	return nil
}

// Start starts a container
func (r *DockerRuntime) Start(ctx context.Context, ref string) error {
	if err := r.cli.ContainerStart(ctx, ref, container.StartOptions{}); err != nil {
		return wrapError("start", ref, err)
	}
	return nil
}

// Stop stops a container, waiting up to the configured grace period
func (r *DockerRuntime) Stop(ctx context.Context, ref string) error {
	timeout := int(r.stopTimeout.Seconds())
	if err := r.cli.ContainerStop(ctx, ref, container.StopOptions{Timeout: &timeout}); err != nil {
		return wrapError("stop", ref, err)
	}
	return nil
}

// Remove force-removes a container; an absent container counts as removed
func (r *DockerRuntime) Remove(ctx context.Context, ref string) error {
	err := r.cli.ContainerRemove(ctx, ref, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil && !client.IsErrNotFound(err) {
		return wrapError("remove", ref, err)
	}
	return nil
}

// Inspect returns the container identity, network mode and environment
func (r *DockerRuntime) Inspect(ctx context.Context, ref string) (*Inspection, error) {
	resp, err := r.cli.ContainerInspect(ctx, ref)
	if err != nil {
		return nil, wrapError("inspect", ref, err)
	}
	if resp.ContainerJSONBase == nil {
		return nil, NewContainerError(ErrorTypeUnknown, "inspect", "daemon returned an empty inspection", nil)
	}

	inspection := &Inspection{
		ID:   resp.ID,
		Name: strings.TrimPrefix(resp.Name, "/"),
	}
	if resp.HostConfig != nil {
		inspection.NetworkMode = string(resp.HostConfig.NetworkMode)
	}
	if resp.Config != nil {
		inspection.Env = resp.Config.Env
	}
	if resp.State != nil {
		inspection.State = string(resp.State.Status)
	}
	return inspection, nil
}

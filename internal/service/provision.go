package service

import (
	"context"
	stderrors "errors"
	"strings"

	"traefiker/internal/container"
	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/logger"
	"traefiker/internal/metrics"
)

// Provisioning outcomes
const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
	outcomeAborted = "aborted"
)

// schedule hands container provisioning for svc to a background job.
// The caller holds the service lock; the job waits for it to be released.
func (m *Manager) schedule(svc *db.Service, start bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.markFailed(svc, errors.ShuttingDown())
		return
	}
	m.jobs.Add(1)
	m.mu.Unlock()

	go m.provision(svc.ID, svc.Name, start)
}

// provision replaces whatever container the service has with a new one built
// from its current record. Any failure moves the service to ERROR.
func (m *Manager) provision(id, name string, start bool) {
	defer m.jobs.Done()

	done := metrics.ProvisionStarted()
	outcome := outcomeSuccess
	defer func() { done(outcome) }()

	unlock := m.locks.Lock(name)
	defer unlock()

	ctx := m.ctx
	log := logger.ForService(name, "provision")

	svc, err := m.store.Services.GetByName(ctx, name)
	if err != nil && !stderrors.Is(err, db.ErrNotFound) {
		outcome = outcomeFailed
		m.markFailed(&db.Service{ID: id, Name: name}, err)
		return
	}
	if err != nil || svc.ID != id {
		outcome = outcomeAborted
		log.Debug("Service deleted before provisioning, skipping")
		return
	}

	if err := m.provisionContainer(ctx, svc, start); err != nil {
		outcome = outcomeFailed
		m.markFailed(svc, err)
		return
	}

	log.WithField("status", svc.Status).Info("Service provisioned")
}

func (m *Manager) provisionContainer(ctx context.Context, svc *db.Service, start bool) error {
	spec, err := m.containerSpec(ctx, svc)
	if err != nil {
		return err
	}

	if err := m.removeStale(ctx, spec.Name); err != nil {
		return err
	}

	createCtx, cancel := context.WithTimeout(ctx, m.opts.PullTimeout)
	handle, err := m.runtime.Create(createCtx, spec)
	cancel()
	if err != nil {
		return err
	}

	return m.attach(ctx, svc, handle, start)
}

// removeStale removes a container left behind under name, for instance by a
// failed attempt that never got attached
func (m *Manager) removeStale(ctx context.Context, name string) error {
	opCtx, cancel := m.operationContext(ctx)
	defer cancel()

	inspection, err := m.runtime.Inspect(opCtx, name)
	if container.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.ForService(strings.TrimPrefix(name, m.opts.ContainerPrefix), "provision").
		WithField("container_id", inspection.ID).
		Warn("Removing unattached container")
	return m.runtime.Remove(opCtx, inspection.ID)
}

// containerSpec builds the container for svc from its stored configuration
func (m *Manager) containerSpec(ctx context.Context, svc *db.Service) (*container.CreateSpec, error) {
	img, err := m.store.Images.GetByID(ctx, svc.ImageID)
	if err != nil {
		return nil, err
	}
	project, err := m.store.Projects.GetByID(ctx, svc.ProjectID)
	if err != nil {
		return nil, err
	}
	env, err := m.store.Environment.ListBySource(ctx, svc.ID, db.EnvSourceOverride)
	if err != nil {
		return nil, err
	}
	redirects, err := m.store.Redirects.ListByService(ctx, svc.ID)
	if err != nil {
		return nil, err
	}

	routes := make([]container.Redirect, 0, len(redirects))
	for _, r := range redirects {
		routes = append(routes, container.Redirect{
			Regex:       r.Regex,
			Replacement: r.Replacement,
			Permanent:   r.Permanent,
		})
	}

	return &container.CreateSpec{
		Name:  m.containerName(svc.Name),
		Image: img.Name,
		Env:   envList(env),
		Labels: container.Labels(container.RoutingOptions{
			Service:      svc.Name,
			Project:      project.Name,
			Hosts:        svc.Hosts,
			Redirects:    routes,
			Network:      m.opts.Network,
			Entrypoint:   m.opts.Entrypoint,
			CertResolver: m.opts.CertResolver,
		}),
		Network: m.opts.Network,
	}, nil
}

// markFailed is the single recovery action for provisioning failures: the
// service moves to ERROR and stays there until updated or recreated.
func (m *Manager) markFailed(svc *db.Service, cause error) {
	container.LogContainerError(cause, "provision")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.ctx), m.opts.OperationTimeout)
	defer cancel()

	next, _ := Transition(svc.Name, svc.Status, EventFail)
	if err := m.store.Services.UpdateStatus(ctx, svc.ID, next); err != nil {
		if !stderrors.Is(err, db.ErrNotFound) {
			logger.ForService(svc.Name, "provision").WithError(err).Error("Failed to record provisioning failure")
		}
		return
	}
	m.logTransition(svc.Name, EventFail, svc.Status, next, "")
}

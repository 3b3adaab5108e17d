// Package service drives services through their lifecycle, reconciling each
// stored service record with the one container that backs it.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"traefiker/internal/constants"
	"traefiker/internal/container"
	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/image"
	"traefiker/internal/logger"
	"traefiker/internal/metrics"
	"traefiker/internal/validation"
)

// Manager handles service lifecycle operations. Operations on one service
// are serialized; container provisioning runs in background jobs.
type Manager struct {
	store   *db.Store
	runtime container.Runtime
	opts    Options
	locks   *keyedMutex

	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewManager creates a new service manager
func NewManager(store *db.Store, runtime container.Runtime, opts Options) *Manager {
	if opts.ContainerPrefix == "" {
		opts.ContainerPrefix = constants.DefaultContainerPrefix
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = constants.DefaultOperationTimeout
	}
	if opts.PullTimeout <= 0 {
		opts.PullTimeout = constants.DefaultPullTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:   store,
		runtime: runtime,
		opts:    opts,
		locks:   newKeyedMutex(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Wait blocks until every scheduled provisioning job has finished
func (m *Manager) Wait() {
	m.jobs.Wait()
}

// Close stops accepting provisioning jobs and waits for running ones.
// When ctx expires first, in-flight runtime calls are cancelled.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		return nil
	case <-ctx.Done():
		m.cancel()
		<-done
		return ctx.Err()
	}
}

// CreateProject creates a project services can be grouped under
func (m *Manager) CreateProject(ctx context.Context, name string) (project *db.Project, err error) {
	defer func() { err = m.finish("create_project", err) }()

	name = strings.TrimSpace(name)
	if err := validation.ProjectName(name); err != nil {
		return nil, err
	}

	project = &db.Project{Name: name}
	if err := m.store.Projects.Create(ctx, project); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.ProjectExists(name)
		}
		return nil, err
	}

	logger.WithField("project", name).Info("Project created")
	return project, nil
}

// ListProjects returns all projects ordered by name
func (m *Manager) ListProjects(ctx context.Context) ([]*db.Project, error) {
	projects, err := m.store.Projects.List(ctx)
	return projects, m.normalize("list_projects", err)
}

// ListProjectServices returns every service of a project
func (m *Manager) ListProjectServices(ctx context.Context, projectName string) (records []*Record, err error) {
	defer func() { err = m.normalize("list_project_services", err) }()

	project, err := m.findProject(ctx, m.store, projectName)
	if err != nil {
		return nil, err
	}

	services, err := m.store.Services.List(ctx, db.ServiceFilter{ProjectID: project.ID})
	if err != nil {
		return nil, err
	}
	return m.loadAll(ctx, services)
}

// Get returns a service by name
func (m *Manager) Get(ctx context.Context, name string) (rec *Record, err error) {
	defer func() { err = m.normalize("get", err) }()

	svc, err := m.findService(ctx, m.store, name)
	if err != nil {
		return nil, err
	}
	return m.load(ctx, m.store, svc)
}

// List returns one page of services, optionally filtered by project and status
func (m *Manager) List(ctx context.Context, opts ListOptions) (page *db.PaginatedResponse[*Record], err error) {
	defer func() { err = m.normalize("list", err) }()

	pagination := db.DefaultPaginationOptions()
	if opts.Page > 0 {
		pagination.Page = opts.Page
	}
	if opts.PageSize > 0 {
		pagination.PageSize = opts.PageSize
	}
	if err := pagination.Validate(); err != nil {
		return nil, errors.InvalidRequest(err.Error())
	}

	filter := db.ServiceFilter{Status: opts.Status}
	if opts.Project != "" {
		project, err := m.findProject(ctx, m.store, opts.Project)
		if err != nil {
			return nil, err
		}
		filter.ProjectID = project.ID
	}

	services, total, err := m.store.Services.ListPage(ctx, filter, pagination)
	if err != nil {
		return nil, err
	}
	records, err := m.loadAll(ctx, services)
	if err != nil {
		return nil, err
	}
	return db.NewPaginatedResponse(records, pagination, total), nil
}

// Create stores a new service in PULLING and provisions its container in the
// background. The returned record does not wait for the container.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (rec *Record, err error) {
	defer func() { err = m.finish(string(EventCreate), err) }()

	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(req.Name)
	defer unlock()

	status, err := Transition(req.Name, "", EventCreate)
	if err != nil {
		return nil, err
	}

	svc := &db.Service{
		Name:  req.Name,
		Owner: req.Owner,
		Hosts: db.StringList(req.Hosts),
	}
	err = m.store.WithinTx(ctx, func(tx *db.Store) error {
		if _, err := tx.Services.GetByName(ctx, req.Name); err == nil {
			return errors.ServiceExists(req.Name)
		} else if !stderrors.Is(err, db.ErrNotFound) {
			return err
		}

		project, err := m.findProject(ctx, tx, req.Project)
		if err != nil {
			return err
		}
		img, err := image.Resolve(ctx, tx.Images, req.Image)
		if err != nil {
			return err
		}

		svc.Status = status
		svc.ProjectID = project.ID
		svc.ImageID = img.ID
		if err := tx.Services.Create(ctx, svc); err != nil {
			if db.IsUniqueViolation(err) {
				return errors.ServiceExists(req.Name)
			}
			return err
		}

		rec, err = m.load(ctx, tx, svc)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logTransition(svc.Name, EventCreate, "", status, "")
	m.schedule(svc, true)
	return rec, nil
}

// Update applies host changes, appends environment variables and redirects,
// then replaces the container. The old container is removed before the
// replacement is scheduled, which starts once it is attached.
func (m *Manager) Update(ctx context.Context, name string, req UpdateRequest) (rec *Record, err error) {
	defer func() { err = m.finish(string(EventUpdate), err) }()

	if req.IsEmpty() {
		return nil, errors.InvalidRequest("at least one of hosts, environment_variables or redirects is required")
	}
	if err := validateUpdate(&req); err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(name)
	defer unlock()

	svc, err := m.findService(ctx, m.store, name)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(name, svc.Status, EventUpdate); err != nil {
		return nil, err
	}

	if err := m.removeContainer(ctx, svc, string(EventUpdate)); err != nil {
		return nil, err
	}

	updated := *svc
	err = m.store.WithinTx(ctx, func(tx *db.Store) error {
		if req.Hosts != nil {
			updated.Hosts = db.StringList(req.Hosts)
		}

		registrar := NewRegistrar(tx)
		if err := registrar.AddEnvironment(ctx, svc.ID, req.Environment); err != nil {
			return err
		}
		if err := registrar.AddRedirects(ctx, svc.ID, req.Redirects); err != nil {
			return err
		}

		if err := m.detach(ctx, tx, &updated); err != nil {
			return err
		}
		rec, err = m.load(ctx, tx, &updated)
		return err
	})
	if err != nil {
		// The container is already gone; the record must not claim otherwise.
		m.markFailed(svc, err)
		return nil, err
	}

	m.schedule(&updated, true)
	return rec, nil
}

// Recreate replaces the service's container, switching to imageIdentifier
// when one is given. The new container is not started.
func (m *Manager) Recreate(ctx context.Context, name, imageIdentifier string) (rec *Record, err error) {
	defer func() { err = m.finish(string(EventRecreate), err) }()

	unlock := m.locks.Lock(name)
	defer unlock()

	svc, err := m.findService(ctx, m.store, name)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(name, svc.Status, EventRecreate); err != nil {
		return nil, err
	}

	imageIdentifier = strings.TrimSpace(imageIdentifier)
	if imageIdentifier == "" {
		if _, err := m.store.Images.GetByID(ctx, svc.ImageID); err != nil {
			return nil, errors.InternalError(fmt.Sprintf("current image of service %s cannot be located", name), err)
		}
	}

	if err := m.removeContainer(ctx, svc, string(EventRecreate)); err != nil {
		return nil, err
	}

	updated := *svc
	err = m.store.WithinTx(ctx, func(tx *db.Store) error {
		if imageIdentifier != "" {
			img, err := image.Resolve(ctx, tx.Images, imageIdentifier)
			if err != nil {
				return err
			}
			updated.ImageID = img.ID
		}

		if err := m.detach(ctx, tx, &updated); err != nil {
			return err
		}
		rec, err = m.load(ctx, tx, &updated)
		return err
	})
	if err != nil {
		m.markFailed(svc, err)
		return nil, err
	}

	m.schedule(&updated, false)
	return rec, nil
}

// Start starts the service's container
func (m *Manager) Start(ctx context.Context, name string) (rec *Record, err error) {
	defer func() { err = m.finish(string(EventStart), err) }()
	return m.toggle(ctx, name, EventStart, m.runtime.Start)
}

// Stop stops the service's container
func (m *Manager) Stop(ctx context.Context, name string) (rec *Record, err error) {
	defer func() { err = m.finish(string(EventStop), err) }()
	return m.toggle(ctx, name, EventStop, m.runtime.Stop)
}

// toggle runs a start or stop. The new status is persisted only after the
// runtime call succeeds; on failure the record is left as it was.
func (m *Manager) toggle(ctx context.Context, name string, event Event, call func(context.Context, string) error) (*Record, error) {
	unlock := m.locks.Lock(name)
	defer unlock()

	svc, err := m.findService(ctx, m.store, name)
	if err != nil {
		return nil, err
	}
	next, err := Transition(name, svc.Status, event)
	if err != nil {
		return nil, err
	}

	info, err := m.attachedContainer(ctx, svc, string(event))
	if err != nil {
		return nil, err
	}

	opCtx, cancel := m.operationContext(ctx)
	err = call(opCtx, info.ContainerID)
	cancel()
	if err != nil {
		container.LogContainerError(err, string(event))
		return nil, errors.RuntimeFailure(string(event), info.Name, err)
	}

	if err := m.store.Services.UpdateStatus(ctx, svc.ID, next); err != nil {
		return nil, err
	}
	m.logTransition(name, event, svc.Status, next, info.ContainerID)

	svc.Status = next
	return m.load(ctx, m.store, svc)
}

// Delete removes the service's container and then the service. A service in
// ERROR may still have an unregistered container; removing it is best effort.
func (m *Manager) Delete(ctx context.Context, name string) (err error) {
	defer func() { err = m.finish(string(EventDelete), err) }()

	unlock := m.locks.Lock(name)
	defer unlock()

	svc, err := m.findService(ctx, m.store, name)
	if err != nil {
		return err
	}
	if _, err := Transition(name, svc.Status, EventDelete); err != nil {
		return err
	}

	if svc.Status.HasContainer() && svc.ContainerInfoID != nil {
		if err := m.removeContainer(ctx, svc, string(EventDelete)); err != nil {
			return err
		}
	} else {
		opCtx, cancel := m.operationContext(ctx)
		if err := m.runtime.Remove(opCtx, m.containerName(name)); err != nil {
			container.LogContainerWarning(err, string(EventDelete))
		}
		cancel()
	}

	err = m.store.WithinTx(ctx, func(tx *db.Store) error {
		if err := tx.Services.Delete(ctx, svc.ID); err != nil {
			return err
		}
		if svc.ContainerInfoID != nil {
			return tx.ContainerInfos.Delete(ctx, *svc.ContainerInfoID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.ForService(name, string(EventDelete)).WithField("status", svc.Status).Info("Service deleted")
	return nil
}

// removeContainer removes the container backing svc. Without a usable
// container reference the deterministic container name is used instead.
func (m *Manager) removeContainer(ctx context.Context, svc *db.Service, operation string) error {
	ref := m.containerName(svc.Name)
	if svc.ContainerInfoID != nil {
		info, err := m.store.ContainerInfos.GetByID(ctx, *svc.ContainerInfoID)
		switch {
		case err == nil:
			ref = info.ContainerID
		case !stderrors.Is(err, db.ErrNotFound):
			return err
		}
	}

	opCtx, cancel := m.operationContext(ctx)
	defer cancel()
	if err := m.runtime.Remove(opCtx, ref); err != nil {
		container.LogContainerError(err, operation)
		return errors.RuntimeFailure("remove", ref, err)
	}
	return nil
}

// detach drops the service's container reference and its ContainerInfo row
func (m *Manager) detach(ctx context.Context, tx *db.Store, svc *db.Service) error {
	previous := svc.ContainerInfoID
	svc.ContainerInfoID = nil
	if err := tx.Services.Update(ctx, svc); err != nil {
		return err
	}
	if previous != nil {
		return tx.ContainerInfos.Delete(ctx, *previous)
	}
	return nil
}

func (m *Manager) attachedContainer(ctx context.Context, svc *db.Service, operation string) (*db.ContainerInfo, error) {
	if svc.ContainerInfoID == nil {
		return nil, errors.ContainerNotAttached(svc.Name, operation)
	}
	info, err := m.store.ContainerInfos.GetByID(ctx, *svc.ContainerInfoID)
	if stderrors.Is(err, db.ErrNotFound) {
		return nil, errors.ContainerNotAttached(svc.Name, operation)
	}
	return info, err
}

func (m *Manager) findService(ctx context.Context, store *db.Store, name string) (*db.Service, error) {
	svc, err := store.Services.GetByName(ctx, name)
	if stderrors.Is(err, db.ErrNotFound) {
		return nil, errors.ServiceNotFound(name)
	}
	return svc, err
}

func (m *Manager) findProject(ctx context.Context, store *db.Store, name string) (*db.Project, error) {
	project, err := store.Projects.GetByName(ctx, name)
	if stderrors.Is(err, db.ErrNotFound) {
		return nil, errors.ProjectNotFound(name)
	}
	return project, err
}

// load assembles the full record of svc
func (m *Manager) load(ctx context.Context, store *db.Store, svc *db.Service) (*Record, error) {
	rec := &Record{Service: svc}

	project, err := store.Projects.GetByID(ctx, svc.ProjectID)
	if err != nil {
		return nil, err
	}
	rec.Project = project.Name

	if rec.Image, err = store.Images.GetByID(ctx, svc.ImageID); err != nil {
		return nil, err
	}

	if svc.ContainerInfoID != nil {
		info, err := store.ContainerInfos.GetByID(ctx, *svc.ContainerInfoID)
		if err != nil && !stderrors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		rec.Container = info
	}

	if rec.Environment, err = store.Environment.ListByService(ctx, svc.ID); err != nil {
		return nil, err
	}
	if rec.Redirects, err = store.Redirects.ListByService(ctx, svc.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *Manager) loadAll(ctx context.Context, services []*db.Service) ([]*Record, error) {
	records := make([]*Record, 0, len(services))
	for _, svc := range services {
		rec, err := m.load(ctx, m.store, svc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (m *Manager) containerName(service string) string {
	return m.opts.ContainerPrefix + service
}

func (m *Manager) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.opts.OperationTimeout)
}

func (m *Manager) logTransition(name string, event Event, from, to db.ServiceStatus, containerID string) {
	fields := logger.Fields{"status": to}
	if from != "" {
		fields["previous_status"] = from
	}
	if containerID != "" {
		fields["container_id"] = containerID
	}
	logger.ForService(name, string(event)).WithFields(fields).Info("Service status changed")
	metrics.RecordTransition(string(from), string(to))
}

// normalize makes sure callers only ever see typed errors
func (m *Manager) normalize(operation string, err error) error {
	if err == nil || errors.IsTraefikerError(err) {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.TimeoutError(operation, m.opts.OperationTimeout.String()).WithCause(err)
	}
	return errors.InternalError(operation+" failed", err)
}

// finish normalizes the error of a lifecycle operation and records it
func (m *Manager) finish(operation string, err error) error {
	err = m.normalize(operation, err)
	metrics.RecordOperation(operation, err)
	return err
}

func validateCreate(req *CreateRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Image = strings.TrimSpace(req.Image)
	req.Project = strings.TrimSpace(req.Project)

	if err := validation.ServiceName(req.Name); err != nil {
		return err
	}
	if err := validation.NonEmptyString("image", req.Image); err != nil {
		return err
	}
	if err := validation.ProjectName(req.Project); err != nil {
		return err
	}

	hosts, err := validation.Hosts(req.Hosts)
	if err != nil {
		return err
	}
	req.Hosts = hosts
	return nil
}

func validateUpdate(req *UpdateRequest) error {
	if req.Hosts != nil {
		hosts, err := validation.Hosts(req.Hosts)
		if err != nil {
			return err
		}
		req.Hosts = hosts
	}
	for _, v := range req.Environment {
		if err := validation.EnvironmentKey(v.Key); err != nil {
			return err
		}
	}
	for _, r := range req.Redirects {
		if err := validation.Redirect(r.Regex, r.Replacement); err != nil {
			return err
		}
	}
	return nil
}

package service

import (
	"context"

	"traefiker/internal/container"
	"traefiker/internal/db"
	"traefiker/internal/errors"
)

// attach records a freshly created container against svc, records the
// variables its image contributes, and starts the container when start is
// set. svc is updated in place.
func (m *Manager) attach(ctx context.Context, svc *db.Service, handle *container.Handle, start bool) error {
	inspectCtx, cancel := m.operationContext(ctx)
	inspection, err := m.runtime.Inspect(inspectCtx, handle.ID)
	cancel()
	if err != nil {
		return err
	}

	next, err := Transition(svc.Name, svc.Status, EventAttach)
	if err != nil {
		return err
	}

	info := &db.ContainerInfo{
		ContainerID: inspection.ID,
		Name:        handle.Name,
		Network:     inspection.NetworkMode,
	}
	if info.ContainerID == "" {
		info.ContainerID = handle.ID
	}
	if info.Name == "" {
		info.Name = m.containerName(svc.Name)
	}

	updated := *svc
	updated.Status = next
	updated.ContainerInfoID = &info.ID

	err = m.store.WithinTx(ctx, func(tx *db.Store) error {
		if err := tx.ContainerInfos.Create(ctx, info); err != nil {
			return err
		}
		if err := tx.Services.Update(ctx, &updated); err != nil {
			return err
		}
		if svc.ContainerInfoID != nil {
			if err := tx.ContainerInfos.Delete(ctx, *svc.ContainerInfoID); err != nil {
				return err
			}
		}
		overrides, err := tx.Environment.ListBySource(ctx, svc.ID, db.EnvSourceOverride)
		if err != nil {
			return err
		}
		return tx.Environment.ReplaceImageEnv(ctx, svc.ID, imageEnv(inspection.Env, overrides))
	})
	if err != nil {
		return err
	}

	m.logTransition(svc.Name, EventAttach, svc.Status, next, info.ContainerID)
	*svc = updated

	if !start {
		return nil
	}

	next, err = Transition(svc.Name, svc.Status, EventStart)
	if err != nil {
		return err
	}

	startCtx, cancel := m.operationContext(ctx)
	err = m.runtime.Start(startCtx, info.ContainerID)
	cancel()
	if err != nil {
		return errors.RuntimeFailure("start", info.Name, err)
	}

	if err := m.store.Services.UpdateStatus(ctx, svc.ID, next); err != nil {
		return err
	}
	m.logTransition(svc.Name, EventStart, svc.Status, next, info.ContainerID)
	svc.Status = next
	return nil
}

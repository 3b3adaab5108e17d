package commands

import (
	"context"
	"fmt"
	"time"

	"traefiker/internal/db"
	"traefiker/internal/service"

	"github.com/spf13/cobra"
)

const settlePollInterval = time.Second

// withBackend opens the backend, runs fn and closes the backend again
func withBackend(cmd *cobra.Command, connect Connector, fn func(ctx context.Context, b *Backend) error) error {
	b, err := connect(cmd)
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer b.Close()
	}
	return fn(cmd.Context(), b)
}

// settle waits for background provisioning of name when the command must
// report its outcome, and returns the record to display.
//
// Local backends always wait because exiting the process would abandon the
// job. Remote backends wait only when --wait is set.
func settle(cmd *cobra.Command, b *Backend, rec *service.Record, want db.ServiceStatus) (*service.Record, error) {
	ctx := cmd.Context()

	if b.Wait != nil {
		b.Wait()
		return finalRecord(b.Services.Get(ctx, rec.Name))
	}

	wait, _ := cmd.Flags().GetBool("wait")
	if !wait {
		return rec, nil
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	settled, err := service.AwaitSettled(ctx, b.Services.Get, rec.Name, want, settlePollInterval)
	if err != nil {
		return nil, fmt.Errorf("waiting for service %s: %w", rec.Name, err)
	}
	return finalRecord(settled, nil)
}

func finalRecord(rec *service.Record, err error) (*service.Record, error) {
	if err != nil {
		return nil, err
	}
	if rec.Status == db.StatusError {
		return rec, fmt.Errorf("service %s failed to provision its container", rec.Name)
	}
	return rec, nil
}

func addWaitFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("wait", false, "Wait for the container to be provisioned (always on without --server)")
	cmd.Flags().Duration("timeout", 5*time.Minute, "Maximum time to wait with --wait")
}

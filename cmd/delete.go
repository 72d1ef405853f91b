package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/notify"
	"github.com/UnknownOlympus/hestia/internal/undo"
	"github.com/spf13/cobra"
)

var errDeleteFailed = errors.New("employee was not deleted")

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an employee after the undo window",
		Long: `Delete an employee. The deletion is sent to the server once the undo window
has passed; press Ctrl+C before that to undo it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid employee id %q", args[0])
			}
			return a.runDelete(cmd, id)
		},
	}
}

func (a *app) runDelete(cmd *cobra.Command, id int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	employee, err := a.client.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load employee %d: %w", id, err)
	}

	// The controller works on a collection; here it holds just the target row.
	collection := directory.NewCollection([]models.Employee{employee})

	outcome := make(chan notify.Notice, 1)
	notifier := notify.Multi{
		a.consoleNotifier(out),
		notify.Func(func(_ context.Context, notice notify.Notice) {
			if notice.Text != notify.MsgDeleteDone && notice.Level != notify.LevelError {
				return
			}
			select {
			case outcome <- notice:
			default:
			}
		}),
	}

	cfg := a.undoConfig()
	deletes := undo.NewController(collection, a.client, notifier, nil, a.log, a.metrics, cfg)
	defer deletes.Close()

	interrupted, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = deletes.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s will be deleted in %s. Press Ctrl+C to undo.\n", employee.FullName(), cfg.DeleteDelay)

	return awaitDelete(ctx, interrupted.Done(), deletes, outcome, out)
}

// undoer is the part of the delete controller used while waiting.
type undoer interface {
	Undo() bool
}

// awaitDelete waits for the outcome of a pending deletion. An interrupt undoes
// it unless the deletion was already sent, in which case the outcome is awaited.
func awaitDelete(
	ctx context.Context,
	interrupted <-chan struct{},
	deletes undoer,
	outcome <-chan notify.Notice,
	out io.Writer,
) error {
	select {
	case <-interrupted:
		if deletes.Undo() {
			return nil
		}
		fmt.Fprintln(out, "Too late to undo, the deletion is already on its way.")
		select {
		case notice := <-outcome:
			return outcomeErr(notice)
		case <-ctx.Done():
			return ctx.Err()
		}
	case notice := <-outcome:
		return outcomeErr(notice)
	}
}

func outcomeErr(notice notify.Notice) error {
	if notice.Level == notify.LevelError {
		return fmt.Errorf("%w: %s", errDeleteFailed, notice.Text)
	}
	return nil
}

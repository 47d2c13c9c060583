package commands

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/glabrego/pkbrowse/internal/perkeep"
)

type Op int

const (
	OpNewCollection Op = iota + 1
	OpAddToCurrentSet
	OpCreateSetWithSelection
)

func (o Op) String() string {
	switch o {
	case OpNewCollection:
		return "new collection"
	case OpAddToCurrentSet:
		return "add to current set"
	case OpCreateSetWithSelection:
		return "create set with selection"
	default:
		return "unknown"
	}
}

// Stage is how far the create-set pipeline got.
type Stage int

const (
	StageNone Stage = iota
	StageCreated
	StageTitled
	StageMembersAdded
)

// Result is the outcome of a Pending server command.
type Result struct {
	Op     Op
	Ref    string
	Stage  Stage
	Issued int
	Failed int
	Err    error
}

// Pending is the off-loop half of a server command. Its Result must be
// passed to Handler.Complete on the event loop.
type Pending func(ctx context.Context) Result

// NewCollection creates an empty permanode.
func (h *Handler) NewCollection() Pending {
	client := h.client
	return func(ctx context.Context) Result {
		ref, err := client.CreateItem(ctx)
		if err != nil {
			return Result{Op: OpNewCollection, Err: mutationError("create item", err)}
		}
		return Result{Op: OpNewCollection, Ref: ref, Stage: StageCreated}
	}
}

// AddToCurrentSet adds every selected item to the current set. The
// second result is false when the command is not offered.
func (h *Handler) AddToCurrentSet() (Pending, bool) {
	if !h.CanAddToCurrentSet() {
		return nil, false
	}
	client, limit := h.client, h.fanoutLimit
	set, ids := h.currentSet, h.selection.IDs()
	return func(ctx context.Context) Result {
		failed, err := addMembers(ctx, client, limit, set, ids)
		return Result{Op: OpAddToCurrentSet, Ref: set, Stage: StageMembersAdded, Issued: len(ids), Failed: failed, Err: err}
	}, true
}

// CreateSetWithSelection creates a set, titles it and adds the selected
// items as members. A failing stage stops the pipeline.
func (h *Handler) CreateSetWithSelection() (Pending, bool) {
	if h.selection.Empty() {
		return nil, false
	}
	client, limit := h.client, h.fanoutLimit
	ids := h.selection.IDs()
	return func(ctx context.Context) Result {
		r := Result{Op: OpCreateSetWithSelection}
		ref, err := client.CreateItem(ctx)
		if err != nil {
			r.Err = mutationError("create set", err)
			return r
		}
		r.Ref, r.Stage = ref, StageCreated

		if err := client.SetAttribute(ctx, ref, perkeep.AttrTitle, NewSetTitle); err != nil {
			r.Err = mutationError("title set", err)
			return r
		}
		r.Stage = StageTitled

		r.Issued = len(ids)
		r.Failed, r.Err = addMembers(ctx, client, limit, ref, ids)
		r.Stage = StageMembersAdded
		return r
	}, true
}

// Complete applies r on the event loop. Fan-out results clear the
// selection once every member add has finished, failed or not. A new
// collection is opened in the classic detail view.
func (h *Handler) Complete(r Result) error {
	if h.closed {
		return nil
	}
	switch r.Op {
	case OpNewCollection:
		if r.Err != nil {
			h.log.Warn("new collection failed", "error", r.Err)
			return r.Err
		}
		_, err := h.nav.Navigate(h.nav.DetailAddress(false, r.Ref))
		return err
	case OpAddToCurrentSet, OpCreateSetWithSelection:
		if r.Stage == StageMembersAdded {
			h.selection.Clear()
		}
		if r.Err != nil {
			h.log.Warn("command failed", "op", r.Op.String(), "set", r.Ref, "failed", r.Failed, "issued", r.Issued, "error", r.Err)
		} else {
			h.log.Info("command done", "op", r.Op.String(), "set", r.Ref, "issued", r.Issued)
		}
		return r.Err
	default:
		return nil
	}
}

// addMembers issues one add per id, at most limit at a time, and waits
// for all of them. It returns the number of failures and their join.
func addMembers(ctx context.Context, client MutationClient, limit int, set string, ids []string) (int, error) {
	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			if err := client.AddMember(ctx, set, id); err != nil {
				errs[i] = mutationError("add "+id, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	return failed, errors.Join(errs...)
}

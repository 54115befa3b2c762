package playlists

import (
	"context"
	"fmt"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/tasks"
	"golang.org/x/time/rate"
)

// OpKind tags a [BatchOp].
type OpKind int

const (
	OpAdd OpKind = iota
	OpRemove
	OpUpdate
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpUpdate:
		return "update"
	default:
		return "unknown"
	}
}

func (k OpKind) phase() tasks.Phase {
	switch k {
	case OpRemove:
		return tasks.RemoveItems
	case OpUpdate:
		return tasks.UpdateItems
	default:
		return tasks.AddItems
	}
}

// BatchOp is one item of a batch. Which fields are read depends on Kind:
// OpAdd reads Content, OpRemove reads Member, OpUpdate reads Update.
type BatchOp struct {
	Kind    OpKind
	Content models.ContentID
	Member  models.MemberID
	Update  models.ContentUpdate
}

func (op BatchOp) String() string {
	switch op.Kind {
	case OpAdd:
		return fmt.Sprintf("add content %d", op.Content)
	case OpRemove:
		return fmt.Sprintf("remove member %d", op.Member)
	case OpUpdate:
		return fmt.Sprintf("update content %d", op.Update.ID)
	default:
		return op.Kind.String()
	}
}

// BatchResult describes what a batch applied before it finished or stopped.
type BatchResult struct {
	Applied int               // number of leading ops that were applied
	Added   []models.MemberID // member ids created by OpAdd items, in order
}

// RunBatch applies ops to playlist one at a time. The first failing op stops the batch and its
// error is returned; ops before it stay applied and ops after it are never attempted.
//
// A nil limiter applies items back to back. Progress is reported without blocking.
func RunBatch(ctx context.Context, store models.Store, playlist models.PlaylistID, ops []BatchOp, limiter *rate.Limiter, progress chan<- tasks.ProgressUpdate) (BatchResult, error) {
	var result BatchResult
	total := len(ops)

	for i, op := range ops {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return result, fmt.Errorf("item %d of %d: %w", i+1, total, err)
			}
		}

		tasks.SendProgress(progress, tasks.ItemUpdate(op.Kind.phase(), i+1, total, op.String()))

		if err := applyOp(ctx, store, playlist, op, &result); err != nil {
			err = fmt.Errorf("item %d of %d (%s): %w", i+1, total, op, err)
			tasks.SendProgress(progress, tasks.AbortedUpdate(i+1, total, err))
			return result, err
		}
		result.Applied++
	}

	tasks.SendProgress(progress, tasks.DoneUpdate(total))
	return result, nil
}

func applyOp(ctx context.Context, store models.Store, playlist models.PlaylistID, op BatchOp, result *BatchResult) error {
	switch op.Kind {
	case OpAdd:
		id, err := store.AddMember(ctx, playlist, op.Content)
		if err != nil {
			return err
		}
		result.Added = append(result.Added, id)
		return nil
	case OpRemove:
		return store.RemoveMember(ctx, playlist, op.Member)
	case OpUpdate:
		item, err := store.GetContent(ctx, op.Update.ID)
		if err != nil {
			return err
		}
		op.Update.Apply(item)
		return store.UpdateContent(ctx, item)
	default:
		return tasks.Invalid("unknown batch operation %d", op.Kind)
	}
}

// batch is one batch submission. change builds the event for whatever the batch applied; it is
// published after the callback on success and after the error callback when a failure left
// earlier ops applied.
type batch[T any] struct {
	op       string
	playlist models.PlaylistID
	ops      []BatchOp
	check    func(ctx context.Context) error // runs in the worker before the first op; may be nil
	payload  func(BatchResult) T
	change   func(BatchResult) *ChangeEvent
}

func submitBatch[T any](m *Manager, scope *tasks.Scope, b batch[T], cb Callbacks[T]) error {
	// Written by the worker before the task is queued, read on the loop after it is popped.
	var result BatchResult

	publish := func() {
		if ev := b.change(result); ev != nil {
			m.listeners.publish(*ev)
		}
	}
	onError := func(e *tasks.Error) {
		if cb.OnError != nil {
			cb.OnError(e)
		}
		if result.Applied > 0 {
			publish()
		}
	}

	return submit(m, b.op, scope, Callbacks[T]{OnSuccess: cb.OnSuccess, OnError: onError},
		func(T) *ChangeEvent { return b.change(result) },
		func(ctx context.Context) (T, error) {
			if b.check != nil {
				if err := b.check(ctx); err != nil {
					var zero T
					return zero, err
				}
			}
			var err error
			result, err = RunBatch(ctx, m.store, b.playlist, b.ops, m.limiter, m.progress)
			return b.payload(result), err
		},
	)
}

// AddBatch appends every content item in order. The payload lists the new member ids.
func (m *Manager) AddBatch(scope *tasks.Scope, playlist models.PlaylistID, contents []models.ContentID, cb Callbacks[[]models.MemberID]) error {
	if len(contents) == 0 {
		return tasks.Invalid("no content to add")
	}

	ops := make([]BatchOp, 0, len(contents))
	for _, c := range contents {
		ops = append(ops, BatchOp{Kind: OpAdd, Content: c})
	}

	return submitBatch(m, scope, batch[[]models.MemberID]{
		op:       "add_batch",
		playlist: playlist,
		ops:      ops,
		payload:  func(r BatchResult) []models.MemberID { return r.Added },
		change: func(r BatchResult) *ChangeEvent {
			return &ChangeEvent{Kind: MembersAdded, Playlist: playlist, Members: r.Added}
		},
	}, cb)
}

// RemoveBatch removes members in order. Every ref must belong to playlist; a foreign ref is
// rejected before any work starts. The payload is the number of members processed.
func (m *Manager) RemoveBatch(scope *tasks.Scope, playlist models.PlaylistID, members []models.MemberRef, cb Callbacks[int]) error {
	if len(members) == 0 {
		return tasks.Invalid("no members to remove")
	}

	ops := make([]BatchOp, 0, len(members))
	removed := make([]models.MemberID, 0, len(members))
	for _, ref := range members {
		if ref.PlaylistID != playlist {
			return tasks.Invalid("%s belongs to another playlist", ref)
		}
		ops = append(ops, BatchOp{Kind: OpRemove, Member: ref.MemberID})
		removed = append(removed, ref.MemberID)
	}

	return submitBatch(m, scope, batch[int]{
		op:       "remove_batch",
		playlist: playlist,
		ops:      ops,
		payload:  func(r BatchResult) int { return r.Applied },
		change: func(r BatchResult) *ChangeEvent {
			return &ChangeEvent{Kind: MembersRemoved, Playlist: playlist, Members: removed[:r.Applied]}
		},
	}, cb)
}

// UpdateBatch applies scalar content updates in order. Every update must target content that is
// a member of playlist; the worker checks this before the first update is applied. The payload
// is the number of updates applied.
func (m *Manager) UpdateBatch(scope *tasks.Scope, playlist models.PlaylistID, updates []models.ContentUpdate, cb Callbacks[int]) error {
	if len(updates) == 0 {
		return tasks.Invalid("no updates to apply")
	}

	ops := make([]BatchOp, 0, len(updates))
	for _, u := range updates {
		if u.Title == nil && u.Rating == nil {
			return tasks.Invalid("update for content %d changes nothing", u.ID)
		}
		ops = append(ops, BatchOp{Kind: OpUpdate, Update: u})
	}

	return submitBatch(m, scope, batch[int]{
		op:       "update_batch",
		playlist: playlist,
		ops:      ops,
		check: func(ctx context.Context) error {
			owned, err := m.memberContent(ctx, playlist)
			if err != nil {
				return err
			}
			for i, op := range ops {
				if _, ok := owned[op.Update.ID]; !ok {
					return tasks.Invalid("item %d of %d: content %d is not in playlist %d", i+1, len(ops), op.Update.ID, playlist)
				}
			}
			return nil
		},
		payload: func(r BatchResult) int { return r.Applied },
		change:  func(BatchResult) *ChangeEvent { return &ChangeEvent{Kind: ContentUpdated, Playlist: playlist} },
	}, cb)
}

// memberContent returns the set of content ids that are members of playlist.
func (m *Manager) memberContent(ctx context.Context, playlist models.PlaylistID) (map[models.ContentID]struct{}, error) {
	ids, err := m.store.ListMembers(ctx, playlist)
	if err != nil {
		return nil, err
	}

	owned := make(map[models.ContentID]struct{}, len(ids))
	for _, id := range ids {
		item, err := m.store.GetMember(ctx, playlist, id)
		if err != nil {
			return nil, err
		}
		owned[item.ContentID] = struct{}{}
	}
	return owned, nil
}

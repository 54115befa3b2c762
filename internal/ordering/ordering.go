// Package ordering computes new member orders for playlists.
//
// [Move] and [SetOrder] are pure: they work on a snapshot of member ids and never touch a store.
// [Persist] writes a computed order back as a full rewrite.
package ordering

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// OrderWriter is the part of [models.ContentStore] that Persist needs.
type OrderWriter interface {
	SetMemberOrder(ctx context.Context, playlist models.PlaylistID, member models.MemberID, index int) error
}

// Move shifts target by delta positions within current and returns the new order.
//
// The destination is clamped to the ends of the list; every other member keeps its relative order.
func Move(current []models.MemberID, target models.MemberID, delta int) ([]models.MemberID, error) {
	i := slices.Index(current, target)
	if i < 0 {
		return nil, fmt.Errorf("%w: member %d is not in the playlist", shared.ErrInvalidValues, target)
	}

	next := slices.Clone(current)
	if delta == 0 {
		return next, nil
	}

	j := min(max(i+delta, 0), len(current)-1)
	next = slices.Delete(next, i, i+1)
	return slices.Insert(next, j, target), nil
}

// SetOrder validates a complete proposed order for playlist against its current members.
//
// The proposal must be non-empty, reference only members of playlist, and be a permutation
// of current. On success the proposal, as member ids, is the new order.
func SetOrder(playlist models.PlaylistID, current []models.MemberID, proposed []models.MemberRef) ([]models.MemberID, error) {
	if len(proposed) == 0 {
		return nil, fmt.Errorf("%w: proposed order is empty", shared.ErrInvalidValues)
	}

	next := make([]models.MemberID, 0, len(proposed))
	for _, ref := range proposed {
		if ref.PlaylistID != playlist {
			return nil, fmt.Errorf("%w: %s belongs to another playlist", shared.ErrInvalidValues, ref)
		}
		next = append(next, ref.MemberID)
	}

	if len(next) != len(current) {
		return nil, fmt.Errorf("%w: proposed order has %d members, playlist has %d", shared.ErrInvalidValues, len(next), len(current))
	}

	if !samePermutation(current, next) {
		return nil, fmt.Errorf("%w: proposed order does not match the playlist members", shared.ErrInvalidValues)
	}
	return next, nil
}

// Persist writes index i for the i-th member of order. Every member is rewritten.
func Persist(ctx context.Context, w OrderWriter, playlist models.PlaylistID, order []models.MemberID) error {
	for i, member := range order {
		if err := w.SetMemberOrder(ctx, playlist, member, i); err != nil {
			return fmt.Errorf("failed to write order of member %d: %w", member, err)
		}
	}
	return nil
}

// Validate reports whether items hold a dense permutation of [0, len(items)) as order indices
// with no repeated member ids.
func Validate(items []models.PlaylistItem) error {
	seenOrder := make(map[int]models.MemberID, len(items))
	seenMember := make(map[models.MemberID]struct{}, len(items))

	for _, item := range items {
		if _, dup := seenMember[item.MemberID]; dup {
			return fmt.Errorf("member %d appears more than once", item.MemberID)
		}
		seenMember[item.MemberID] = struct{}{}

		if item.Order < 0 || item.Order >= len(items) {
			return fmt.Errorf("member %d has order %d outside [0, %d)", item.MemberID, item.Order, len(items))
		}
		if other, dup := seenOrder[item.Order]; dup {
			return fmt.Errorf("members %d and %d share order %d", other, item.MemberID, item.Order)
		}
		seenOrder[item.Order] = item.MemberID
	}
	return nil
}

func samePermutation(a, b []models.MemberID) bool {
	counts := make(map[models.MemberID]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

//go:build integration
// +build integration

// Package integration drives full sessions through the session manager
// against a real Redis protocol (miniredis) and the shipped game
// content, end to end: create, act, persist, resume.
package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letser/plotplay/internal/session"
	"github.com/letser/plotplay/internal/storage"
	"github.com/letser/plotplay/pkg/pacing"
	"github.com/letser/plotplay/pkg/state"
	"github.com/letser/plotplay/pkg/wardrobe"
)

func setupManager(t *testing.T) (*session.Manager, *storage.RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewRedisStore("redis://"+mr.Addr(), "../data", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return session.NewManager(store, logger), store
}

func conversation() (state.Action, []state.Effect) {
	return state.Action{Kind: pacing.KindConversation}, nil
}

func explicit(minutes int) (state.Action, []state.Effect) {
	return state.Action{Kind: pacing.KindChoice, Minutes: &minutes}, nil
}

func move(location string) (state.Action, []state.Effect) {
	return state.Action{Kind: pacing.KindMovement},
		[]state.Effect{{Kind: state.EffectMove, Location: location}}
}

func travel(zone, method, entry string) (state.Action, []state.Effect) {
	return state.Action{Kind: pacing.KindTravel},
		[]state.Effect{{Kind: state.EffectMove, Zone: zone, Method: method, Location: entry}}
}

// apply runs one action and fails the test on a manager error.
func apply(t *testing.T, m *session.Manager, ws *state.WorldState, action state.Action, effects []state.Effect) *state.Outcome {
	t.Helper()
	out, err := m.ApplyAction(context.Background(), ws.ID, action, effects)
	require.NoError(t, err)
	return out
}

func TestSeasideHolidayPlaythrough(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	games, err := manager.Games(ctx)
	require.NoError(t, err)
	require.Contains(t, games, "seaside_holiday")

	ws, err := manager.NewSession(ctx, "seaside_holiday")
	require.NoError(t, err)

	// Opening position straight from the content.
	snap, err := manager.Snapshot(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:30", snap.Clock.Time)
	assert.Equal(t, "morning", snap.Clock.Slot)
	assert.Equal(t, 0, snap.Clock.Day)
	assert.Equal(t, "friday", snap.Clock.Weekday)
	assert.Equal(t, "resort", snap.Zone)
	assert.Equal(t, "hotel_room", snap.Location)
	assert.Equal(t, "Hotel Room", snap.LocName)
	assert.Equal(t, "beach_day", snap.Characters["riley"].Outfit)

	// Starting outfits applied their per-slot target states.
	ws, err = manager.Session(ctx, ws.ID)
	require.NoError(t, err)
	riley := ws.Characters["riley"].Wardrobe
	assert.Equal(t, "linen_shirt", riley.SlotToItem["torso"])
	assert.Equal(t, wardrobe.StateOpened, riley.Layers["torso"])
	marina := ws.Characters["marina"].Wardrobe
	assert.Equal(t, "locket", marina.SlotToItem["neck"])

	// A conversational beat costs the quick category.
	action, effects := conversation()
	out := apply(t, manager, ws, action, effects)
	assert.Equal(t, 1, out.Time.Minutes)
	assert.Equal(t, "quick", out.Time.Category)
	assert.Equal(t, "09:31", out.Snapshot.Clock.Time)

	// Local moves use the zone's flat cost and must follow exits.
	action, effects = move("lobby")
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, 3, out.Time.Minutes)
	assert.Equal(t, "lobby", out.Snapshot.Location)

	action, effects = move("beach")
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, "09:37", out.Snapshot.Clock.Time)
	assert.Equal(t, "beach", out.Snapshot.Location)

	// Walking is active travel: distance 2.5 at 12 min/unit.
	action, effects = travel("old_town", "walk", "")
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, 30, out.Time.Minutes)
	assert.Equal(t, "old_town", out.Snapshot.Zone)
	assert.Equal(t, "harbour", out.Snapshot.Location)
	assert.Equal(t, "10:07", out.Snapshot.Clock.Time)

	// The ferry connection restricts entries, so an empty entry is
	// refused and the refused move costs no time.
	action, effects = travel("gull_island", "ferry", "")
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, 1, out.Rejected)
	assert.Equal(t, 0, out.Time.Minutes)
	assert.Equal(t, "old_town", out.Snapshot.Zone)
	assert.Equal(t, "10:07", out.Snapshot.Clock.Time)

	// Naming the permitted pier works. The ferry prices by category and
	// is passive.
	action, effects = travel("gull_island", "ferry", "pier")
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, 45, out.Time.Minutes)
	assert.Equal(t, "crossing", out.Time.Category)
	assert.Equal(t, "gull_island", out.Snapshot.Zone)
	assert.Equal(t, "pier", out.Snapshot.Location)
	assert.Equal(t, "10:52", out.Snapshot.Clock.Time)

	// Gull Island has no movement block, so local moves fall back to
	// the global movement default.
	action, effects = move("lighthouse")
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, 10, out.Time.Minutes)
	assert.Equal(t, "stroll", out.Time.Category)
	assert.Equal(t, "11:02", out.Snapshot.Clock.Time)

	// Marina's locket is locked: taking it off is refused, but the
	// action still advances time exactly once.
	out = apply(t, manager, ws, state.Action{Kind: pacing.KindChoice},
		[]state.Effect{{Kind: state.EffectClothingTakeOff, Garment: "locket", Character: "marina"}})
	assert.Equal(t, 0, out.Applied)
	assert.Equal(t, 1, out.Rejected)
	assert.Equal(t, 5, out.Time.Minutes)
	assert.Equal(t, "11:07", out.Snapshot.Clock.Time)

	// Closing the shirt works and reads back through the next load.
	out = apply(t, manager, ws, state.Action{Kind: pacing.KindChoice},
		[]state.Effect{{Kind: state.EffectClothingState, Garment: "linen_shirt", State: "intact"}})
	assert.Equal(t, 1, out.Applied)

	ws, err = manager.Session(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, wardrobe.StateIntact, ws.Characters["riley"].Wardrobe.Layers["torso"])

	// Bookkeeping effects carry an explicit zero-minute cost.
	zero := 0
	out = apply(t, manager, ws, state.Action{Kind: pacing.KindChoice, Minutes: &zero},
		[]state.Effect{
			{Kind: state.EffectInventoryDelta, Item: "seashell", Delta: 3},
			{Kind: state.EffectMeterDelta, Meter: "energy", Delta: -30},
			{Kind: state.EffectFlagSet, Flag: "ferry_ride", Value: true},
		})
	assert.Equal(t, 3, out.Applied)
	assert.Equal(t, 0, out.Time.Minutes)
	assert.Equal(t, "11:12", out.Snapshot.Clock.Time)
	assert.Equal(t, 3, out.Snapshot.Characters["riley"].Inventory["seashell"])
	assert.Equal(t, 50, out.Snapshot.Characters["riley"].Meters["energy"])
	assert.True(t, out.Snapshot.Flags["ferry_ride"])

	// An author-specified duration crosses into the afternoon.
	action, effects = explicit(120)
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, "13:12", out.Snapshot.Clock.Time)
	assert.Equal(t, "afternoon", out.Snapshot.Clock.Slot)

	// A long scene rolls the day: friday becomes saturday.
	action, effects = explicit(660)
	out = apply(t, manager, ws, action, effects)
	assert.Equal(t, 1, out.Time.Days)
	assert.Equal(t, "00:12", out.Snapshot.Clock.Time)
	assert.Equal(t, "night", out.Snapshot.Clock.Slot)
	assert.Equal(t, 1, out.Snapshot.Clock.Day)
	assert.Equal(t, "saturday", out.Snapshot.Clock.Weekday)
}

func TestVisitBudget(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	ws, err := manager.NewSession(ctx, "seaside_holiday")
	require.NoError(t, err)

	require.NoError(t, manager.EnterNode(ctx, ws.ID, "lighthouse_talk:1"))

	capMinutes := 2
	talk := state.Action{Kind: pacing.KindConversation, CapPerVisit: &capMinutes}

	out := apply(t, manager, ws, talk, nil)
	assert.Equal(t, 1, out.Time.Minutes)
	assert.False(t, out.Time.Capped)

	out = apply(t, manager, ws, talk, nil)
	assert.Equal(t, 1, out.Time.Minutes)
	assert.False(t, out.Time.Capped)

	// The budget is spent: further conversation stops costing time.
	out = apply(t, manager, ws, talk, nil)
	assert.Equal(t, 0, out.Time.Minutes)
	assert.True(t, out.Time.Capped)

	// Entering a new node instance resets the budget.
	require.NoError(t, manager.EnterNode(ctx, ws.ID, "lighthouse_talk:2"))
	out = apply(t, manager, ws, talk, nil)
	assert.Equal(t, 1, out.Time.Minutes)
	assert.False(t, out.Time.Capped)
}

func TestSessionResume(t *testing.T) {
	manager, store := setupManager(t)
	ctx := context.Background()

	ws, err := manager.NewSession(ctx, "seaside_holiday")
	require.NoError(t, err)

	action, effects := move("lobby")
	apply(t, manager, ws, action, effects)

	// A second manager over the same store picks the session up where
	// it stopped.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resumed := session.NewManager(store, logger)

	loaded, err := resumed.Session(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "lobby", loaded.Location)
	assert.Equal(t, 1, loaded.TurnCount)
	assert.Equal(t, 573, loaded.Clock.Minutes)

	action, effects = move("beach")
	out, err := resumed.ApplyAction(ctx, ws.ID, action, effects)
	require.NoError(t, err)
	assert.Equal(t, "beach", out.Snapshot.Location)
	assert.Equal(t, 2, out.Snapshot.TurnCount)
}

func TestBusySessionRejected(t *testing.T) {
	manager, store := setupManager(t)
	ctx := context.Background()

	ws, err := manager.NewSession(ctx, "seaside_holiday")
	require.NoError(t, err)

	acquired, err := store.AcquireTurnLock(ctx, ws.ID, "another-turn")
	require.NoError(t, err)
	require.True(t, acquired)

	action, effects := conversation()
	_, err = manager.ApplyAction(ctx, ws.ID, action, effects)
	assert.ErrorIs(t, err, session.ErrSessionBusy)

	store.ReleaseTurnLock(ctx, ws.ID, "another-turn")
	_, err = manager.ApplyAction(ctx, ws.ID, action, effects)
	assert.NoError(t, err)
}

func TestEndSession(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	ws, err := manager.NewSession(ctx, "seaside_holiday")
	require.NoError(t, err)

	require.NoError(t, manager.EndSession(ctx, ws.ID))

	_, err = manager.Session(ctx, ws.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

package timeline

import (
	"context"
	"testing"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTimeline(t *testing.T) {
	ctx := context.Background()
	tl := NewMemoryTimeline()

	spotted := guard.Transition{SquadID: "s", From: guard.Patrol, To: guard.Attack, Tick: 4, LastSeen: game.Vec2{X: 3}, Agent: 2}
	lost := guard.Transition{SquadID: "s", From: guard.Attack, To: guard.Hunt, Tick: 9, Agent: -1}
	back := guard.Transition{SquadID: "s", From: guard.Hunt, To: guard.Patrol, Tick: 20, Agent: -1}

	require.NoError(t, tl.Append(ctx, "a", lost))
	require.NoError(t, tl.Append(ctx, "a", back))
	require.NoError(t, tl.Append(ctx, "a", spotted))
	require.NoError(t, tl.Append(ctx, "b", spotted))

	got, err := tl.Range(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []guard.Transition{spotted, lost, back}, got)

	got[0].Tick = 99
	again, err := tl.Range(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), again[0].Tick)

	require.NoError(t, tl.Drop(ctx, "a"))
	got, err = tl.Range(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = tl.Range(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "warden:timeline:abc", key("abc"))
}

package server

import (
	"testing"

	"github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *GameSnapshot {
	return &GameSnapshot{
		GameID:    uuid.NewV4(),
		Player1ID: uuid.NewV4(),
		Player2ID: uuid.NewV4(),
		Player1Placement: Placement{
			"carrier":   {0, 1, 2, 3, 4},
			"destroyer": {10, 11},
		},
		Player2Placement: Placement{
			"carrier":   {50, 51, 52, 53, 54},
			"destroyer": {60, 61},
		},
		Status: GameStatusPlayer1Turn,
	}
}

func TestProjectPerspective(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Player1Shots = []Shot{{Cell: 60, Hit: true}}
	snapshot.Player2Shots = []Shot{{Cell: 7, Hit: false}}

	view1, err := Project(snapshot, snapshot.Player1ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.GameID, view1.GameID)
	assert.Equal(t, snapshot.Player2ID, view1.OpponentID)
	assert.Equal(t, snapshot.Player1Placement, view1.YourShips)
	assert.Equal(t, snapshot.Player1Shots, view1.YourShots)
	assert.Equal(t, snapshot.Player2Shots, view1.OpponentShots)
	assert.True(t, view1.YourTurn)

	view2, err := Project(snapshot, snapshot.Player2ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Player1ID, view2.OpponentID)
	assert.Equal(t, snapshot.Player2Placement, view2.YourShips)
	assert.False(t, view2.YourTurn)
}

func TestProjectRejectsNonParticipant(t *testing.T) {
	_, err := Project(testSnapshot(), uuid.NewV4())
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestProjectTurnFlagFollowsStatus(t *testing.T) {
	for _, tc := range []struct {
		status GameStatus
		p1Turn bool
		p2Turn bool
	}{
		{GameStatusPlayer1Turn, true, false},
		{GameStatusPlayer2Turn, false, true},
		{GameStatusPlayer1Win, false, false},
		{GameStatusPlayer2Win, false, false},
		{GameStatusUnknown, false, false},
	} {
		snapshot := testSnapshot()
		snapshot.Status = tc.status

		view1, err := Project(snapshot, snapshot.Player1ID)
		require.NoError(t, err)
		assert.Equal(t, tc.p1Turn, view1.YourTurn, "status %d player1", tc.status)
		assert.Equal(t, int32(tc.status), view1.CurrentState)

		view2, err := Project(snapshot, snapshot.Player2ID)
		require.NoError(t, err)
		assert.Equal(t, tc.p2Turn, view2.YourTurn, "status %d player2", tc.status)
	}
}

func TestDestroyedShipsRequireFullCoverage(t *testing.T) {
	snapshot := testSnapshot()

	// One carrier cell still standing.
	snapshot.Player1Shots = []Shot{
		{Cell: 50, Hit: true}, {Cell: 51, Hit: true}, {Cell: 52, Hit: true}, {Cell: 53, Hit: true},
		{Cell: 60, Hit: true}, {Cell: 61, Hit: true},
	}

	view, err := Project(snapshot, snapshot.Player1ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"destroyer"}, view.DestroyedOpponentShips)

	snapshot.Player1Shots = append(snapshot.Player1Shots, Shot{Cell: 54, Hit: true})
	view, err = Project(snapshot, snapshot.Player1ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"carrier", "destroyer"}, view.DestroyedOpponentShips)
}

func TestDestroyedShipsAreMonotonic(t *testing.T) {
	snapshot := testSnapshot()

	allCells := []CellIndex{50, 51, 52, 53, 54, 60, 61, 70, 71, 99}

	previous := map[string]bool{}
	for _, cell := range allCells {
		snapshot.Player1Shots = append(snapshot.Player1Shots, Shot{Cell: cell, Hit: true})

		view, err := Project(snapshot, snapshot.Player1ID)
		require.NoError(t, err)

		current := map[string]bool{}
		for _, ship := range view.DestroyedOpponentShips {
			current[ship] = true
		}
		for ship := range previous {
			assert.True(t, current[ship], "ship %s resurrected after shot %d", ship, cell)
		}
		previous = current
	}

	assert.Equal(t, map[string]bool{"carrier": true, "destroyer": true}, previous)
}

func TestProjectionIsPure(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Player1Shots = []Shot{{Cell: 60, Hit: true}, {Cell: 61, Hit: true}}

	first, err := Project(snapshot, snapshot.Player1ID)
	require.NoError(t, err)
	second, err := Project(snapshot, snapshot.Player1ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

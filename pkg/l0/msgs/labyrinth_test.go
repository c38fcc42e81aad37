package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWallIndex(t *testing.T) {
	m := NewLabyrinthWalls(LabyrinthRows, LabyrinthCols)
	require.Equal(t, 112, m.NumWalls())
	testCases := []struct {
		row, col uint8
		dir      Direction
		idx      int
	}{
		{0, 0, West, 0},
		{0, 0, East, 1},
		{0, 6, East, 7},
		{1, 0, West, 8},
		{6, 6, East, 55},
		{0, 0, North, 56},
		{0, 0, South, 57},
		{6, 0, South, 63},
		{0, 1, North, 64},
		{6, 6, South, 111},
	}
	for _, tc := range testCases {
		idx, ok := m.WallIndex(tc.row, tc.col, tc.dir)
		require.True(t, ok)
		require.Equalf(t, tc.idx, idx, "%d,%d %s", tc.row, tc.col, tc.dir)
	}
	_, ok := m.WallIndex(7, 0, North)
	require.False(t, ok)
	_, ok = m.WallIndex(0, 7, North)
	require.False(t, ok)
	_, ok = m.WallIndex(0, 0, Direction(4))
	require.False(t, ok)
}

func TestLabyrinthWalls(t *testing.T) {
	m := NewLabyrinthWalls(LabyrinthRows, LabyrinthCols)
	m.SetCellWalls(2, 3, CellWalls{North: true, East: true})
	require.Equal(t, CellWalls{North: true, East: true}, m.CellWalls(2, 3))
	require.Equal(t, CellWalls{West: true}, m.CellWalls(2, 4))
	require.Equal(t, CellWalls{South: true}, m.CellWalls(1, 3))
	require.Equal(t, CellWalls{}, m.CellWalls(9, 9))

	m.SetWall(2, 4, West, false)
	require.False(t, m.Wall(2, 3, East))

	data, err := m.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 16)
	require.Equal(t, []byte{7, 7}, data[:2])

	var decoded LabyrinthWalls
	require.NoError(t, decoded.UnmarshalBinary(data))
	require.Equal(t, m, &decoded)
	require.True(t, decoded.Wall(2, 3, North))

	m.Clear()
	require.Equal(t, CellWalls{}, m.CellWalls(2, 3))
}

func TestLabyrinthWallsSmall(t *testing.T) {
	m := NewLabyrinthWalls(2, 3)
	require.Equal(t, 17, m.NumWalls())
	require.Len(t, m.Walls, 3)
	idx, ok := m.WallIndex(1, 2, South)
	require.True(t, ok)
	require.Equal(t, 16, idx)
	m.SetWall(1, 2, South, true)
	require.Equal(t, byte(1), m.Walls[2])
}

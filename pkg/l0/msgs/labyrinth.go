package msgs

import (
	"fmt"
)

// Default labyrinth size.
const (
	LabyrinthRows = 7
	LabyrinthCols = 7
)

// Direction of a wall relative to its cell.
type Direction uint8

// Directions
const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"north", "east", "south", "west"}

// String implements fmt.Stringer.
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// CellWalls is the wall state around one cell.
type CellWalls struct {
	North bool `json:"north"`
	East  bool `json:"east"`
	South bool `json:"south"`
	West  bool `json:"west"`
}

// LabyrinthWalls is the bitmap of all walls in a labyrinth.
//
// Walls are numbered first by the vertical walls of each row, row-major
// with cols+1 walls per row, followed by the horizontal walls of each
// column, column-major with rows+1 walls per column.
type LabyrinthWalls struct {
	Cols  uint8  `json:"cols"`
	Rows  uint8  `json:"rows"`
	Walls []byte `json:"walls"`
}

// NewLabyrinthWalls creates an empty labyrinth.
func NewLabyrinthWalls(rows, cols uint8) *LabyrinthWalls {
	m := &LabyrinthWalls{Rows: rows, Cols: cols}
	m.Walls = make([]byte, m.wallBytes())
	return m
}

// NumWalls returns the number of walls including the border.
func (m *LabyrinthWalls) NumWalls() int {
	rows, cols := int(m.Rows), int(m.Cols)
	return (cols+1)*rows + (rows+1)*cols
}

func (m *LabyrinthWalls) wallBytes() int {
	return (m.NumWalls() + 7) >> 3
}

// WallIndex returns the bit number of a wall.
// It returns false if the cell is outside the labyrinth.
func (m *LabyrinthWalls) WallIndex(row, col uint8, dir Direction) (int, bool) {
	if row >= m.Rows || col >= m.Cols {
		return 0, false
	}
	r, c := int(row), int(col)
	switch dir {
	case East:
		c++
		fallthrough
	case West:
		return r*(int(m.Cols)+1) + c, true
	case South:
		r++
		fallthrough
	case North:
		return c*(int(m.Rows)+1) + r + int(m.Rows)*(int(m.Cols)+1), true
	}
	return 0, false
}

func (m *LabyrinthWalls) bit(idx int) bool {
	return idx>>3 < len(m.Walls) && m.Walls[idx>>3]&(1<<uint(idx&7)) != 0
}

func (m *LabyrinthWalls) setBit(idx int, on bool) {
	if idx>>3 >= len(m.Walls) {
		return
	}
	if on {
		m.Walls[idx>>3] |= 1 << uint(idx&7)
	} else {
		m.Walls[idx>>3] &^= 1 << uint(idx&7)
	}
}

// Wall checks if a single wall is set.
func (m *LabyrinthWalls) Wall(row, col uint8, dir Direction) bool {
	idx, ok := m.WallIndex(row, col, dir)
	return ok && m.bit(idx)
}

// CellWalls returns the walls around a cell, all cleared if out of range.
func (m *LabyrinthWalls) CellWalls(row, col uint8) (w CellWalls) {
	if row >= m.Rows || col >= m.Cols {
		return
	}
	w.North = m.Wall(row, col, North)
	w.East = m.Wall(row, col, East)
	w.South = m.Wall(row, col, South)
	w.West = m.Wall(row, col, West)
	return
}

// SetWall sets or clears a single wall.
// Shared walls are updated for both neighbor cells.
func (m *LabyrinthWalls) SetWall(row, col uint8, dir Direction, on bool) {
	if idx, ok := m.WallIndex(row, col, dir); ok {
		m.setBit(idx, on)
	}
}

// SetCellWalls updates all walls around a cell.
func (m *LabyrinthWalls) SetCellWalls(row, col uint8, w CellWalls) {
	m.SetWall(row, col, North, w.North)
	m.SetWall(row, col, East, w.East)
	m.SetWall(row, col, South, w.South)
	m.SetWall(row, col, West, w.West)
}

// Clear clears all walls.
func (m *LabyrinthWalls) Clear() {
	for n := range m.Walls {
		m.Walls[n] = 0
	}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *LabyrinthWalls) MarshalBinary() ([]byte, error) {
	data := make([]byte, 2+m.wallBytes())
	data[0], data[1] = m.Cols, m.Rows
	copy(data[2:], m.Walls)
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *LabyrinthWalls) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return ErrShortPayload
	}
	m.Cols, m.Rows = data[0], data[1]
	n := m.wallBytes()
	if len(data) < 2+n {
		return ErrShortPayload
	}
	m.Walls = append(m.Walls[:0], data[2:2+n]...)
	return nil
}

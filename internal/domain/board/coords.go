package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord addresses an intersection. Row 0 is the top of the board; the
// display form counts rows from the bottom, so E5 on 9x9 is {4,4}.
type Coord struct {
	Row int
	Col int
}

// Column letters in display coordinates skip "I" by Go convention.
const columnLetters = "ABCDEFGHJKLMNOPQRST"

// ParseCoord turns a display coordinate like "Q16" into a Coord. The input
// is case-insensitive. Coordinates off the board of the given size are
// rejected.
func ParseCoord(text string, size int) (Coord, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if len(text) < 2 {
		return Coord{}, fmt.Errorf("malformed coordinate %q", text)
	}
	col := strings.IndexByte(columnLetters, text[0])
	if col < 0 || col >= size {
		return Coord{}, fmt.Errorf("column %q is off a %dx%d board", text[:1], size, size)
	}
	rowNum, err := strconv.Atoi(text[1:])
	if err != nil {
		return Coord{}, fmt.Errorf("malformed coordinate %q", text)
	}
	if rowNum < 1 || rowNum > size {
		return Coord{}, fmt.Errorf("row %d is off a %dx%d board", rowNum, size, size)
	}
	return Coord{Row: size - rowNum, Col: col}, nil
}

// Display renders the coordinate in letter+number form for a board of the
// given size. Inverse of ParseCoord.
func (c Coord) Display(size int) string {
	return fmt.Sprintf("%c%d", columnLetters[c.Col], size-c.Row)
}

// SGF renders the coordinate as an SGF letter pair (column then row,
// both counted from the top-left with 'a').
func (c Coord) SGF() string {
	return string([]byte{byte('a' + c.Col), byte('a' + c.Row)})
}

// Key is the compact "row,col" form used for the ko point in snapshots.
func (c Coord) Key() string {
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}

// CoordFromKey parses the "row,col" form. Returns false on malformed input.
func CoordFromKey(key string) (Coord, bool) {
	parts := strings.SplitN(key, ",", 2)
	if len(parts) != 2 {
		return Coord{}, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return Coord{}, false
	}
	return Coord{Row: row, Col: col}, true
}

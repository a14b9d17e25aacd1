package board

// Stone is the content of one intersection. The numeric values are part of
// the wire format: board snapshots serialize the grid as 0/1/2.
type Stone int

const (
	Empty Stone = 0
	Black Stone = 1
	White Stone = 2
)

func (s Stone) Opponent() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// Board is a square grid of intersections. The grid is shared, not copied:
// callers that need scratch space must Clone first.
type Board struct {
	Size int
	Grid [][]Stone
}

func New(size int) Board {
	grid := make([][]Stone, size)
	for i := range grid {
		grid[i] = make([]Stone, size)
	}
	return Board{Size: size, Grid: grid}
}

// FromGrid wraps an existing grid without copying it.
func FromGrid(grid [][]Stone) Board {
	return Board{Size: len(grid), Grid: grid}
}

func (b Board) Clone() Board {
	grid := make([][]Stone, b.Size)
	for i := range b.Grid {
		grid[i] = make([]Stone, b.Size)
		copy(grid[i], b.Grid[i])
	}
	return Board{Size: b.Size, Grid: grid}
}

func (b Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Size && c.Col >= 0 && c.Col < b.Size
}

func (b Board) At(c Coord) Stone {
	return b.Grid[c.Row][c.Col]
}

// Place sets an intersection. It performs no legality checking; capture
// resolution is the rules engine's job.
func (b *Board) Place(c Coord, s Stone) {
	b.Grid[c.Row][c.Col] = s
}

// Remove lifts a set of stones off the board.
func (b *Board) Remove(coords []Coord) {
	for _, c := range coords {
		b.Grid[c.Row][c.Col] = Empty
	}
}

func (b Board) Neighbors(c Coord) []Coord {
	candidates := [4]Coord{
		{Row: c.Row - 1, Col: c.Col},
		{Row: c.Row + 1, Col: c.Col},
		{Row: c.Row, Col: c.Col - 1},
		{Row: c.Row, Col: c.Col + 1},
	}
	out := make([]Coord, 0, 4)
	for _, n := range candidates {
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// GroupAt returns the maximal 4-connected same-color group containing the
// stone at c, or nil if c is empty. BFS over orthogonal adjacency.
func (b Board) GroupAt(c Coord) []Coord {
	color := b.At(c)
	if color == Empty {
		return nil
	}
	visited := map[Coord]bool{c: true}
	group := []Coord{c}
	queue := []Coord{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range b.Neighbors(cur) {
			if visited[n] || b.At(n) != color {
				continue
			}
			visited[n] = true
			group = append(group, n)
			queue = append(queue, n)
		}
	}
	return group
}

// Liberties returns the distinct empty intersections adjacent to any stone
// of the group.
func (b Board) Liberties(group []Coord) []Coord {
	seen := make(map[Coord]bool)
	var libs []Coord
	for _, c := range group {
		for _, n := range b.Neighbors(c) {
			if b.At(n) == Empty && !seen[n] {
				seen[n] = true
				libs = append(libs, n)
			}
		}
	}
	return libs
}

func (b Board) CountStones(s Stone) int {
	count := 0
	for _, row := range b.Grid {
		for _, v := range row {
			if v == s {
				count++
			}
		}
	}
	return count
}

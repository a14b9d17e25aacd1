package score

import (
	"goban/internal/domain/board"
	"goban/internal/statuses"
)

// Score is an area (Chinese) scoring breakdown. White includes komi.
type Score struct {
	Black  float64 `json:"black"`
	White  float64 `json:"white"`
	Winner string  `json:"winner"`
}

// Compute scores a board by area counting: stones on the board plus empty
// regions bordered by a single color. Regions touching both colors, and the
// fully empty board, are dame. Every stone on the board counts as alive.
func Compute(b board.Board, komi float64) Score {
	blackTerritory, whiteTerritory := territories(b)

	s := Score{
		Black: float64(b.CountStones(board.Black) + blackTerritory),
		White: float64(b.CountStones(board.White)+whiteTerritory) + komi,
	}
	switch {
	case s.Black > s.White:
		s.Winner = statuses.ColorBlack
	case s.White > s.Black:
		s.Winner = statuses.ColorWhite
	default:
		s.Winner = statuses.ResultDraw
	}
	return s
}

// territories flood-fills each maximal empty region once and attributes it
// to the single bordering color, if there is exactly one.
func territories(b board.Board) (blackTerritory, whiteTerritory int) {
	visited := make([][]bool, b.Size)
	for i := range visited {
		visited[i] = make([]bool, b.Size)
	}

	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			c := board.Coord{Row: row, Col: col}
			if visited[row][col] || b.At(c) != board.Empty {
				continue
			}

			size := 0
			bordersBlack, bordersWhite := false, false
			queue := []board.Coord{c}
			visited[row][col] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				size++
				for _, n := range b.Neighbors(cur) {
					switch b.At(n) {
					case board.Black:
						bordersBlack = true
					case board.White:
						bordersWhite = true
					case board.Empty:
						if !visited[n.Row][n.Col] {
							visited[n.Row][n.Col] = true
							queue = append(queue, n)
						}
					}
				}
			}

			if bordersBlack && !bordersWhite {
				blackTerritory += size
			} else if bordersWhite && !bordersBlack {
				whiteTerritory += size
			}
		}
	}
	return blackTerritory, whiteTerritory
}

package sgf

import (
	"fmt"
	"strconv"
	"strings"
)

// GameTree is one tree in an SGF document (main line plus variations).
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node is a single SGF node. Properties may repeat (e.g. AB[aa][bb]).
type Node struct {
	Properties map[string][]string
}

// SGF is the root element of an SGF document.
type SGF struct {
	Root *GameTree
}

// NewRecord builds the root node for a game record: board size, komi and
// Chinese rules, matching the engine's area scoring.
func NewRecord(boardSize int, komi float64, playerBlack, playerWhite, date string) SGF {
	return SGF{
		Root: &GameTree{
			Nodes: []Node{
				{
					Properties: map[string][]string{
						"FF": {"4"},
						"GM": {"1"},
						"SZ": {strconv.Itoa(boardSize)},
						"PB": {playerBlack},
						"PW": {playerWhite},
						"DT": {date},
						"RE": {""},
						"KM": {strconv.FormatFloat(komi, 'f', 1, 64)},
						"RU": {"Chinese"},
					},
				},
			},
		},
	}
}

func Serialize(s *SGF) string {
	var builder strings.Builder
	builder.WriteString("(")
	serializeGameTree(&builder, s.Root)
	builder.WriteString(")")
	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")

		// fixed property order for the root node
		orderedKeys := []string{"FF", "GM", "SZ", "PB", "PW", "DT", "RE", "KM", "RU", "C", "B", "W"}
		used := make(map[string]bool)
		for _, key := range orderedKeys {
			if values, ok := node.Properties[key]; ok {
				used[key] = true
				for _, v := range values {
					builder.WriteString(fmt.Sprintf("%s[%s]", key, v))
				}
			}
		}

		for key, values := range node.Properties {
			if !used[key] {
				for _, v := range values {
					builder.WriteString(fmt.Sprintf("%s[%s]", key, v))
				}
			}
		}
	}

	for _, child := range tree.Children {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

// AppendMove appends one move token to a semicolon-separated fragment like
// ";B[pd];W[dd]". An empty coordinate encodes a pass.
func AppendMove(fragment, colorLetter, coords string) string {
	return fragment + fmt.Sprintf(";%s[%s]", colorLetter, coords)
}

// AppendMoveToRecord appends a move to a full serialized record, keeping the
// closing parenthesis at the end.
func AppendMoveToRecord(sgfText, colorLetter, coords string) string {
	if strings.HasSuffix(sgfText, ")") {
		sgfText = sgfText[:len(sgfText)-1]
	}
	return sgfText + fmt.Sprintf(";%s[%s])", colorLetter, coords)
}

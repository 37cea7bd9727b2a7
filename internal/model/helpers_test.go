package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// startedGame sets up a game from a FEN record and starts it.
func startedGame(t *testing.T, fen string) *Game {
	t.Helper()
	pl, toMove, err := ParseFEN(fen)
	require.NoError(t, err)
	g, err := NewGameFromPlacement("test", pl, toMove)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	return g
}

func sq(t *testing.T, label string) SquareID {
	t.Helper()
	id, err := ParseSquare(label)
	require.NoError(t, err)
	return id
}

func pieceOn(t *testing.T, g *Game, label string) PieceID {
	t.Helper()
	s, ok := g.board.SquareByLabel(label)
	require.True(t, ok, "no square %s", label)
	require.False(t, s.Empty(), "no piece on %s", label)
	return s.Occupant
}

func labels(ids []SquareID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// snapshot captures everything a speculative move could disturb.
type snapshot struct {
	squares [64]Square
	pieces  []Piece
	players [2]Player
	state   GameState
}

func takeSnapshot(g *Game) snapshot {
	return snapshot{
		squares: g.board.squares,
		pieces:  append([]Piece(nil), g.board.pieces...),
		players: [2]Player{g.players[White].clone(), g.players[Black].clone()},
		state:   g.State(),
	}
}

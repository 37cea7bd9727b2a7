package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardLookup(t *testing.T) {
	b := newEmptyBoard()

	assert.True(t, b.IsValidPosition(0, 0))
	assert.True(t, b.IsValidPosition(7, 7))
	assert.False(t, b.IsValidPosition(-1, 3))
	assert.False(t, b.IsValidPosition(3, 8))

	s, ok := b.SquareAt(7, 4)
	require.True(t, ok)
	assert.Equal(t, "e1", s.Label)

	s, ok = b.SquareAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, "a8", s.Label)

	_, ok = b.SquareAt(8, 0)
	assert.False(t, ok)

	s, ok = b.SquareByLabel("E4")
	require.True(t, ok)
	assert.Equal(t, 4, s.Row)
	assert.Equal(t, 4, s.Col)

	for _, bad := range []string{"", "z9", "e0", "e44", "-"} {
		_, ok := b.SquareByLabel(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseSquareRoundTrip(t *testing.T) {
	for id := SquareID(0); id < 64; id++ {
		parsed, err := ParseSquare(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
	_, err := ParseSquare("i1")
	assert.ErrorIs(t, err, ErrUnknownSquare)
}

func TestStandardSetup(t *testing.T) {
	g := NewGame("std")
	assert.Empty(t, g.board.pieces, "pieces are placed on start")
	require.NoError(t, g.Start())

	tests := []struct {
		label string
		pt    PieceType
		side  Side
	}{
		{"a1", Rook, White},
		{"b1", Knight, White},
		{"c1", Bishop, White},
		{"d1", Queen, White},
		{"e1", King, White},
		{"h1", Rook, White},
		{"e2", Pawn, White},
		{"d8", Queen, Black},
		{"e8", King, Black},
		{"g8", Knight, Black},
		{"a7", Pawn, Black},
	}
	for _, tt := range tests {
		p, ok := g.board.PieceAt(sq(t, tt.label))
		require.True(t, ok, tt.label)
		assert.Equal(t, tt.pt, p.Type, tt.label)
		assert.Equal(t, tt.side, p.Side, tt.label)
		assert.False(t, p.HasMoved(), tt.label)
	}

	assert.Len(t, g.board.pieces, 32)
	assert.Len(t, g.players[White].Pieces, 16)
	assert.Len(t, g.players[Black].Pieces, 16)
	assert.True(t, g.players[White].HasTurn)
	assert.False(t, g.players[Black].HasTurn)
	assert.NoError(t, g.board.Validate())
	assert.Equal(t, "rnbqkbnr\npppppppp\n........\n........\n........\n........\nPPPPPPPP\nRNBQKBNR\n", g.String())
}

func TestBoardAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		toMove Side
		check  [2]bool
		legal  bool
	}{
		{
			name:  "quiet",
			fen:   "4k3/8/8/8/8/8/8/4K3 w - - 0 1",
			legal: true,
		},
		{
			name:  "white king on an open file",
			fen:   "k3q3/8/8/8/8/8/8/4K3 w - - 0 1",
			check: [2]bool{true, false},
			legal: false,
		},
		{
			name:   "only the mover's exposure decides",
			fen:    "R3k3/8/8/8/8/8/8/4K3 w - - 0 1",
			toMove: White,
			check:  [2]bool{false, true},
			legal:  true,
		},
		{
			name:   "both kings attacked, white to move",
			fen:    "R3k3/8/8/4r3/8/8/8/4K3 w - - 0 1",
			toMove: White,
			check:  [2]bool{true, true},
			legal:  false,
		},
		{
			name:   "both kings attacked, black to move",
			fen:    "R3k3/8/8/4r3/8/8/8/4K3 b - - 0 1",
			toMove: Black,
			check:  [2]bool{true, true},
			legal:  false,
		},
		{
			name:   "pawn attacks diagonally only",
			fen:    "8/8/8/8/8/3p4/4K3/k7 w - - 0 1",
			toMove: White,
			check:  [2]bool{true, false},
			legal:  false,
		},
		{
			name:   "pawn in front does not attack",
			fen:    "8/8/8/8/8/4p3/4K3/k7 w - - 0 1",
			toMove: White,
			legal:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := startedGame(t, tt.fen)
			a := g.board.Analyze(tt.toMove)
			assert.Equal(t, tt.check, a.InCheck)
			assert.Equal(t, tt.legal, a.Legal)

			g.turn = tt.toMove
			assert.Equal(t, tt.legal, g.Analyze())
			assert.Equal(t, tt.check[White], g.InCheck(White))
			assert.Equal(t, tt.check[Black], g.InCheck(Black))
		})
	}
}

func TestAnalyzeWithoutKing(t *testing.T) {
	g := startedGame(t, "8/8/8/8/8/8/8/q6K w - - 0 1")
	a := g.board.Analyze(Black)
	assert.True(t, a.InCheck[White])
	assert.False(t, a.InCheck[Black])
	assert.True(t, a.Legal)
}

func TestPlaceOnOccupiedSquarePanics(t *testing.T) {
	g := startedGame(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	king := pieceOn(t, g, "e1")
	assert.Panics(t, func() {
		g.board.relocate(king, sq(t, "e8"))
	})
}

func TestValidateDetectsBrokenReference(t *testing.T) {
	g := startedGame(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, g.board.Validate())

	king := pieceOn(t, g, "e1")
	g.board.pieces[king].Square = sq(t, "e2")
	assert.Error(t, g.board.Validate())
}

package model

import (
	"fmt"
	"strings"
)

type Side uint8

const (
	White Side = iota
	Black
)

func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "white"
}

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// forward is the row step a pawn of this side advances by.
func (s Side) forward() int {
	if s == White {
		return -1
	}
	return 1
}

// backRank is the row holding this side's king and rooks in the initial setup.
func (s Side) backRank() int {
	if s == White {
		return 7
	}
	return 0
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown side %q", s)
}

// PieceType is the closed set of chess units. The zero value means no piece.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var pieceTypeNames = [...]string{
	NoPieceType: "",
	Pawn:        "pawn",
	Rook:        "rook",
	Knight:      "knight",
	Bishop:      "bishop",
	Queen:       "queen",
	King:        "king",
}

func (p PieceType) String() string {
	if int(p) < len(pieceTypeNames) {
		return pieceTypeNames[p]
	}
	return fmt.Sprintf("PieceType(%d)", uint8(p))
}

func (p PieceType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PieceType) UnmarshalText(text []byte) error {
	pt, err := ParsePieceType(string(text))
	if err != nil {
		return err
	}
	*p = pt
	return nil
}

func ParsePieceType(s string) (PieceType, error) {
	if s == "" {
		return NoPieceType, nil
	}
	for pt, name := range pieceTypeNames {
		if pt != 0 && strings.EqualFold(name, s) {
			return PieceType(pt), nil
		}
	}
	return NoPieceType, fmt.Errorf("unknown piece type %q", s)
}

// PieceID is a stable handle into the board's piece arena.
type PieceID int

const NoPiece PieceID = -1

type Piece struct {
	ID     PieceID   `json:"id"`
	Type   PieceType `json:"type"`
	Side   Side      `json:"side"`
	Square SquareID  `json:"square"`
	// Moves counts committed and simulated relocations; undo decrements it.
	Moves int `json:"moves"`
}

func (p *Piece) HasMoved() bool {
	return p.Moves > 0
}

// Captured reports whether the piece has been taken off the board.
func (p *Piece) Captured() bool {
	return p.Square == NoSquare
}

var pieceSymbols = [...]byte{Pawn: 'p', Rook: 'r', Knight: 'n', Bishop: 'b', Queen: 'q', King: 'k'}

// symbol is the FEN letter of the piece, upper case for White.
func (p *Piece) symbol() byte {
	c := pieceSymbols[p.Type]
	if p.Side == White {
		c -= 'a' - 'A'
	}
	return c
}

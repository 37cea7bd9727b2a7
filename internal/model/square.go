package model

import (
	"fmt"
	"strings"
)

// SquareID indexes the 64-square grid as row*8+col. Row 0 is rank 8.
type SquareID int

const NoSquare SquareID = -1

func squareID(row, col int) SquareID {
	return SquareID(row*8 + col)
}

func (s SquareID) Row() int { return int(s) / 8 }
func (s SquareID) Col() int { return int(s) % 8 }

func (s SquareID) Valid() bool {
	return s >= 0 && s < 64
}

func (s SquareID) String() string {
	if !s.Valid() {
		return "-"
	}
	return squareLabel(s.Row(), s.Col())
}

func (s SquareID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SquareID) UnmarshalText(text []byte) error {
	id, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*s = id
	return nil
}

// ParseSquare converts a label such as "e4" into a SquareID. "-" is NoSquare.
func ParseSquare(label string) (SquareID, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "-" {
		return NoSquare, nil
	}
	if len(label) != 2 || label[0] < 'a' || label[0] > 'h' || label[1] < '1' || label[1] > '8' {
		return NoSquare, fmt.Errorf("%w: %q", ErrUnknownSquare, label)
	}
	return squareID(8-int(label[1]-'0'), int(label[0]-'a')), nil
}

func squareLabel(row, col int) string {
	return fmt.Sprintf("%c%d", col+'a', 8-row)
}

// Tag marks squares for the presentation layer.
type Tag uint8

const (
	TagMove Tag = 1 << iota
	TagEnemy
	TagCastling
	TagFrom
	TagTo
)

// transientTags are the tags produced by a legality pass.
const transientTags = TagMove | TagEnemy | TagCastling

func (t Tag) Has(flag Tag) bool {
	return t&flag != 0
}

type Square struct {
	ID       SquareID `json:"id"`
	Row      int      `json:"row"`
	Col      int      `json:"col"`
	Label    string   `json:"label"`
	Occupant PieceID  `json:"occupant"`
	Tags     Tag      `json:"tags"`
}

func (s *Square) Empty() bool {
	return s.Occupant == NoPiece
}

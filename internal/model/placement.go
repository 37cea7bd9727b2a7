package model

import (
	"fmt"
	"strings"
	"unicode"
)

type PieceSpec struct {
	Type  PieceType `json:"type"`
	Side  Side      `json:"side"`
	Moved bool      `json:"moved,omitempty"`
}

// Placement maps square labels to the pieces that start there.
type Placement struct {
	Pieces map[string]PieceSpec `json:"pieces"`
}

var fenPieces = map[rune]PieceType{
	'p': Pawn, 'r': Rook, 'n': Knight, 'b': Bishop, 'q': Queen, 'k': King,
}

// ParseFEN reads the board, side-to-move and castling fields of a FEN
// record. Missing trailing fields default to White to move with every
// piece unmoved. Pawns off their starting rank are marked as moved.
func ParseFEN(fen string) (Placement, Side, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return Placement{}, White, fmt.Errorf("%w: empty FEN", ErrInvalidPlacement)
	}
	pl := Placement{Pieces: make(map[string]PieceSpec)}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Placement{}, White, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidPlacement, len(ranks))
	}
	for row, rank := range ranks {
		col := 0
		for _, r := range rank {
			if unicode.IsDigit(r) {
				col += int(r - '0')
				continue
			}
			pt, ok := fenPieces[unicode.ToLower(r)]
			if !ok {
				return Placement{}, White, fmt.Errorf("%w: unknown piece %q", ErrInvalidPlacement, r)
			}
			if col > 7 {
				return Placement{}, White, fmt.Errorf("%w: rank %d overflows", ErrInvalidPlacement, 8-row)
			}
			side := Black
			if unicode.IsUpper(r) {
				side = White
			}
			spec := PieceSpec{Type: pt, Side: side}
			if pt == Pawn && row != pawnRow(side) {
				spec.Moved = true
			}
			pl.Pieces[squareLabel(row, col)] = spec
			col++
		}
		if col != 8 {
			return Placement{}, White, fmt.Errorf("%w: rank %d has %d files", ErrInvalidPlacement, 8-row, col)
		}
	}

	toMove := White
	if len(fields) > 1 {
		side, err := ParseSide(fields[1])
		if err != nil {
			return Placement{}, White, fmt.Errorf("%w: %v", ErrInvalidPlacement, err)
		}
		toMove = side
	}
	if len(fields) > 2 {
		applyCastlingRights(pl, fields[2])
	}
	return pl, toMove, nil
}

func pawnRow(side Side) int {
	return side.backRank() + side.forward()
}

// applyCastlingRights marks kings and corner rooks as moved when the FEN
// castling field takes their rights away.
func applyCastlingRights(pl Placement, rights string) {
	corners := []struct {
		label string
		side  Side
		right rune
	}{
		{"a1", White, 'Q'}, {"h1", White, 'K'}, {"a8", Black, 'q'}, {"h8", Black, 'k'},
	}
	kept := map[Side]bool{}
	for _, c := range corners {
		has := strings.ContainsRune(rights, c.right)
		kept[c.side] = kept[c.side] || has
		if spec, ok := pl.Pieces[c.label]; ok && spec.Type == Rook && spec.Side == c.side && !has {
			spec.Moved = true
			pl.Pieces[c.label] = spec
		}
	}
	for label, spec := range pl.Pieces {
		if spec.Type == King && !kept[spec.Side] {
			spec.Moved = true
			pl.Pieces[label] = spec
		}
	}
}

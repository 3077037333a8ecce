package board

import "encoding/json"

// CastlingRights holds the six has-moved flags that decide castling availability.
// A set bit means the king or rook has moved (or was captured). Flags are only ever set.
type CastlingRights uint8

const (
	WhiteKingMoved      CastlingRights = 1 << iota // e1
	WhiteKingRookMoved                             // h1
	WhiteQueenRookMoved                            // a1
	BlackKingMoved                                 // e8
	BlackKingRookMoved                             // h8
	BlackQueenRookMoved                            // a8

	NoneMoved CastlingRights = 0
	AllMoved  CastlingRights = WhiteKingMoved | WhiteKingRookMoved | WhiteQueenRookMoved |
		BlackKingMoved | BlackKingRookMoved | BlackQueenRookMoved
)

// Has reports whether every flag in f is set.
func (cr CastlingRights) Has(f CastlingRights) bool {
	return cr&f == f
}

// Mark sets the given moved flags. Flags are never cleared.
func (cr CastlingRights) Mark(f CastlingRights) CastlingRights {
	return cr | f
}

// CanCastle returns true if neither the king nor the relevant rook of color c has moved.
// Board conditions (empty path, safety) are checked separately.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	king, rook := WhiteKingMoved, WhiteQueenRookMoved
	if kingSide {
		rook = WhiteKingRookMoved
	}
	if c == Black {
		king, rook = king<<3, rook<<3
	}
	return cr&(king|rook) == 0
}

// String returns the FEN castling field for the remaining rights.
func (cr CastlingRights) String() string {
	s := ""
	if cr.CanCastle(White, true) {
		s += "K"
	}
	if cr.CanCastle(White, false) {
		s += "Q"
	}
	if cr.CanCastle(Black, true) {
		s += "k"
	}
	if cr.CanCastle(Black, false) {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

// homeFlag returns the moved flag tied to a king or rook home square.
func homeFlag(sq Square) CastlingRights {
	switch sq {
	case E1:
		return WhiteKingMoved
	case H1:
		return WhiteKingRookMoved
	case A1:
		return WhiteQueenRookMoved
	case E8:
		return BlackKingMoved
	case H8:
		return BlackKingRookMoved
	case A8:
		return BlackQueenRookMoved
	}
	return NoneMoved
}

// touched returns the flags invalidated by moving mover off from and
// taking captured off capSq.
func touched(mover Piece, from Square, captured Piece, capSq Square) CastlingRights {
	var f CastlingRights
	switch mover.Type() {
	case King:
		if mover.Color() == White {
			f |= WhiteKingMoved
		} else {
			f |= BlackKingMoved
		}
	case Rook:
		if rookHome(from, mover.Color()) {
			f |= homeFlag(from)
		}
	}
	if captured.Type() == Rook && rookHome(capSq, captured.Color()) {
		f |= homeFlag(capSq)
	}
	return f
}

func rookHome(sq Square, c Color) bool {
	if c == White {
		return sq == A1 || sq == H1
	}
	return sq == A8 || sq == H8
}

type castlingJSON struct {
	WhiteKingMoved          bool `json:"white_king_moved"`
	WhiteKingsideRookMoved  bool `json:"white_kingside_rook_moved"`
	WhiteQueensideRookMoved bool `json:"white_queenside_rook_moved"`
	BlackKingMoved          bool `json:"black_king_moved"`
	BlackKingsideRookMoved  bool `json:"black_kingside_rook_moved"`
	BlackQueensideRookMoved bool `json:"black_queenside_rook_moved"`
}

// MarshalJSON encodes the flags as six named booleans.
func (cr CastlingRights) MarshalJSON() ([]byte, error) {
	return json.Marshal(castlingJSON{
		WhiteKingMoved:          cr.Has(WhiteKingMoved),
		WhiteKingsideRookMoved:  cr.Has(WhiteKingRookMoved),
		WhiteQueensideRookMoved: cr.Has(WhiteQueenRookMoved),
		BlackKingMoved:          cr.Has(BlackKingMoved),
		BlackKingsideRookMoved:  cr.Has(BlackKingRookMoved),
		BlackQueensideRookMoved: cr.Has(BlackQueenRookMoved),
	})
}

// UnmarshalJSON decodes the six named booleans.
func (cr *CastlingRights) UnmarshalJSON(data []byte) error {
	var v castlingJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	flags := []struct {
		set  bool
		flag CastlingRights
	}{
		{v.WhiteKingMoved, WhiteKingMoved},
		{v.WhiteKingsideRookMoved, WhiteKingRookMoved},
		{v.WhiteQueensideRookMoved, WhiteQueenRookMoved},
		{v.BlackKingMoved, BlackKingMoved},
		{v.BlackKingsideRookMoved, BlackKingRookMoved},
		{v.BlackQueensideRookMoved, BlackQueenRookMoved},
	}
	*cr = NoneMoved
	for _, f := range flags {
		if f.set {
			*cr |= f.flag
		}
	}
	return nil
}

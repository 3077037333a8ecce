package board

import "fmt"

// MarshalText encodes the square in algebraic notation.
func (sq Square) MarshalText() ([]byte, error) {
	return []byte(sq.String()), nil
}

// UnmarshalText decodes algebraic notation; "-" decodes to NoSquare.
func (sq *Square) UnmarshalText(text []byte) error {
	if string(text) == "-" {
		*sq = NoSquare
		return nil
	}
	parsed, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*sq = parsed
	return nil
}

// MarshalText encodes the piece as its FEN letter, or an empty string for NoPiece.
func (p Piece) MarshalText() ([]byte, error) {
	if p == NoPiece {
		return []byte{}, nil
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a FEN letter.
func (p *Piece) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = NoPiece
		return nil
	}
	if len(text) != 1 || PieceFromChar(text[0]) == NoPiece {
		return fmt.Errorf("board: invalid piece %q", text)
	}
	*p = PieceFromChar(text[0])
	return nil
}

// MarshalText encodes the color as "white" or "black".
func (c Color) MarshalText() ([]byte, error) {
	switch c {
	case White:
		return []byte("white"), nil
	case Black:
		return []byte("black"), nil
	}
	return []byte{}, nil
}

// UnmarshalText decodes "white" or "black"; an empty string decodes to NoColor.
func (c *Color) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = NoColor
		return nil
	}
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("board: invalid color %q", text)
	}
	*c = parsed
	return nil
}

// MarshalText encodes the status name.
func (st Status) MarshalText() ([]byte, error) {
	return []byte(st.String()), nil
}

// UnmarshalText decodes a status name.
func (st *Status) UnmarshalText(text []byte) error {
	for _, s := range []Status{InProgress, Check, Checkmate, Stalemate} {
		if s.String() == string(text) {
			*st = s
			return nil
		}
	}
	return fmt.Errorf("board: invalid status %q", text)
}

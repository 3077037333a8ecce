package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
// It is the standard way to verify move generation.
func (s GameState) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := s.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		next, _ := s.Apply(m)
		nodes += next.Perft(depth - 1)
	}
	return nodes
}

// Divide returns the perft count below each root move.
func (s GameState) Divide(depth int) map[Move]uint64 {
	out := make(map[Move]uint64)
	if depth < 1 {
		return out
	}
	for _, m := range s.LegalMoves() {
		next, _ := s.Apply(m)
		out[m] = next.Perft(depth - 1)
	}
	return out
}

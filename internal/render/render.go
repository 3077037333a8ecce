// Package render draws board diagrams as PNG images.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/funzone/internal/board"
)

//go:embed assets/pieces/*.svg
var pieceAssets embed.FS

// pieceFiles maps pieces to their asset file paths.
var pieceFiles = map[board.Piece]string{
	board.WhitePawn:   "assets/pieces/wP.svg",
	board.WhiteKnight: "assets/pieces/wN.svg",
	board.WhiteBishop: "assets/pieces/wB.svg",
	board.WhiteRook:   "assets/pieces/wR.svg",
	board.WhiteQueen:  "assets/pieces/wQ.svg",
	board.WhiteKing:   "assets/pieces/wK.svg",
	board.BlackPawn:   "assets/pieces/bP.svg",
	board.BlackKnight: "assets/pieces/bN.svg",
	board.BlackBishop: "assets/pieces/bB.svg",
	board.BlackRook:   "assets/pieces/bR.svg",
	board.BlackQueen:  "assets/pieces/bQ.svg",
	board.BlackKing:   "assets/pieces/bK.svg",
}

// DefaultSquareSize is the square edge in pixels when none is given.
const DefaultSquareSize = 64

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	LegalMoveColor color.RGBA
	LastMoveColor  color.RGBA
	CheckColor     color.RGBA
	Background     color.RGBA
	TextColor      color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		LightSquare:    color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:     color.RGBA{181, 136, 99, 255},  // Brown
		SelectedSquare: color.RGBA{247, 247, 105, 180}, // Yellow highlight
		LegalMoveColor: color.RGBA{130, 151, 105, 200}, // Green dots
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		CheckColor:     color.RGBA{255, 100, 100, 180}, // Red
		Background:     color.RGBA{40, 44, 52, 255},
		TextColor:      color.RGBA{220, 220, 220, 255},
	}
}

// View carries the per-frame decorations that are not part of the game state.
// Selected is NoSquare when nothing is selected.
type View struct {
	Flip     bool
	Selected board.Square
	Hints    []board.Square
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme replaces the default colors.
func WithTheme(t Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithLogger sets the renderer's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithoutLabels drops the coordinate margin.
func WithoutLabels() Option {
	return func(r *Renderer) { r.labels = false }
}

// Renderer turns game states into images. Piece sprites are rasterised once
// at construction, so a Renderer is cheap to reuse.
type Renderer struct {
	size   int
	theme  Theme
	labels bool
	pieces map[board.Piece]*image.RGBA
	log    zerolog.Logger
}

// New creates a renderer drawing squares of squareSize pixels.
func New(squareSize int, opts ...Option) (*Renderer, error) {
	if squareSize <= 0 {
		squareSize = DefaultSquareSize
	}
	r := &Renderer{
		size:   squareSize,
		theme:  DefaultTheme(),
		labels: true,
		pieces: make(map[board.Piece]*image.RGBA, len(pieceFiles)),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.loadPieces(); err != nil {
		return nil, err
	}
	return r, nil
}

// loadPieces rasterises every piece sprite from the embedded SVG files.
func (r *Renderer) loadPieces() error {
	for piece, path := range pieceFiles {
		data, err := pieceAssets.ReadFile(path)
		if err != nil {
			return fmt.Errorf("render: read %s: %w", path, err)
		}

		icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("render: parse %s: %w", path, err)
		}
		icon.SetTarget(0, 0, float64(r.size), float64(r.size))

		rgba := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
		scanner := rasterx.NewScannerGV(r.size, r.size, rgba, rgba.Bounds())
		raster := rasterx.NewDasher(r.size, r.size, scanner)
		icon.Draw(raster, 1.0)

		r.pieces[piece] = rgba
	}
	r.log.Debug().Int("square", r.size).Int("sprites", len(r.pieces)).Msg("piece sprites loaded")
	return nil
}

// margin is the width of the coordinate border.
func (r *Renderer) margin() int {
	if !r.labels {
		return 0
	}
	return r.size / 2
}

// Size returns the edge length in pixels of the images Draw produces.
func (r *Renderer) Size() int {
	return 8*r.size + 2*r.margin()
}

// squareOrigin returns the top-left pixel of sq.
func (r *Renderer) squareOrigin(sq board.Square, flip bool) image.Point {
	file, rank := sq.File(), sq.Rank()
	col, row := file, 7-rank
	if flip {
		col, row = 7-file, rank
	}
	m := r.margin()
	return image.Pt(m+col*r.size, m+row*r.size)
}

// SquareAt returns the square under pixel p, or NoSquare when p is off the board.
func (r *Renderer) SquareAt(p image.Point, flip bool) board.Square {
	m := r.margin()
	x, y := p.X-m, p.Y-m
	if x < 0 || y < 0 || x >= 8*r.size || y >= 8*r.size {
		return board.NoSquare
	}
	col, row := x/r.size, y/r.size
	if flip {
		return board.NewSquare(7-col, row)
	}
	return board.NewSquare(col, 7-row)
}

func (r *Renderer) squareRect(sq board.Square, flip bool) image.Rectangle {
	o := r.squareOrigin(sq, flip)
	return image.Rect(o.X, o.Y, o.X+r.size, o.Y+r.size)
}

// Draw renders s with the decorations in v.
func (r *Renderer) Draw(s board.GameState, v View) *image.RGBA {
	dim := r.Size()
	img := image.NewRGBA(image.Rect(0, 0, dim, dim))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.theme.Background), image.Point{}, draw.Src)

	r.drawSquares(img, v.Flip)
	r.drawHighlights(img, s, v)
	r.drawPieces(img, &s.Board, v.Flip)
	r.drawHints(img, &s.Board, v)
	if r.labels {
		r.drawLabels(img, v.Flip)
	}
	return img
}

func (r *Renderer) drawSquares(img *image.RGBA, flip bool) {
	for sq := board.Square(0); sq < 64; sq++ {
		c := r.theme.DarkSquare
		if (sq.File()+sq.Rank())%2 == 1 {
			c = r.theme.LightSquare
		}
		draw.Draw(img, r.squareRect(sq, flip), image.NewUniform(c), image.Point{}, draw.Src)
	}
}

func (r *Renderer) drawHighlights(img *image.RGBA, s board.GameState, v View) {
	if !s.LastMove.IsZero() {
		r.tint(img, s.LastMove.From, v.Flip, r.theme.LastMoveColor)
		r.tint(img, s.LastMove.To, v.Flip, r.theme.LastMoveColor)
	}
	if v.Selected.IsValid() {
		r.tint(img, v.Selected, v.Flip, r.theme.SelectedSquare)
	}
	if s.InCheck() {
		if k, err := s.Board.FindKing(s.Turn); err == nil {
			r.tint(img, k, v.Flip, r.theme.CheckColor)
		}
	}
}

// tint blends c over the whole square.
func (r *Renderer) tint(img *image.RGBA, sq board.Square, flip bool, c color.RGBA) {
	draw.Draw(img, r.squareRect(sq, flip), image.NewUniform(premultiply(c)), image.Point{}, draw.Over)
}

func (r *Renderer) drawPieces(img *image.RGBA, b *board.Board, flip bool) {
	for sq := board.Square(0); sq < 64; sq++ {
		p := b.PieceAt(sq)
		if p == board.NoPiece {
			continue
		}
		sprite := r.pieces[p]
		if sprite == nil {
			continue
		}
		draw.Draw(img, r.squareRect(sq, flip), sprite, image.Point{}, draw.Over)
	}
}

// drawHints marks move targets: a dot on empty squares, a ring around pieces.
func (r *Renderer) drawHints(img *image.RGBA, b *board.Board, v View) {
	c := premultiply(r.theme.LegalMoveColor)
	for _, sq := range v.Hints {
		if !sq.IsValid() {
			continue
		}
		rect := r.squareRect(sq, v.Flip)
		center := rect.Min.Add(image.Pt(r.size/2, r.size/2))
		if b.IsEmpty(sq) {
			fillCircle(img, center, float64(r.size)/6, 0, c)
		} else {
			fillCircle(img, center, float64(r.size)/2, float64(r.size)/2-float64(r.size)/12, c)
		}
	}
}

// fillCircle blends c over the annulus inner <= d <= outer around center.
func fillCircle(img *image.RGBA, center image.Point, outer, inner float64, c color.RGBA) {
	src := image.NewUniform(c)
	rad := int(outer) + 1
	for y := -rad; y <= rad; y++ {
		for x := -rad; x <= rad; x++ {
			d2 := float64(x*x + y*y)
			if d2 > outer*outer || d2 < inner*inner {
				continue
			}
			p := center.Add(image.Pt(x, y))
			draw.Draw(img, image.Rect(p.X, p.Y, p.X+1, p.Y+1), src, image.Point{}, draw.Over)
		}
	}
}

// premultiply converts a straight-alpha theme color to the premultiplied form
// image/color expects.
func premultiply(c color.RGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: c.A,
	}
}

// WritePNG encodes the diagram of s to w.
func (r *Renderer) WritePNG(w io.Writer, s board.GameState, v View) error {
	if err := png.Encode(w, r.Draw(s, v)); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

// SavePNG writes the diagram of s to path, creating parent directories.
func (r *Renderer) SavePNG(path string, s board.GameState, v View) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WritePNG(f, s, v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.log.Info().Str("path", path).Msg("board exported")
	return nil
}

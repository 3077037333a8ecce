package render

import (
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
	labelFontErr  error
)

func parseLabelFont() (*opentype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(gobold.TTF)
	})
	return labelFont, labelFontErr
}

// labelFace returns a face sized for the coordinate margin.
func (r *Renderer) labelFace() (font.Face, error) {
	f, err := parseLabelFont()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(r.size) * 0.28,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawLabels writes file letters below and above the board and rank digits
// on both sides, centered in the margin.
func (r *Renderer) drawLabels(img *image.RGBA, flip bool) {
	face, err := r.labelFace()
	if err != nil {
		r.log.Warn().Err(err).Msg("label font unavailable")
		return
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.theme.TextColor),
		Face: face,
	}
	m := r.margin()
	far := m + 8*r.size
	ascent := face.Metrics().Ascent.Ceil()

	centered := func(s string, cx, cy int) {
		w := d.MeasureString(s).Ceil()
		d.Dot = fixed.P(cx-w/2, cy+ascent/2)
		d.DrawString(s)
	}

	for i := 0; i < 8; i++ {
		file, rank := i, 7-i
		if flip {
			file, rank = 7-i, i
		}
		c := m + i*r.size + r.size/2
		fileLabel := string(rune('a' + file))
		rankLabel := string(rune('1' + rank))

		centered(fileLabel, c, far+m/2)
		centered(fileLabel, c, m/2)
		centered(rankLabel, m/2, c)
		centered(rankLabel, far+m/2, c)
	}
}

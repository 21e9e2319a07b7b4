// Package ogimage draws the 1200x630 social preview images.
package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/starford/pinfall/internal/models"
)

// Output size of every preview image.
const (
	Width  = 1200
	Height = 630
)

// The card is laid out on a small canvas with the fixed 7x13 face and
// scaled up, which keeps text legible without bundling font files.
const (
	scale        = 3
	canvasWidth  = Width / scale
	canvasHeight = Height / scale
	lineHeight   = 15
	margin       = 12
)

var (
	firebrick = color.RGBA{0xb2, 0x22, 0x22, 0xff}
	pin       = color.RGBA{0xef, 0xef, 0xef, 0xff}
	gray900   = color.RGBA{0x11, 0x18, 0x27, 0xff}
	gray600   = color.RGBA{0x4b, 0x55, 0x63, 0xff}
	white     = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Card is what a preview image shows.
type Card struct {
	Title    string               `json:"title"`
	Subtitle string               `json:"subtitle,omitempty"`
	Badges   []models.Badge       `json:"badges,omitempty"`
	Podium   []models.PodiumEntry `json:"podium,omitempty"`
	Footer   string               `json:"footer,omitempty"`
}

// EventCard builds the card of one event.
func EventCard(d models.OGData) Card {
	c := Card{
		Title:    d.Name,
		Subtitle: d.Description,
		Badges:   d.Badges,
		Podium:   d.Podium,
	}
	if d.LastUpdated != nil {
		c.Footer = "Updated " + d.LastUpdated.UTC().Format("02/01/2006")
	}
	return c
}

// IndexCard builds the card of the listing page.
func IndexCard(d models.OGIndex) Card {
	c := Card{
		Title:    "Tournament Results",
		Subtitle: fmt.Sprintf("%d events", d.EventCount),
	}
	if d.EventCount == 1 {
		c.Subtitle = "1 event"
	}
	if d.LatestEventName != nil {
		c.Footer = "Latest: " + *d.LatestEventName
		if d.LatestEventYear != nil {
			c.Footer += " " + *d.LatestEventYear
		}
	}
	return c
}

// Renderer draws cards as PNG.
type Renderer struct {
	face font.Face
}

// NewRenderer returns a Renderer using the built-in bitmap face.
func NewRenderer() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// Render draws c and encodes it as PNG.
func (r *Renderer) Render(c Card) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(pin), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, canvasWidth, 6), image.NewUniform(firebrick), image.Point{}, draw.Src)

	y := margin + lineHeight
	for _, line := range r.wrap(c.Title, canvasWidth-2*margin, 2) {
		r.text(canvas, line, margin, y, gray900)
		y += lineHeight
	}
	for _, line := range r.wrap(c.Subtitle, canvasWidth-2*margin, 2) {
		r.text(canvas, line, margin, y, gray600)
		y += lineHeight
	}

	if len(c.Badges) > 0 {
		y += 4
		x := margin
		for _, b := range c.Badges {
			w := font.MeasureString(r.face, b.Label).Ceil() + 8
			if x+w > canvasWidth-margin {
				break
			}
			draw.Draw(canvas, image.Rect(x, y-11, x+w, y+4), image.NewUniform(firebrick), image.Point{}, draw.Src)
			r.text(canvas, b.Label, x+4, y, white)
			x += w + 4
		}
		y += lineHeight + 4
	}

	for _, p := range c.Podium {
		line := fmt.Sprintf("%d. %s", p.Place, p.Players)
		if p.Score != "" {
			line += "  " + p.Score
		}
		r.text(canvas, r.truncate(line, canvasWidth-2*margin), margin, y, gray900)
		y += lineHeight
	}

	if c.Footer != "" {
		r.text(canvas, r.truncate(c.Footer, canvasWidth-2*margin), margin, canvasHeight-margin, gray600)
	}

	out := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.NearestNeighbor.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("ogimage: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) text(dst draw.Image, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrap splits s into at most maxLines lines no wider than width pixels; the
// last line is truncated.
func (r *Renderer) wrap(s string, width, maxLines int) []string {
	words := strings.Fields(s)
	var lines []string
	var cur string
	for i, w := range words {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if font.MeasureString(r.face, next).Ceil() <= width || cur == "" {
			cur = next
			continue
		}
		if len(lines) == maxLines-1 {
			cur = cur + " " + strings.Join(words[i:], " ")
			break
		}
		lines = append(lines, cur)
		cur = w
	}
	if cur != "" {
		lines = append(lines, r.truncate(cur, width))
	}
	return lines
}

func (r *Renderer) truncate(s string, width int) string {
	if font.MeasureString(r.face, s).Ceil() <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		cand := string(runes) + "..."
		if font.MeasureString(r.face, cand).Ceil() <= width {
			return cand
		}
	}
	return ""
}

package services

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"os"

	_ "image/jpeg"

	"github.com/paulmach/orb"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"

	"olist-dashboard/internal/models"
)

const (
	mapWidth  = 1024
	mapHeight = 1024
)

// brazilBound clips the scatter to the region the reference map covers.
var brazilBound = orb.Bound{
	Min: orb.Point{-73.98, -33.75},
	Max: orb.Point{-34.79, 5.27},
}

// GeoPlotter renders the customer point cloud as a PNG, composited over a
// reference map image when one is configured.
type GeoPlotter struct {
	bound    orb.Bound
	mapImage image.Image
	logger   *slog.Logger
}

func NewGeoPlotter(logger *slog.Logger) *GeoPlotter {
	return &GeoPlotter{
		bound:  brazilBound,
		logger: logger,
	}
}

// LoadMapImage decodes the reference map. Optional: without it the scatter
// renders on a plain background.
func (p *GeoPlotter) LoadMapImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open map image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode map image: %w", err)
	}
	p.mapImage = img
	return nil
}

// Render writes the scatter PNG for the given deduplicated customer
// positions. Points outside the bounding region are dropped; an empty input
// still produces a valid image.
func (p *GeoPlotter) Render(w io.Writer, points []models.Geolocation) error {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, pt := range points {
		if !p.bound.Contains(orb.Point{pt.Lng, pt.Lat}) {
			continue
		}
		xs = append(xs, pt.Lng)
		ys = append(ys, pt.Lat)
	}

	base := image.NewRGBA(image.Rect(0, 0, mapWidth, mapHeight))
	draw.Draw(base, base.Bounds(), image.White, image.Point{}, draw.Src)
	if p.mapImage != nil {
		xdraw.BiLinear.Scale(base, base.Bounds(), p.mapImage, p.mapImage.Bounds(), xdraw.Over, nil)
	}

	if len(xs) == 0 {
		return png.Encode(w, base)
	}
	if len(xs) == 1 {
		// go-chart refuses a single-value x range.
		xs = append(xs, xs[0])
		ys = append(ys, ys[0])
	}

	overlay, err := p.renderScatter(xs, ys)
	if err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	draw.Draw(base, base.Bounds(), overlay, image.Point{}, draw.Over)

	return png.Encode(w, base)
}

func (p *GeoPlotter) renderScatter(xs, ys []float64) (image.Image, error) {
	transparent := chart.Style{FillColor: drawing.ColorTransparent}

	ch := chart.Chart{
		Width:      mapWidth,
		Height:     mapHeight,
		Background: transparent,
		Canvas:     transparent,
		XAxis: chart.XAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: p.bound.Min[0], Max: p.bound.Max[0]},
		},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: p.bound.Min[1], Max: p.bound.Max[1]},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    2,
					DotColor:    drawing.Color{R: 7, G: 75, B: 131, A: 160},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

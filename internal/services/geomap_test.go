package services

import (
	"bytes"
	"image/png"
	"log/slog"
	"testing"

	"olist-dashboard/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func decodePNG(t *testing.T, buf *bytes.Buffer) (width, height int) {
	t.Helper()
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestGeoPlotter_Render(t *testing.T) {
	p := NewGeoPlotter(testLogger())

	points := []models.Geolocation{
		{CustomerUniqueID: "C1", Lat: -23.55, Lng: -46.63}, // Sao Paulo
		{CustomerUniqueID: "C2", Lat: -22.90, Lng: -43.17}, // Rio de Janeiro
		{CustomerUniqueID: "C3", Lat: -15.79, Lng: -47.88}, // Brasilia
	}

	var buf bytes.Buffer
	if err := p.Render(&buf, points); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	w, h := decodePNG(t, &buf)
	if w != mapWidth || h != mapHeight {
		t.Errorf("image is %dx%d, want %dx%d", w, h, mapWidth, mapHeight)
	}
}

func TestGeoPlotter_RenderEmpty(t *testing.T) {
	p := NewGeoPlotter(testLogger())

	var buf bytes.Buffer
	if err := p.Render(&buf, nil); err != nil {
		t.Fatalf("Render failed on empty input: %v", err)
	}
	decodePNG(t, &buf)
}

func TestGeoPlotter_RenderSinglePoint(t *testing.T) {
	p := NewGeoPlotter(testLogger())

	var buf bytes.Buffer
	points := []models.Geolocation{{CustomerUniqueID: "C1", Lat: -23.55, Lng: -46.63}}
	if err := p.Render(&buf, points); err != nil {
		t.Fatalf("Render failed on a single point: %v", err)
	}
	decodePNG(t, &buf)
}

func TestGeoPlotter_RenderDropsOutOfBoundPoints(t *testing.T) {
	p := NewGeoPlotter(testLogger())

	// Both points are far outside Brazil; the render degrades to the empty
	// case instead of stretching the plot range.
	points := []models.Geolocation{
		{CustomerUniqueID: "C1", Lat: 48.85, Lng: 2.35},   // Paris
		{CustomerUniqueID: "C2", Lat: 35.68, Lng: 139.69}, // Tokyo
	}

	var onlyOutside bytes.Buffer
	if err := p.Render(&onlyOutside, points); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var empty bytes.Buffer
	if err := p.Render(&empty, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !bytes.Equal(onlyOutside.Bytes(), empty.Bytes()) {
		t.Error("out-of-bound points should render identically to an empty input")
	}
}

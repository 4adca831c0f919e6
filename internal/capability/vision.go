package capability

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// FaceDetector reports whether an image contains a face. Face presence is
// the single strongest engagement signal, but detection needs a model the
// engine does not ship, so the check is pluggable and defaults to absent.
type FaceDetector interface {
	DetectFace(ctx context.Context, img image.Image) (bool, error)
}

// Vision extracts engagement signals from an image: brightness, color
// vibrancy, aspect-ratio composition, and optional face presence.
type Vision struct {
	logger   *logging.Logger
	detector FaceDetector
}

// VisionOption configures the vision capability.
type VisionOption func(*Vision)

// WithFaceDetector plugs in a face detection backend.
func WithFaceDetector(d FaceDetector) VisionOption {
	return func(v *Vision) { v.detector = d }
}

// NewVision creates the image analysis capability.
func NewVision(logger *logging.Logger, opts ...VisionOption) *Vision {
	if logger == nil {
		logger = logging.NewNop()
	}
	v := &Vision{logger: logger.Named("vision")}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Vision) Name() string { return "vision" }

// Invoke analyzes the request's image. Requests without an image are
// skipped; undecodable images are a failed result, not an error.
func (v *Vision) Invoke(ctx context.Context, req *agent.Request) (agent.Result, error) {
	if !req.HasImage() {
		return agent.Skipped("no image provided"), nil
	}

	img, format, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return agent.Failed(fmt.Errorf("decode image: %w", err)), nil
	}

	signals := extractSignals(img)
	signals.Format = format

	if v.detector != nil {
		face, err := v.detector.DetectFace(ctx, img)
		if err != nil {
			v.logger.Warn(ctx, "face detection failed", zap.Error(err))
		} else {
			signals.FaceDetected = face
		}
	}

	risk := riskLevel(signals)
	fixes := recommendFixes(signals)

	confidence := "Medium"
	if signals.FaceDetected {
		confidence = "High"
	}

	v.logger.Debug(ctx, "image analyzed",
		zap.String("risk", risk),
		zap.String("brightness", signals.Brightness),
		zap.String("vibrancy", signals.Vibrancy),
	)

	return agent.Analyzed(map[string]any{
		"risk":  risk,
		"fixes": fixes,
		"signals": map[string]any{
			"brightness":     signals.Brightness,
			"color_vibrancy": signals.Vibrancy,
			"composition":    signals.Composition,
			"face_detected":  signals.FaceDetected,
			"format":         signals.Format,
		},
		"confidence": confidence,
	}, confidence), nil
}

type visionSignals struct {
	Brightness   string
	Vibrancy     string
	Composition  string
	FaceDetected bool
	Format       string
}

// extractSignals computes mean channel values over the image and derives
// brightness, vibrancy, and composition classes from them.
func extractSignals(img image.Image) visionSignals {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var sumR, sumG, sumB float64
	var samples float64

	// Stride large images instead of visiting every pixel.
	stepX := width / 256
	if stepX < 1 {
		stepX = 1
	}
	stepY := height / 256
	if stepY < 1 {
		stepY = 1
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			sumR += float64(r >> 8)
			sumG += float64(g >> 8)
			sumB += float64(b >> 8)
			samples++
		}
	}

	out := visionSignals{Brightness: "unknown", Vibrancy: "medium", Composition: "unknown"}
	if samples == 0 {
		return out
	}

	meanR := sumR / samples
	meanG := sumG / samples
	meanB := sumB / samples

	brightness := (meanR + meanG + meanB) / 3
	switch {
	case brightness < 80:
		out.Brightness = "low"
	case brightness > 180:
		out.Brightness = "high"
	default:
		out.Brightness = "good"
	}

	spread := maxOf(meanR, meanG, meanB) - minOf(meanR, meanG, meanB)
	switch {
	case spread > 50:
		out.Vibrancy = "high"
	case spread > 25:
		out.Vibrancy = "medium"
	default:
		out.Vibrancy = "low"
	}

	if height > 0 {
		aspect := float64(width) / float64(height)
		switch {
		case aspect >= 0.9 && aspect <= 1.1:
			out.Composition = "square (good for Instagram)"
		case aspect >= 0.7 && aspect <= 0.85:
			out.Composition = "portrait (good for Stories)"
		case aspect >= 1.7 && aspect <= 1.85:
			out.Composition = "landscape (good for YouTube)"
		default:
			out.Composition = "non-standard ratio"
		}
	}

	return out
}

// riskLevel scores how likely the image is to underperform.
func riskLevel(s visionSignals) string {
	score := 0
	if !s.FaceDetected {
		score += 3
	}
	if s.Brightness == "low" || s.Brightness == "high" {
		score += 2
	}
	if s.Vibrancy == "low" {
		score++
	}

	switch {
	case score >= 4:
		return "High"
	case score >= 2:
		return "Medium"
	default:
		return "Low"
	}
}

func recommendFixes(s visionSignals) []string {
	var fixes []string

	if !s.FaceDetected {
		fixes = append(fixes, "Add a face to the image - faces increase engagement by 38%")
	}
	switch s.Brightness {
	case "low":
		fixes = append(fixes, "Increase brightness/exposure - dark images get less attention")
	case "high":
		fixes = append(fixes, "Reduce highlights - overexposed images feel amateur")
	}
	if s.Vibrancy == "low" {
		fixes = append(fixes, "Add more vibrant colors or increase saturation")
	}

	if len(fixes) == 0 {
		fixes = append(fixes, "Image looks good! Ready to post.")
	}
	return fixes
}

func maxOf(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minOf(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

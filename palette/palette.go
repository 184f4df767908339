// Package palette extracts dominant colors from raster images with a small
// k-means clustering pass. The output feeds the Palette field of analysis
// results, so a pasted design gets a color summary without an AI round trip.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// maxSamples caps how many pixels the clustering looks at. Sampling on a
// grid is plenty for a palette; full-resolution scans just burn time.
const maxSamples = 4096

const maxIterations = 32

// Extract returns the k dominant colors of img, most common first.
func Extract(img image.Image, k int) ([]color.RGBA, error) {
	if k <= 0 {
		return nil, fmt.Errorf("palette: k must be positive, got %d", k)
	}
	samples := samplePixels(img)
	if len(samples) == 0 {
		return nil, fmt.Errorf("palette: empty image")
	}
	if len(samples) < k {
		k = len(samples)
	}

	centers := initialCenters(samples, k)
	assign := make([]int, len(samples))
	for iter := 0; iter < maxIterations; iter++ {
		if !assignClusters(samples, centers, assign) && iter > 0 {
			break
		}
		recomputeCenters(samples, centers, assign)
	}

	return rankedColors(centers, assign), nil
}

// ExtractHex is Extract with hex-encoded output, the shape analysis results
// carry.
func ExtractHex(img image.Image, k int) ([]string, error) {
	colors, err := Extract(img, k)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = Hex(c)
	}
	return out, nil
}

// Hex encodes a color as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// samplePixels reads opaque-ish pixels on a grid, as RGB points.
func samplePixels(img image.Image) [][3]float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	stride := 1
	for (w/stride)*(h/stride) > maxSamples {
		stride++
	}

	var samples [][3]float64
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			r, g, bl, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue // transparent pixels say nothing about the palette
			}
			samples = append(samples, [3]float64{
				float64(r >> 8), float64(g >> 8), float64(bl >> 8),
			})
		}
	}
	return samples
}

// initialCenters spreads the starting centers over the samples: the first is
// the first sample, each next is the sample farthest from all chosen so far.
// Deterministic, which keeps extraction stable across runs.
func initialCenters(samples [][3]float64, k int) [][3]float64 {
	centers := make([][3]float64, 0, k)
	centers = append(centers, samples[0])
	for len(centers) < k {
		var best [3]float64
		bestDist := -1.0
		for _, s := range samples {
			d := nearestDistance(s, centers)
			if d > bestDist {
				bestDist = d
				best = s
			}
		}
		centers = append(centers, best)
	}
	return centers
}

func nearestDistance(s [3]float64, centers [][3]float64) float64 {
	best := -1.0
	for _, c := range centers {
		d := floats.Distance(s[:], c[:], 2)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// assignClusters assigns each sample to its nearest center. Reports whether
// any assignment changed.
func assignClusters(samples [][3]float64, centers [][3]float64, assign []int) bool {
	changed := false
	for i, s := range samples {
		best := 0
		bestDist := floats.Distance(s[:], centers[0][:], 2)
		for ci := 1; ci < len(centers); ci++ {
			if d := floats.Distance(s[:], centers[ci][:], 2); d < bestDist {
				best, bestDist = ci, d
			}
		}
		if assign[i] != best {
			assign[i] = best
			changed = true
		}
	}
	return changed
}

func recomputeCenters(samples [][3]float64, centers [][3]float64, assign []int) {
	sums := make([][3]float64, len(centers))
	counts := make([]int, len(centers))
	for i, s := range samples {
		ci := assign[i]
		floats.Add(sums[ci][:], s[:])
		counts[ci]++
	}
	for ci := range centers {
		if counts[ci] == 0 {
			continue // empty cluster keeps its old center
		}
		for d := 0; d < 3; d++ {
			centers[ci][d] = sums[ci][d] / float64(counts[ci])
		}
	}
}

// rankedColors orders the centers by cluster population, dropping empties.
func rankedColors(centers [][3]float64, assign []int) []color.RGBA {
	counts := make([]int, len(centers))
	for _, ci := range assign {
		counts[ci]++
	}
	order := make([]int, len(centers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	var out []color.RGBA
	for _, ci := range order {
		if counts[ci] == 0 {
			continue
		}
		c := centers[ci]
		out = append(out, color.RGBA{
			R: uint8(c[0] + 0.5), G: uint8(c[1] + 0.5), B: uint8(c[2] + 0.5), A: 0xff,
		})
	}
	return out
}

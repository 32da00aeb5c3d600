package dashboard

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRateBounds(t *testing.T) {
	lo, hi := rateBounds(nil)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi, "flat-zero series still gets a drawable range")

	lo, hi = rateBounds([]float64{0, 0, 0})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	lo, hi = rateBounds([]float64{3, 9, 6})
	assert.Equal(t, 0.0, lo, "rate floor stays pinned at zero")
	assert.Equal(t, 9.0, hi)
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, Sparkline(nil, 10))
	assert.Empty(t, Sparkline([]float64{1, 2}, 0))

	out := []rune(Sparkline([]float64{0, 50, 100}, 3))
	assert.Len(t, out, 3)
	assert.Equal(t, '▁', out[0])
	assert.Equal(t, '█', out[2])

	assert.Equal(t, "▁▁▁▁", Sparkline([]float64{0, 0, 0, 0}, 4))
}

func TestSparklineResamplesToWidth(t *testing.T) {
	data := make([]float64, 60)
	for i := range data {
		data[i] = float64(i)
	}

	assert.Len(t, []rune(Sparkline(data, 12)), 12)
	assert.Len(t, []rune(Sparkline(data[:5], 12)), 12)
}

func TestStyledSparkline(t *testing.T) {
	assert.Empty(t, StyledSparkline(nil, 10, ColorRx))

	out := StyledSparkline([]float64{1, 2, 3}, 3, ColorRx)
	assert.Equal(t, 3, lipgloss.Width(out))
}

func TestResampleData(t *testing.T) {
	assert.Nil(t, resampleData(nil, 10))
	assert.Nil(t, resampleData([]float64{1}, 0))

	same := []float64{1, 2, 3}
	assert.Equal(t, same, resampleData(same, 3))

	assert.Equal(t, []float64{7, 7, 7, 7}, resampleData([]float64{7}, 4))

	// Downsampling keeps the peak visible.
	down := resampleData([]float64{0, 0, 100, 0, 0, 0, 0, 0}, 4)
	assert.Len(t, down, 4)
	peak := 0.0
	for _, v := range down {
		if v > peak {
			peak = v
		}
	}
	assert.Equal(t, 100.0, peak)

	// Upsampling interpolates between the endpoints.
	up := resampleData([]float64{0, 10}, 5)
	assert.Len(t, up, 5)
	assert.Equal(t, 0.0, up[0])
	assert.InDelta(t, 5.0, up[2], 0.001)
	assert.Equal(t, 10.0, up[4])
}

func TestBrailleSparkline(t *testing.T) {
	assert.Empty(t, BrailleSparkline(nil, 10, 2, ColorRx))
	assert.Empty(t, BrailleSparkline([]float64{1}, 0, 2, ColorRx))

	out := BrailleSparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4, 2, ColorRx)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 4, lipgloss.Width(line))
	}
}

func TestGradientBar(t *testing.T) {
	bar := GradientBar(10, 50)
	assert.Equal(t, 10, lipgloss.Width(bar))
	assert.Contains(t, bar, "█")
	assert.Contains(t, bar, "░")

	assert.NotContains(t, GradientBar(10, 100), "░")
	assert.NotContains(t, GradientBar(10, 0), "█")
	assert.Equal(t, 10, lipgloss.Width(GradientBar(10, 150)), "overflow is clamped")
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, 0.5, normalizeValue(5, 5, 5))
	assert.Equal(t, 0.0, normalizeValue(0, 0, 10))
	assert.Equal(t, 1.0, normalizeValue(10, 0, 10))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, clampInt(-3, 7))
	assert.Equal(t, 7, clampInt(9, 7))
	assert.Equal(t, 4, clampInt(4, 7))
}

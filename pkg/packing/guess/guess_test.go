package guess

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"zero", Zero, false},
		{"Random", Random, false},
		{" grid ", Grid, false},
		{"hex", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New(Strategy("spiral"), 1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

// TestGenerateProperties checks, for random domains and circle counts up to a
// few hundred, that every strategy returns exactly n points inside the domain.
func TestGenerateProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := range 60 {
		x0 := rng.Float64()*200 - 100
		y0 := rng.Float64()*200 - 100
		d := packing.Domain{
			XMin: x0, XMax: x0 + 0.01 + rng.Float64()*50,
			YMin: y0, YMax: y0 + 0.01 + rng.Float64()*50,
		}
		n := 1 + rng.IntN(300)
		spec, err := packing.NewSpec(d, n)
		require.NoError(t, err)

		for _, s := range Strategies {
			gen, err := New(s, uint64(trial))
			require.NoError(t, err)

			pts, err := gen.Generate(spec)
			require.NoError(t, err, "strategy %s n=%d", s, n)
			require.Len(t, pts, n, "strategy %s", s)
			for _, p := range pts {
				assert.True(t, d.Contains(p.X, p.Y), "strategy %s: point %+v outside %+v", s, p, d)
			}
		}
	}
}

func TestZeroClipsOrigin(t *testing.T) {
	tests := []struct {
		name   string
		domain packing.Domain
		want   packing.Circle
	}{
		{"origin inside", packing.DefaultDomain, packing.Circle{X: 0, Y: 0}},
		{"positive quadrant", packing.Domain{XMin: 2, XMax: 5, YMin: 3, YMax: 4}, packing.Circle{X: 2, Y: 3}},
		{"negative quadrant", packing.Domain{XMin: -5, XMax: -2, YMin: -4, YMax: -1}, packing.Circle{X: -2, Y: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, _ := packing.NewSpec(tt.domain, 3)
			pts, err := zeroGenerator{}.Generate(spec)
			require.NoError(t, err)
			for _, p := range pts {
				assert.Equal(t, tt.want, p)
			}
		})
	}
}

func TestGridDim(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {1, 1}, {2, 2}, {4, 2}, {5, 3}, {9, 3}, {10, 4}, {99, 10}, {100, 10}, {101, 11}, {10000, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GridDim(tt.n), "GridDim(%d)", tt.n)
	}
}

func TestGridPoints(t *testing.T) {
	d := packing.Domain{XMin: 0, XMax: 4, YMin: 0, YMax: 8}
	pts, err := GridPoints(d, 3)
	require.NoError(t, err)
	require.Len(t, pts, 9)

	assert.Equal(t, packing.Circle{X: 1, Y: 2}, pts[0])
	assert.Equal(t, packing.Circle{X: 3, Y: 2}, pts[2])
	assert.Equal(t, packing.Circle{X: 3, Y: 6}, pts[8])
	for _, p := range pts {
		assert.True(t, p.X > d.XMin && p.X < d.XMax && p.Y > d.YMin && p.Y < d.YMax, "point %+v on boundary", p)
	}

	_, err = GridPoints(d, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeGeneration))
}

func TestGridPointsBelowPrecision(t *testing.T) {
	d := packing.Domain{XMin: 1e16, XMax: 1e16 + 4, YMin: 0, YMax: 10}

	_, err := GridPoints(d, 10)
	assert.True(t, errors.Is(err, errors.ErrCodeGeneration), "got %v", err)

	spec, err := packing.NewSpec(d, 100)
	require.NoError(t, err)
	_, err = gridGenerator{seed: 1}.Generate(spec)
	assert.True(t, errors.Is(err, errors.ErrCodeGeneration), "got %v", err)

	// The same width away from the large offset is fine.
	pts, err := GridPoints(packing.Domain{XMin: 0, XMax: 4, YMin: 0, YMax: 10}, 10)
	require.NoError(t, err)
	assert.Len(t, pts, 100)
}

func TestGridSamplesDistinctPoints(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 16, 17, 50, 250} {
		spec, _ := packing.NewSpec(packing.DefaultDomain, n)
		dim := GridDim(n)

		cells, err := GridPoints(spec.Domain(), dim)
		require.NoError(t, err)
		assert.Len(t, cells, dim*dim)

		pts, err := gridGenerator{seed: 42}.Generate(spec)
		require.NoError(t, err)
		require.Len(t, pts, n)

		onGrid := make(map[packing.Circle]bool, len(cells))
		for _, c := range cells {
			onGrid[c] = true
		}
		seen := make(map[packing.Circle]bool, n)
		for _, p := range pts {
			assert.True(t, onGrid[p], "n=%d: %+v is not a grid point", n, p)
			assert.False(t, seen[p], "n=%d: %+v sampled twice", n, p)
			seen[p] = true
		}
	}
}

func TestDeterminism(t *testing.T) {
	spec, _ := packing.NewSpec(packing.Domain{XMin: -1, XMax: 7, YMin: 2, YMax: 3}, 23)

	for _, s := range []Strategy{Random, Grid} {
		t.Run(string(s), func(t *testing.T) {
			a, _ := New(s, 1234)
			b, _ := New(s, 1234)
			c, _ := New(s, 1235)

			pa, err := a.Generate(spec)
			require.NoError(t, err)
			pb, _ := b.Generate(spec)
			pc, _ := c.Generate(spec)

			assert.Equal(t, pa, pb, "same seed must reproduce output")
			assert.NotEqual(t, pa, pc, "different seeds should differ")

			again, _ := a.Generate(spec)
			assert.Equal(t, pa, again, "generator must not carry state between calls")
		})
	}
}

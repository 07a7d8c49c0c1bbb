package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPixels(r *rand.Rand, w, h int) []byte {
	pix := make([]byte, w*h*Channels)
	for i := range pix {
		pix[i] = byte(r.Intn(256))
	}
	return pix
}

func TestIndexMapsAreBijective(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {2, 3}, {7, 5}, {16, 16}} {
		w, h := dims[0], dims[1]
		n := w * h * Channels

		seenInterleaved := make([]bool, n)
		seenPlanar := make([]bool, n)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for c := 0; c < Channels; c++ {
					i := InterleavedIndex(y, x, c, w)
					p := PlanarIndex(c, y, x, h, w)
					require.True(t, i >= 0 && i < n, "interleaved index out of range")
					require.True(t, p >= 0 && p < n, "planar index out of range")
					assert.False(t, seenInterleaved[i], "interleaved index %d hit twice", i)
					assert.False(t, seenPlanar[p], "planar index %d hit twice", p)
					seenInterleaved[i] = true
					seenPlanar[p] = true
				}
			}
		}
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		w, h := 1+r.Intn(40), 1+r.Intn(40)
		pix := randomPixels(r, w, h)

		planar, err := FromInterleaved(pix, w, h, true)
		require.NoError(t, err)
		assert.Equal(t, Shape{N: 1, C: 3, H: h, W: w}, planar.Shape)
		assert.Equal(t, Planar, planar.Layout)

		back, err := planar.ToInterleaved()
		require.NoError(t, err)
		require.Len(t, back, len(pix))
		for i := range pix {
			diff := int(pix[i]) - int(back[i])
			assert.True(t, diff >= 0 && diff <= 1, "byte %d: %d -> %d", i, pix[i], back[i])
		}
	}
}

func TestFromInterleavedPlacesChannelsInPlanes(t *testing.T) {
	// 2x1 image: (10,20,30) (40,50,60)
	pix := []byte{10, 20, 30, 40, 50, 60}
	planar, err := FromInterleaved(pix, 2, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 40, 20, 50, 30, 60}, planar.Data)
}

func TestFromInterleavedRejectsShortBuffer(t *testing.T) {
	_, err := FromInterleaved(make([]byte, 5), 2, 1, true)
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)

	_, err = FromInterleaved(nil, 0, 4, true)
	assert.Error(t, err)
}

func TestToInterleavedClampsAndTruncates(t *testing.T) {
	planar, err := FromData(Shape{N: 1, C: 3, H: 1, W: 1}, Planar, []float32{-0.5, 1.7, 0.65})
	require.NoError(t, err)

	pix, err := planar.ToInterleaved()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255, 165}, pix)
}

func TestCompositeStaysInUnitRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	shape := Shape{N: 1, C: 3, H: 8, W: 8}
	for iter := 0; iter < 200; iter++ {
		in, refined, blend := New(shape, Planar), New(shape, Planar), New(shape, Planar)
		for i := range in.Data {
			in.Data[i] = r.Float32()
			refined.Data[i] = r.Float32()*4 - 2
			blend.Data[i] = r.Float32()*6 - 3
		}

		out, err := Composite(in, refined, blend)
		require.NoError(t, err)
		for i, v := range out.Data {
			require.True(t, v >= 0 && v <= 1, "element %d = %v", i, v)
		}
	}
}

func TestCompositeBoundaries(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	shape := Shape{N: 1, C: 3, H: 4, W: 5}
	in, refined := New(shape, Planar), New(shape, Planar)
	for i := range in.Data {
		in.Data[i] = r.Float32()
		refined.Data[i] = r.Float32()
	}

	out, err := Composite(in, refined, Full(shape, Planar, 0))
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)

	out, err = Composite(in, refined, Full(shape, Planar, 1))
	require.NoError(t, err)
	assert.Equal(t, refined.Data, out.Data)
}

func TestCompositeBlendsMidGray(t *testing.T) {
	shape := Shape{N: 1, C: 3, H: 128, W: 128}
	out, err := Composite(
		Full(shape, Planar, 0.5),
		Full(shape, Planar, 0.8),
		Full(shape, Planar, 0.5),
	)
	require.NoError(t, err)
	for _, v := range out.Data {
		require.InDelta(t, 0.65, v, 1e-6)
	}
}

func TestCompositeTreatsNaNBlendAsZero(t *testing.T) {
	shape := Shape{N: 1, C: 1, H: 1, W: 1}
	out, err := Composite(
		Full(shape, Planar, 0.25),
		Full(shape, Planar, 0.75),
		Full(shape, Planar, float32(math.NaN())),
	)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), out.Data[0])
}

func TestCompositeRejectsMismatchedLengths(t *testing.T) {
	a := New(Shape{N: 1, C: 3, H: 2, W: 2}, Planar)
	b := New(Shape{N: 1, C: 3, H: 2, W: 3}, Planar)

	_, err := Composite(a, b, a)
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)

	_, err = Composite(a, a, b)
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)
}

func TestShapeFromDims(t *testing.T) {
	s, err := ShapeFromDims([]int{1, 3, 128, 128})
	require.NoError(t, err)
	assert.Equal(t, 3*128*128, s.Len())
	assert.Equal(t, []int64{1, 3, 128, 128}, s.Dims())

	_, err = ShapeFromDims([]int{3, 128, 128})
	assert.Error(t, err)
}

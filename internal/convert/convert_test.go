package convert

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rtm0/patchgrid/internal/config"
	"github.com/rtm0/patchgrid/internal/grid"
	"github.com/rtm0/patchgrid/internal/ncio"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fill = -9999.0

type memSource struct {
	schema *ncio.Schema
	data   map[string]*sparse.DenseArray
	closed int
}

func (m *memSource) Schema() *ncio.Schema { return m.schema }

func (m *memSource) Read(name string) (*sparse.DenseArray, error) {
	a, ok := m.data[name]
	if !ok {
		return nil, errors.New("no data for " + name)
	}
	c := sparse.ZerosDense(a.Shape...)
	copy(c.Elements, a.Elements)
	return c, nil
}

func (m *memSource) Close() error {
	m.closed++
	return nil
}

type memSink struct {
	path   string
	schema *ncio.Schema
	data   map[string]*sparse.DenseArray
	closed int
}

func (m *memSink) Write(name string, data *sparse.DenseArray) error {
	m.data[name] = data
	return nil
}

func (m *memSink) Close() error {
	m.closed++
	return nil
}

// harness wires an in-memory source and sink into an Env.
type harness struct {
	src    *memSource
	sink   *memSink
	opened int
	logs   bytes.Buffer
}

func (h *harness) env(cfg config.Config) Env {
	return Env{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(&h.logs, nil)),
		Open: func(path string) (Source, error) {
			h.opened++
			return h.src, nil
		},
		Create: func(path string, s *ncio.Schema) (Sink, error) {
			h.sink = &memSink{path: path, schema: s, data: make(map[string]*sparse.DenseArray)}
			return h.sink, nil
		},
		History: "Mon Jan  2 15:04:05 2006: patchgrid test",
	}
}

type testVar struct {
	name string
	dims []string
	vals []float64
}

func newSource(dims []ncio.Dim, vars ...testVar) *memSource {
	s := &ncio.Schema{Format: ncio.FormatOffset64, Dims: dims}
	data := make(map[string]*sparse.DenseArray)
	for _, v := range vars {
		s.Vars = append(s.Vars, ncio.Variable{Name: v.name, Type: ncio.TypeDouble, Dims: v.dims, Fill: fill})
	}
	s.UpdateShapes()
	for i, v := range vars {
		a := sparse.ZerosDense(s.Vars[i].Shape...)
		copy(a.Elements, v.vals)
		data[v.name] = a
	}
	return &memSource{schema: s, data: data}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Input = "cru_out_casa.nc"
	return cfg
}

func casaSource() *memSource {
	return newSource(
		[]ncio.Dim{{Name: "time", Len: 2}, {Name: "land", Len: 3}},
		testVar{"time", []string{"time"}, []float64{0, 1}},
		testVar{"latitude", []string{"land"}, []float64{10, 10, 20}},
		testVar{"longitude", []string{"land"}, []float64{100, 100, 110}},
		testVar{"patchfrac", []string{"time", "land"}, []float64{0.4, 0.6, 1, 0.4, 0.6, 1}},
		testVar{"area_gridcell", []string{"land"}, []float64{1, 2, 3}},
		testVar{"biomass", []string{"land"}, []float64{1, 2, 5}},
		testVar{"gpp", []string{"time", "land"}, []float64{1, 2, 5, 2, 2, 2}},
	)
}

func TestSumPatches(t *testing.T) {
	h := &harness{src: casaSource()}
	require.NoError(t, SumPatches(context.Background(), h.env(testConfig())))

	require.NotNil(t, h.sink)
	assert.Equal(t, "cru_out_casa-no_patch.nc", h.sink.path)
	assert.Equal(t, 1, h.src.closed)
	assert.Equal(t, 1, h.sink.closed)

	land, ok := h.sink.schema.Dim("land")
	require.True(t, ok)
	assert.Equal(t, 2, land.Len)
	hist := h.sink.schema.Attrs[len(h.sink.schema.Attrs)-1]
	assert.Equal(t, "history", hist.Name)

	out := h.sink.data
	assert.Equal(t, []float64{0, 1}, out["time"].Elements)
	assert.Equal(t, []float64{10, 20}, out["latitude"].Elements)
	assert.Equal(t, []float64{100, 110}, out["longitude"].Elements)
	assert.Equal(t, []float64{3, 3}, out["area_gridcell"].Elements)
	assert.InDeltaSlice(t, []float64{1.6, 5.0}, out["biomass"].Elements, 1e-12)
	assert.Equal(t, []int{2, 2}, out["gpp"].Shape)
	assert.InDeltaSlice(t, []float64{1.6, 5, 2, 2}, out["gpp"].Elements, 1e-12)
}

func TestSumPatchesIgnoresRegion(t *testing.T) {
	h := &harness{src: casaSource()}
	cfg := testConfig()
	cfg.Region = "europe"
	require.NoError(t, SumPatches(context.Background(), h.env(cfg)))
	require.NotNil(t, h.sink)
	assert.InDeltaSlice(t, []float64{1.6, 5.0}, h.sink.data["biomass"].Elements, 1e-12)
}

func TestSumPatchesIdentityWithoutSharedPoints(t *testing.T) {
	src := newSource(
		[]ncio.Dim{{Name: "time", Len: 2}, {Name: "land", Len: 3}},
		testVar{"latitude", []string{"land"}, []float64{10, 11, 12}},
		testVar{"longitude", []string{"land"}, []float64{100, 100, 100}},
		testVar{"patchfrac", []string{"time", "land"}, []float64{1, 1, 1, 1, 1, 1}},
		testVar{"area_gridcell", []string{"land"}, []float64{4, 5, 6}},
		testVar{"gpp", []string{"time", "land"}, []float64{1.5, 2.5, 3.5, 4.5, 5.5, 6.5}},
	)
	h := &harness{src: src}
	require.NoError(t, SumPatches(context.Background(), h.env(testConfig())))
	for name, in := range src.data {
		assert.Equal(t, in.Shape, h.sink.data[name].Shape, name)
		assert.Equal(t, in.Elements, h.sink.data[name].Elements, name)
	}
}

func TestSumPatchesMissingFraction(t *testing.T) {
	src := newSource(
		[]ncio.Dim{{Name: "land", Len: 2}},
		testVar{"latitude", []string{"land"}, []float64{1, 1}},
		testVar{"longitude", []string{"land"}, []float64{2, 2}},
	)
	h := &harness{src: src}
	err := SumPatches(context.Background(), h.env(testConfig()))
	assert.ErrorIs(t, err, ErrMissingVariable)
	assert.Nil(t, h.sink, "output must not be created")
	assert.Equal(t, 1, src.closed)
}

func TestSumPatchesNoInput(t *testing.T) {
	h := &harness{src: casaSource()}
	cfg := testConfig()
	cfg.Input = ""
	assert.ErrorIs(t, SumPatches(context.Background(), h.env(cfg)), config.ErrNoInput)
	assert.Zero(t, h.opened)
}

func TestSumPatchesLandAxisNotLast(t *testing.T) {
	src := casaSource()
	src.schema.Vars = append(src.schema.Vars, ncio.Variable{Name: "bad", Type: ncio.TypeDouble, Dims: []string{"land", "time"}, Shape: []int{3, 2}})
	h := &harness{src: src}
	assert.ErrorIs(t, SumPatches(context.Background(), h.env(testConfig())), ErrLandAxis)
	assert.Nil(t, h.sink)
}

func TestSumPatchesProgress(t *testing.T) {
	h := &harness{src: casaSource()}
	cfg := testConfig()
	cfg.Verbose = true
	require.NoError(t, SumPatches(context.Background(), h.env(cfg)))
	assert.Contains(t, h.logs.String(), "msg=progress copied=14%")
	assert.Contains(t, h.logs.String(), "msg=Finished")
}

func reducedSource(dims []ncio.Dim, extra ...testVar) *memSource {
	vars := []testVar{
		{"latitude", []string{"land"}, []float64{5, 3}},
		{"longitude", []string{"land"}, []float64{12, 9}},
		{"biomass", []string{"land"}, []float64{1.6, 5.0}},
		{"gpp", []string{"time", "land"}, []float64{1, 2, 3, 4}},
	}
	return newSource(dims, append(vars, extra...)...)
}

func TestGrid2DExistingGrid(t *testing.T) {
	ys := make([]float64, 8)
	for i := range ys {
		ys[i] = float64(i)
	}
	xs := make([]float64, 15)
	for i := range xs {
		xs[i] = float64(i)
	}
	src := reducedSource(
		[]ncio.Dim{{Name: "time", Len: 2}, {Name: "land", Len: 2}, {Name: "y", Len: 8}, {Name: "x", Len: 15}},
		testVar{"y", []string{"y"}, ys},
		testVar{"x", []string{"x"}, xs},
	)
	h := &harness{src: src}
	require.NoError(t, Grid2D(context.Background(), h.env(testConfig())))
	assert.Equal(t, "cru_out_casa-2d.nc", h.sink.path)
	assert.Equal(t, 1, src.closed)
	assert.Equal(t, 1, h.sink.closed)

	_, hasLand := h.sink.schema.Dim("land")
	assert.False(t, hasLand)
	bv, ok := h.sink.schema.Var("biomass")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "x"}, bv.Dims)
	assert.Equal(t, []int{8, 15}, bv.Shape)

	biomass := h.sink.data["biomass"]
	for r := 0; r < 8; r++ {
		for c := 0; c < 15; c++ {
			switch {
			case r == 5 && c == 12:
				assert.Equal(t, 1.6, biomass.Get(r, c))
			case r == 3 && c == 9:
				assert.Equal(t, 5.0, biomass.Get(r, c))
			default:
				assert.Equal(t, fill, biomass.Get(r, c))
			}
		}
	}

	gpp := h.sink.data["gpp"]
	assert.Equal(t, []int{2, 8, 15}, gpp.Shape)
	assert.Equal(t, 1.0, gpp.Get(0, 5, 12))
	assert.Equal(t, 4.0, gpp.Get(1, 3, 9))

	lat := h.sink.data["latitude"]
	assert.Equal(t, []int{8, 15}, lat.Shape)
	assert.Equal(t, 7.0, lat.Get(7, 0))
	assert.Equal(t, 14.0, h.sink.data["longitude"].Get(0, 14))
	assert.Equal(t, xs, h.sink.data["x"].Elements)
}

func TestGrid2DSynthesizedGrid(t *testing.T) {
	src := newSource(
		[]ncio.Dim{{Name: "land", Len: 2}},
		testVar{"latitude", []string{"land"}, []float64{-43.75, -43.25}},
		testVar{"longitude", []string{"land"}, []float64{110.25, 110.75}},
		testVar{"biomass", []string{"land"}, []float64{7, 8}},
	)
	h := &harness{src: src}
	cfg := testConfig()
	cfg.Workers = 2
	require.NoError(t, Grid2D(context.Background(), h.env(cfg)))

	y, ok := h.sink.schema.Dim("y")
	require.True(t, ok)
	x, ok := h.sink.schema.Dim("x")
	require.True(t, ok)
	assert.Equal(t, 68, y.Len)
	assert.Equal(t, 90, x.Len)

	biomass := h.sink.data["biomass"]
	assert.Equal(t, 7.0, biomass.Get(0, 0))
	assert.Equal(t, 8.0, biomass.Get(1, 1))
	assert.Equal(t, fill, biomass.Get(1, 0))
	assert.InDelta(t, -43.75, h.sink.data["latitude"].Get(0, 5), 1e-9)
}

func TestGrid2DUsesLocalCoordinates(t *testing.T) {
	src := newSource(
		[]ncio.Dim{{Name: "land", Len: 2}, {Name: "y", Len: 2}, {Name: "x", Len: 2}},
		testVar{"y", []string{"y"}, []float64{0, 1}},
		testVar{"x", []string{"x"}, []float64{0, 1}},
		testVar{"local_lat", []string{"land"}, []float64{1, 0}},
		testVar{"local_lon", []string{"land"}, []float64{0, 1}},
		testVar{"latitude", []string{"land"}, []float64{0, 0}},
		testVar{"longitude", []string{"land"}, []float64{0, 0}},
		testVar{"biomass", []string{"land"}, []float64{7, 8}},
	)
	h := &harness{src: src}
	require.NoError(t, Grid2D(context.Background(), h.env(testConfig())))
	assert.Equal(t, []float64{fill, 8, 7, fill}, h.sink.data["biomass"].Elements)
	assert.Equal(t, []float64{fill, 0, 1, fill}, h.sink.data["local_lat"].Elements)
}

func TestGrid2DUnknownRegion(t *testing.T) {
	h := &harness{src: reducedSource([]ncio.Dim{{Name: "time", Len: 2}, {Name: "land", Len: 2}})}
	cfg := testConfig()
	cfg.Region = "europe"
	assert.ErrorIs(t, Grid2D(context.Background(), h.env(cfg)), grid.ErrUnknownRegion)
	assert.Zero(t, h.opened)
	assert.Nil(t, h.sink)
}

func TestGrid2DDegenerateCoordinates(t *testing.T) {
	src := newSource(
		[]ncio.Dim{{Name: "land", Len: 2}},
		testVar{"latitude", []string{"land"}, []float64{1, 2}},
		testVar{"longitude", []string{"land"}, []float64{3, 3}},
	)
	h := &harness{src: src}
	assert.ErrorIs(t, Grid2D(context.Background(), h.env(testConfig())), grid.ErrDegenerateCoordinates)
	assert.Nil(t, h.sink)
	assert.Equal(t, 1, src.closed)
}

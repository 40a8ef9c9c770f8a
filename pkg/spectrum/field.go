package spectrum

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/model"
)

// Hamiltonian is a model that yields its Bloch matrix at a momentum.
// Implementations must be safe for concurrent use.
type Hamiltonian interface {
	Hamiltonian(k r2.Vec) (*mat.CDense, error)
}

// EigenField holds the spectrum at every point of an N x N momentum grid.
// Grid point (ix, iy) sits at k = ix/(N-1) b1 + iy/(N-1) b2.
//
// Storage is flat: Values is indexed [ix][iy][band] and Vectors
// [ix][iy][band][site]. Once Compute returns, the field is read-only.
type EigenField struct {
	Bands   int          `json:"bands"`
	Samples int          `json:"samples"`
	Values  []float64    `json:"values"`
	Vectors []complex128 `json:"-"`
}

// NewEigenField allocates an empty field.
func NewEigenField(bands, samples int) *EigenField {
	points := samples * samples
	return &EigenField{
		Bands:   bands,
		Samples: samples,
		Values:  make([]float64, points*bands),
		Vectors: make([]complex128, points*bands*bands),
	}
}

func (f *EigenField) point(ix, iy int) int { return ix*f.Samples + iy }

// Dims returns the number of bands and the samples per grid direction.
func (f *EigenField) Dims() (bands, samples int) { return f.Bands, f.Samples }

// Value returns the energy of band at (ix, iy).
func (f *EigenField) Value(band, ix, iy int) float64 {
	return f.Values[f.point(ix, iy)*f.Bands+band]
}

// Vector returns the eigenvector of band at (ix, iy). The slice aliases
// the field's storage and must not be modified.
func (f *EigenField) Vector(band, ix, iy int) []complex128 {
	off := (f.point(ix, iy)*f.Bands + band) * f.Bands
	return f.Vectors[off : off+f.Bands : off+f.Bands]
}

// Band returns the energies of one band as a [ix][iy] grid.
func (f *EigenField) Band(band int) [][]float64 {
	out := make([][]float64, f.Samples)
	for ix := range out {
		out[ix] = make([]float64, f.Samples)
		for iy := range out[ix] {
			out[ix][iy] = f.Value(band, ix, iy)
		}
	}
	return out
}

func (f *EigenField) set(ix, iy int, e Eigen) {
	p := f.point(ix, iy)
	copy(f.Values[p*f.Bands:], e.Values)
	for b, v := range e.Vectors {
		copy(f.Vectors[(p*f.Bands+b)*f.Bands:], v)
	}
}

// Options controls Compute.
type Options struct {
	Samples  int                   // points per grid direction, at least 2
	Workers  int                   // concurrent diagonalizations; 0 means runtime.NumCPU()
	Progress func(done, total int) // optional; called concurrently
}

// Compute diagonalizes h on the N x N grid spanned by the reciprocal
// vectors of cell. Each grid point is an independent task; cancelling ctx
// stops scheduling new points.
func Compute(ctx context.Context, h Hamiltonian, cell model.UnitCell, opts Options) (*EigenField, error) {
	if err := errors.ValidateSamples(opts.Samples); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	n := opts.Samples
	field := NewEigenField(cell.Bands, n)
	total := n * n
	step := 1 / float64(n-1)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

schedule:
	for ix := 0; ix < n; ix++ {
		for iy := 0; iy < n; iy++ {
			if gctx.Err() != nil {
				break schedule
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				k := cell.Momentum(r2.Vec{X: float64(ix) * step, Y: float64(iy) * step})
				m, err := h.Hamiltonian(k)
				if err != nil {
					return err
				}
				if r, _ := m.Dims(); r != cell.Bands {
					return errors.New(errors.ErrCodeInternal, "Hamiltonian has %d rows, unit cell has %d bands", r, cell.Bands)
				}
				e, err := Hermitian(m)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "diagonalize at grid point (%d, %d)", ix, iy)
				}
				field.set(ix, iy, e)
				if opts.Progress != nil {
					opts.Progress(int(done.Add(1)), total)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return field, nil
}

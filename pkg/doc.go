// Package pkg provides the libraries behind hofstadter: tight-binding
// lattices in a uniform magnetic field, their band structures and
// topological invariants, and the Hofstadter butterfly.
//
// # Overview
//
// A lattice threaded by a rational flux n_phi = p/q per plaquette has a
// magnetic unit cell q times larger than the crystal cell, and a q x q
// (honeycomb: 2q x 2q) Bloch Hamiltonian at every crystal momentum. The
// pkg directory is organized along the flow of a run:
//
//  1. [lattice] - Geometries, hopping vectors and hopping paths
//  2. [hamiltonian] - Peierls phases and Bloch Hamiltonian assembly
//  3. [model] - The Hofstadter model: magnetic unit cell and H(k)
//  4. [spectrum] - Diagonalization over the Brillouin zone and along paths
//  5. [geometry] - Berry curvature, Chern numbers and Wannier centers
//  6. [butterfly] - Flux sweeps and gap labelling
//  7. [pipeline] - Orchestration (compute → invariants → render → save)
//
// # Architecture
//
//	flux p/q, lattice, hoppings t
//	         ↓
//	    [model] package (unit cell + Hamiltonian)
//	         ↓
//	    [spectrum] package (eigenvalues and eigenvectors on a k grid)
//	         ↓
//	    [geometry] package (curvature, Chern numbers, Wilson loops)
//	         ↓
//	    [render/chart] package (gonum/plot figures)
//	         ↓
//	    JSON bundle + SVG/PNG/PDF/EPS figures
//
// # Quick Start
//
//	h, _ := model.NewHofstadter(1, 4, model.WithHopping(1))
//	field, _ := spectrum.Compute(ctx, h, h.UnitCell(), spectrum.Options{Samples: 101})
//	c, _ := geometry.Chern(field, geometry.Select(0, 1))
//
// # Supporting Packages
//
// [io] reads and writes run bundles and their file names. [cache] keeps
// computed spectra and rendered figures (file or Redis), and [catalog]
// records every saved run (SQLite or MongoDB). [errors] carries the error
// codes shared by all packages, and [observability] lets a binary attach
// metrics to pipeline stages.
//
// [lattice]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/lattice
// [hamiltonian]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/hamiltonian
// [model]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/model
// [spectrum]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/spectrum
// [geometry]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/geometry
// [butterfly]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/butterfly
// [pipeline]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/pipeline
// [render/chart]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/render/chart
// [io]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/io
// [cache]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/cache
// [catalog]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/catalog
// [errors]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/errors
// [observability]: https://pkg.go.dev/github.com/qmatter/hofstadter/pkg/observability
package pkg

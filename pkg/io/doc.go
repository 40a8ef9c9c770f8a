// Package io saves and loads run bundles.
//
// # Overview
//
// A bundle is everything needed to redraw a run without recomputing it:
//
//	{
//	  "model": {"name": "Hofstadter", "p": 1, "q": 4, "a0": 1, "t": [1], "lattice": "square"},
//	  "args":  {"program": "band_structure", "samples": 101, "bgt": 0.01, "display": "3D"},
//	  "data":  {"field": {...}, "path": {...}, "sets": [...]},
//	  "meta":  {"id": "5d0c...", "created": "2026-01-02T15:04:05Z", "version": "v0.3.0"}
//	}
//
// Butterfly bundles carry "data.butterfly" instead of the field, path and
// band sets.
//
// # Complex numbers
//
// encoding/json has no complex type, so eigenvectors are written as
// [re, im] pairs in the same flat order the field stores them.
//
// # File names
//
// [FileName] derives the conventional name from the bundle contents:
//
//	band_structure_square_nphi_1_4_t_1.json
//	butterfly_honeycomb_q_97_t_1_col_avron_bluered.json
//
// and [ParseFileName] reverses it, which is how the CLI recognizes a bundle
// and its program before opening it.
//
// # Import and export
//
// [WriteJSON] and [ReadJSON] work on any io.Writer / io.Reader.
// [ExportJSON] and [ImportJSON] are the file-based wrappers; [Export]
// writes into a directory under [FileName].
package io

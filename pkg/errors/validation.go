package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxSamples bounds the momentum-grid resolution accepted from users.
// A 1001x1001 grid with q=50 already needs ~20 GB of eigenvectors.
const MaxSamples = 1001

// ValidateFlux checks that p/q is a usable flux density.
//
// The rules are:
//   - q must be at least 1 (it is the magnetic unit cell size)
//   - p must not be negative
//   - p and q must be coprime, otherwise the cell is not minimal
func ValidateFlux(p, q int) error {
	if q < 1 {
		return New(ErrCodeInvalidFlux, "flux denominator must be positive, got %d", q)
	}
	if p < 0 {
		return New(ErrCodeInvalidFlux, "flux numerator must not be negative, got %d", p)
	}
	if g := GCD(p, q); g != 1 {
		return New(ErrCodeInvalidFlux, "flux %d/%d is not a coprime fraction (gcd %d)", p, q, g)
	}
	return nil
}

// ValidateHopping checks a hopping-amplitude list in ascending neighbor order.
// At least one amplitude must be nonzero and every amplitude must be finite.
func ValidateHopping(t []float64) error {
	nonzero := false
	for i, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "hopping amplitude t%d is not finite", i+1)
		}
		if v != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		return New(ErrCodeNoHopping, "at least one nonzero hopping amplitude is required")
	}
	return nil
}

// ValidateSamples checks the number of momentum samples per grid direction.
// Two samples is the minimum that yields a plaquette.
func ValidateSamples(n int) error {
	if n < 2 {
		return New(ErrCodeInvalidInput, "at least 2 samples per direction are required, got %d", n)
	}
	if n > MaxSamples {
		return New(ErrCodeInvalidInput, "too many samples per direction (max %d), got %d", MaxSamples, n)
	}
	return nil
}

// ValidateBundleName validates a bundle file name for safety.
// It ensures the name is a plain basename with no path components,
// so that names parsed from catalogs cannot escape the data directory.
func ValidateBundleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "bundle name cannot be empty")
	}

	const maxNameLength = 255
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "bundle name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "bundle name contains invalid characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "bundle name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "bundle name cannot contain path traversal sequences (..)")
	}

	return nil
}

// GCD returns the greatest common divisor of |a| and |b|.
func GCD(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

package thresholdsig

import (
	"fmt"
)

// Polynomial is a polynomial over the curve's scalar field, held by a
// sharing party for the lifetime of one distribution round.
type Polynomial struct {
	curve        Curve
	coefficients []Scalar
}

// NewRandomPolynomial creates a random polynomial of the given degree with
// the supplied constant term, so that evaluating at 0 recovers the secret.
func NewRandomPolynomial(curve Curve, degree int, constantTerm Scalar) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree must be non-negative")
	}

	coefficients := make([]Scalar, degree+1)
	coefficients[0] = constantTerm

	for i := 1; i <= degree; i++ {
		coeff, err := curve.ScalarRandom()
		if err != nil {
			return nil, fmt.Errorf("failed to generate coefficient %d: %w", i, err)
		}
		coefficients[i] = coeff
	}

	return &Polynomial{
		curve:        curve,
		coefficients: coefficients,
	}, nil
}

// Evaluate evaluates the polynomial at x using Horner's method.
func (p *Polynomial) Evaluate(x Scalar) Scalar {
	if len(p.coefficients) == 0 {
		return p.curve.ScalarZero()
	}

	result := p.coefficients[len(p.coefficients)-1]
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		result = result.Mul(x).Add(p.coefficients[i])
	}

	return result
}

// CoefficientImages returns the base-point image of every coefficient, in
// order. The first image is the public image of the shared secret; the
// full sequence forms the Feldman commitments of a sharing round.
func (p *Polynomial) CoefficientImages() []Point {
	images := make([]Point, len(p.coefficients))
	for i, coeff := range p.coefficients {
		images[i] = p.curve.BasePoint().Mul(coeff)
	}
	return images
}

// Degree returns the degree of the polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Zeroize clears the polynomial coefficients.
func (p *Polynomial) Zeroize() {
	for _, coeff := range p.coefficients {
		if coeff != nil {
			coeff.Zeroize()
		}
	}
	for i := range p.coefficients {
		p.coefficients[i] = nil
	}
	p.coefficients = nil
}

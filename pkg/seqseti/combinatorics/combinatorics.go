// Package combinatorics computes the multiple-testing penalty applied to each
// candidate sequence: the number of ways n background triggers could fill a
// sequence of m slots with at least two of them taken by the anchor pair.
package combinatorics

import (
	"math"
	"math/big"
)

// Floor replaces a non-positive count before its logarithm is taken.
const Floor = 1e-20

// Count returns sum_{i=0}^{m-2} C(m,i) * P(n,m-i) exactly. P(n,k) is zero for
// k > n, so m may exceed n. Count is zero for m < 2.
func Count(m, n int) *big.Int {
	total := new(big.Int)
	if m < 2 || n < 0 {
		return total
	}

	// Walk i downwards so k = m-i grows from 2 and P(n,k) builds incrementally.
	perm := big.NewInt(int64(n))
	if n >= 1 {
		perm.Mul(perm, big.NewInt(int64(n-1)))
	}
	binom := new(big.Int)
	term := new(big.Int)
	for k := 2; k <= m; k++ {
		if k > 2 {
			perm.Mul(perm, big.NewInt(int64(n-k+1)))
		}
		if perm.Sign() <= 0 {
			break
		}
		binom.Binomial(int64(m), int64(m-k))
		term.Mul(binom, perm)
		total.Add(total, term)
	}
	return total
}

// Correction returns Count(m, n) as a float64, floored at Floor. Counts beyond
// the float64 range saturate to +Inf; use LogCorrection for the penalty.
func Correction(m, n int) float64 {
	c := Count(m, n)
	if c.Sign() <= 0 {
		return Floor
	}
	f, _ := new(big.Float).SetInt(c).Float64()
	return f
}

// LogCorrection returns the natural log of Count(m, n), or log(Floor) when the
// count is not positive.
func LogCorrection(m, n int) float64 {
	c := Count(m, n)
	if c.Sign() <= 0 {
		return math.Log(Floor)
	}
	mant := new(big.Float)
	exp := new(big.Float).SetInt(c).MantExp(mant)
	frac, _ := mant.Float64()
	return math.Log(frac) + float64(exp)*math.Ln2
}

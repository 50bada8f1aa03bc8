package sequence

import (
	"fmt"
	"strings"
	"sync"
)

// Sequence generates the a-th through b-th terms of a numeric progression.
// Implementations must be pure: the same range always yields the same terms.
type Sequence interface {
	Generate(a, b int) []float64
	Name() string
}

// Primes yields primes, 1-indexed: Generate(1, 5) == [2 3 5 7 11].
type Primes struct{}

// Fibonacci yields Fibonacci terms, 0-indexed: Generate(0, 5) == [0 1 1 2 3 5].
type Fibonacci struct{}

// ConstantOne yields b-a+1 ones.
type ConstantOne struct{}

// Func adapts a plain function to the Sequence interface.
type Func func(a, b int) []float64

func (Primes) Name() string      { return "primes" }
func (Fibonacci) Name() string   { return "fibonacci" }
func (ConstantOne) Name() string { return "ones" }
func (Func) Name() string        { return "custom" }

func (f Func) Generate(a, b int) []float64 { return f(a, b) }

func (Primes) Generate(a, b int) []float64 {
	if a < 1 || a > b {
		return nil
	}
	table := primesUpTo(b)
	out := make([]float64, 0, b-a+1)
	for _, p := range table[a-1 : b] {
		out = append(out, float64(p))
	}
	return out
}

func (Fibonacci) Generate(a, b int) []float64 {
	if a < 0 || a > b {
		return nil
	}
	out := make([]float64, 0, b-a+1)
	prev, cur := 0.0, 1.0
	for i := 0; i <= b; i++ {
		var fi float64
		if i <= 1 {
			fi = float64(i)
		} else {
			fi = prev + cur
			prev, cur = cur, fi
		}
		if i >= a {
			out = append(out, fi)
		}
	}
	return out
}

func (ConstantOne) Generate(a, b int) []float64 {
	if a < 0 || a > b {
		return nil
	}
	out := make([]float64, b-a+1)
	for i := range out {
		out[i] = 1
	}
	return out
}

// ByName resolves the sequence names accepted in search configuration files.
func ByName(name string) (Sequence, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "primes", "prime":
		return Primes{}, nil
	case "fibonacci", "fib":
		return Fibonacci{}, nil
	case "ones", "constant", "constant-one":
		return ConstantOne{}, nil
	default:
		return nil, fmt.Errorf("unknown sequence %q", name)
	}
}

var (
	primeMu    sync.Mutex
	primeTable = []int{2, 3, 5, 7, 11, 13}
)

// primesUpTo returns a table holding at least the first n primes. The table
// only ever grows, so callers may keep the returned slice.
func primesUpTo(n int) []int {
	primeMu.Lock()
	defer primeMu.Unlock()

	for len(primeTable) < n {
		limit := 2 * primeTable[len(primeTable)-1]
		primeTable = sieve(limit)
	}
	return primeTable
}

func sieve(limit int) []int {
	composite := make([]bool, limit+1)
	primes := make([]int, 0, limit/4)
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes
}

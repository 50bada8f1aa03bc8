package sequence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimes(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 5, 7, 11}, Primes{}.Generate(1, 5))
	assert.Equal(t, []float64{5, 7, 11}, Primes{}.Generate(3, 5))
	assert.Equal(t, []float64{29}, Primes{}.Generate(10, 10))
	assert.Nil(t, Primes{}.Generate(0, 3), "primes are 1-indexed")
	assert.Nil(t, Primes{}.Generate(4, 2))
}

func TestPrimesGrowsTable(t *testing.T) {
	got := Primes{}.Generate(100, 101)
	assert.Equal(t, []float64{541, 547}, got)
}

func TestPrimesConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got := Primes{}.Generate(1, n*50)
			assert.Len(t, got, n*50)
			assert.Equal(t, 2.0, got[0])
		}(i)
	}
	wg.Wait()
}

func TestFibonacci(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 1, 2, 3, 5}, Fibonacci{}.Generate(0, 5))
	assert.Equal(t, []float64{2, 3, 5}, Fibonacci{}.Generate(3, 5))
	assert.Equal(t, []float64{0}, Fibonacci{}.Generate(0, 0))
	assert.Nil(t, Fibonacci{}.Generate(-1, 2))
}

func TestConstantOne(t *testing.T) {
	assert.Equal(t, []float64{1, 1, 1}, ConstantOne{}.Generate(1, 3))
	assert.Equal(t, []float64{1}, ConstantOne{}.Generate(4, 4))
	assert.Nil(t, ConstantOne{}.Generate(3, 1))
}

func TestGenerateIsRestartable(t *testing.T) {
	for _, seq := range []Sequence{Primes{}, Fibonacci{}, ConstantOne{}} {
		first := seq.Generate(1, 7)
		second := seq.Generate(1, 7)
		assert.Equal(t, first, second, seq.Name())
	}
}

func TestFunc(t *testing.T) {
	doubled := Func(func(a, b int) []float64 {
		out := []float64{}
		for i := a; i <= b; i++ {
			out = append(out, float64(2*i))
		}
		return out
	})
	assert.Equal(t, []float64{2, 4, 6}, doubled.Generate(1, 3))
	assert.Equal(t, "custom", doubled.Name())
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want Sequence
	}{
		{"primes", Primes{}},
		{"Fibonacci", Fibonacci{}},
		{" ones ", ConstantOne{}},
	}
	for _, tt := range tests {
		got, err := ByName(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ByName("squares")
	assert.Error(t, err)
}

func TestRingWrap(t *testing.T) {
	ring, err := NewRing(Primes{}, 5)
	require.NoError(t, err)

	tests := []struct {
		k, want int
	}{
		{1, 1},
		{5, 5},
		{6, 1},
		{7, 2},
		{0, 5},
		{-1, 4},
		{-5, 5},
		{11, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ring.Wrap(tt.k), "Wrap(%d)", tt.k)
	}

	assert.Equal(t, 11.0, ring.Value(0))
	assert.Equal(t, 2.0, ring.Value(6))
	assert.Equal(t, []float64{2, 3, 5, 7, 11}, ring.Values())
}

func TestNewRingRejectsShortSequence(t *testing.T) {
	_, err := NewRing(Primes{}, 0)
	assert.ErrorIs(t, err, ErrEmptyRing)

	short := Func(func(a, b int) []float64 { return []float64{1} })
	_, err = NewRing(short, 3)
	assert.ErrorIs(t, err, ErrEmptyRing)
}

package tensor

import (
	"math"
	"math/rand"
	"time"
)

// rng drives all random tensor creation. math/rand is intentional: training
// runs want reproducibility under Seed, not cryptographic quality.
var rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec

// Seed re-seeds the creation RNG so weight initialization is reproducible.
func Seed(seed int64) {
	rng = rand.New(rand.NewSource(seed)) //nolint:gosec
}

// Uniform returns a sample from [0, 1) using the package RNG.
// Exposed so initializers share the seeded stream.
func Uniform() float64 {
	return rng.Float64()
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err)
	}
	// Buffer is already zero-initialized by make().
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Rand creates a float tensor with values uniformly distributed in [0, 1).
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	fillFloat(t.Data(), func() float64 { return rng.Float64() })
	return t
}

// Randn creates a float tensor with values from a standard normal
// distribution, generated with the Box-Muller transform.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)

	switch data := any(t.Data()).(type) {
	case []float32:
		for i := 0; i < len(data); i += 2 {
			z0, z1 := boxMuller()
			data[i] = float32(z0)
			if i+1 < len(data) {
				data[i+1] = float32(z1)
			}
		}
	case []float64:
		for i := 0; i < len(data); i += 2 {
			z0, z1 := boxMuller()
			data[i] = z0
			if i+1 < len(data) {
				data[i+1] = z1
			}
		}
	default:
		panic("Randn only supports float32 and float64 tensors")
	}
	return t
}

func boxMuller() (float64, float64) {
	u1 := rng.Float64()
	u2 := rng.Float64()
	r := math.Sqrt(-2.0 * math.Log(u1))
	return r * math.Cos(2.0*math.Pi*u2), r * math.Sin(2.0*math.Pi*u2)
}

func fillFloat[T DType](data []T, next func() float64) {
	switch d := any(data).(type) {
	case []float32:
		for i := range d {
			d[i] = float32(next())
		}
	case []float64:
		for i := range d {
			d[i] = next()
		}
	default:
		panic("random creation only supports float32 and float64 tensors")
	}
}

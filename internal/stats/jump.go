package stats

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// JumpDiffusion is a drift-diffusion process with Poisson-arriving,
// normally distributed jumps.
type JumpDiffusion struct {
	Mu        float64 // drift
	Sigma     float64 // diffusion volatility
	Lambda    float64 // jump intensity per unit time
	JumpMu    float64 // mean jump size
	JumpDelta float64 // jump size volatility
	Dt        float64 // time step
}

// Sample simulates one path of steps increments from x0. The returned slice
// has steps+1 entries, the first being x0.
func (j JumpDiffusion) Sample(x0 float64, steps int, src rand.Source) []float64 {
	gauss := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	arrivals := distuv.Poisson{Lambda: j.Lambda * j.Dt, Src: src}

	path := make([]float64, steps+1)
	path[0] = x0
	sqrtDt := math.Sqrt(j.Dt)
	for i := 1; i <= steps; i++ {
		dW := gauss.Rand() * sqrtDt
		jumps := 0.0
		for n := int(arrivals.Rand()); n > 0; n-- {
			jumps += j.JumpMu + j.JumpDelta*gauss.Rand()
		}
		path[i] = path[i-1] + j.Mu*j.Dt + j.Sigma*dW + jumps
	}
	return path
}

package weighted

// Distribution summarizes repeated Roll calls over one weight vector.
type Distribution struct {
	Trials int
	Counts []int
	Shares []float64 // Counts[i] / Trials
	Misses int       // rolls that selected nothing (non-positive total)
}

// Simulate repeats Roll trials times and tallies which index won.
func Simulate(weights []float64, trials int, rng RandomSource) Distribution {
	d := Distribution{Trials: trials, Counts: make([]int, len(weights)), Shares: make([]float64, len(weights))}
	if trials <= 0 {
		return d
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	for i := 0; i < trials; i++ {
		idx := Roll(weights, rng)
		if idx < 0 {
			d.Misses++
			continue
		}
		d.Counts[idx]++
	}
	for i, c := range d.Counts {
		d.Shares[i] = float64(c) / float64(trials)
	}
	return d
}

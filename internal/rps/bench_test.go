package rps

import "testing"

var benchProbs = Probabilities{Settle: 0.25, Competition: 0.5, Mobility: 0.25}

func BenchmarkEngineStep(b *testing.B) {
	rng := newRand(1)
	g, _ := Seed(256, 256, 0.5, rng)
	eng := NewEngine(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Step(g, benchProbs, rng)
	}
}

func BenchmarkEngineStepSerial(b *testing.B) {
	rng := newRand(1)
	g, _ := Seed(256, 256, 0.5, rng)
	eng := NewEngine(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Step(g, benchProbs, rng)
	}
}

func BenchmarkEntropy(b *testing.B) {
	g, _ := Seed(256, 256, 0.5, newRand(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Entropy(g, benchProbs)
	}
}

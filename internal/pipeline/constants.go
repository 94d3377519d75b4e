package pipeline

const (
	// minHilbertLength is the shortest Hilbert filter with a free coefficient.
	minHilbertLength = 4

	// latencyDivisor halves a linear-phase filter order to get its delay.
	latencyDivisor = 2

	// defaultStageCapacity is the initial capacity of the stage slice.
	defaultStageCapacity = 2

	// bufferGrowthFactor is the ring buffer growth multiplier.
	bufferGrowthFactor = 2
)

// Command envelope detects, designs and analyzes Hilbert envelope filters
// on WAV files and synthetic AM signals.
//
// Usage:
//
//	envelope detect input.wav output.csv
//	envelope detect --fast -k 4 input.wav output.wav
//	envelope generate --carrier 1100 --modulation 20 am.wav
//	envelope design --format yaml
//	envelope analyze
//	envelope config
package main

func main() {
	Execute()
}

// Package pitch estimates the dominant frequency of a sample block.
//
// The analyzer windows the most recent FFTSize samples with a periodic Hann
// window, takes an FFT and refines the strongest bin with a parabolic fit on
// the log power spectrum. It is used to read back the pitch of oscillator,
// poly and pitch-shifter output, and by the dsptester meter line.
//
//	a, _ := pitch.NewAnalyzer(pitch.Config{SampleRate: 48000, FFTSize: 8192})
//	res := a.Analyze(block)
//	fmt.Printf("%.1f Hz\n", res.Frequency)
package pitch

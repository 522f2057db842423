package hrv

// Visualizer receives the intermediate artifacts the extractors produce so
// callers can render them. A nil Visualizer keeps the pipeline headless.
type Visualizer interface {
	// PlotSpectrum receives the power spectral density and the band table
	// behind the frequency-domain features.
	PlotSpectrum(frequencies, powers []float64, bands []Band, method string)

	// PlotPoincare receives the interval series behind the Poincaré
	// features together with the fitted ellipse descriptors.
	PlotPoincare(rri []float64, s, sd1, sd2, sd12 float64)

	// PlotHistogram receives the interval histogram edges and the best
	// triangular fit behind the geometrical features.
	PlotHistogram(rri, edges, fitted []float64, hti, tinn float64)
}

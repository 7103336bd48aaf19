// Package analysis looks at recorded telemetry in the frequency domain.
//
// Scripted jitter and C/D pursuit both leave periodic traces in the
// tracked-vs-displayed columns; [ColumnSpectrum] finds them:
//
//	sp, err := analysis.ColumnSpectrum(rows, "lag")
//	if err == nil {
//	    fmt.Println(sp.Dominant())
//	}
package analysis

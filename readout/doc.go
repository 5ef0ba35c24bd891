// Package readout assembles one FrameRecord per hardware frame according to the readout mode.
//
// Modes:
//   - ScalerOnly: the scaler block is decoded, every element is scored by the dead-time model
//     and FF is the sum of the corrected windowed counts of the non-excluded elements.
//   - FullSpectrum: the full MCA of each element is additionally decoded at the configured grade
//     count and every bin is corrected; the cross-element summed spectrum is optional.
//   - RegionsOfInterest: the region-reduced spectra are aggregated by package roi, identically
//     named readings are grouped across elements into one Array per region name, FF is the sum of
//     all contributing readings and, in THRESHOLD mode, FF_bad the sum of their bad counts.
//
// A gateway or decode failure fails the whole requested range with a *FrameError; no partial
// records are returned.
package readout

// Package frame decodes the flat integer blocks returned by the acquisition gateway into
// per-frame structures.
//
// The gateway transports every count as a signed 32-bit word. Counts are unsigned magnitudes,
// so the decoder reinterprets each word as a Counter at the boundary and never relies on
// sign extension afterwards.
//
// Two block layouts exist, both row-major:
//   - Scaler blocks: frames × channels × 4, each quad ordered {allEvents, resets, windowed, clockTicks}.
//   - Spectrum blocks: frames × channels × grades × bins.
//
// Decoding is pure: a block whose length differs from the product of its declared dimensions
// fails with ErrShapeMismatch instead of being reshaped by guesswork.
package frame

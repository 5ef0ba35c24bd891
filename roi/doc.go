// Package roi aggregates the configured regions of interest of each detector element into
// dead-time corrected readings.
//
// For every element the aggregator walks the region list with a cursor over the
// region-reduced spectrum returned by the hardware. A VirtualScalar region consumes one slot and
// yields one value per grade row; a PartialSpectrum region consumes end−start+1 slots and yields
// one sub-spectrum per grade row plus a peak area. Outside the ALL grade mode, the slots left
// after the last region are folded into the implicit OUT reading, which never contributes to FF.
//
// Grade rows and rescaling:
//   - NONE: one row, multiplied by the correction factor.
//   - THRESHOLD: row 0 ("bad") is reported raw as a diagnostic; row 1 ("good") is rescaled by
//     allRegionEvents / goodEvents, where allRegionEvents sums every grade over every slot of the
//     element (inside and outside the regions) and goodEvents sums the good row over every slot,
//     and then multiplied by the correction factor.
//   - ALL: sixteen cumulative rows where row b sums grades g ≥ 15−b. Each row is rescaled by
//     allRegionEvents over its own total and multiplied by the correction factor. VirtualScalar
//     rows are divided by the monitor value when one is supplied.
//
// A rescale ratio whose denominator is zero is taken as 1.
package roi

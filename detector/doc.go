// Package detector describes a multi-element energy-dispersive detector: its elements, their
// energy windows, regions of interest, dead-time calibrations, the resolution grade mode and
// the readout mode.
//
// A Configuration is immutable once built. Every accessor returns copies, so a configuration
// handed to a running scan can never change underneath it; switching mode or regions means
// building a new Configuration and arming the session with it between scans.
//
// Region layout:
//
// In RegionsOfInterest mode the hardware returns a reduced spectrum per element in which each
// VirtualScalar region occupies one slot and each PartialSpectrum region occupies end−start+1
// slots, in region order. Outside the ALL grade mode the slots left after the last region form
// the implicit "OUT" region, so that the regions plus OUT exactly cover the reduced spectrum.
package detector

// Package session sequences detector readout across a scan.
//
// A Session owns the hardware handles and walks through the states
//
//	Closed → Open → Armed → Counting → Armed → ... → Closed
//
// Open acquires the handles, Configure pushes windows and regions and arms the detector,
// AtScanStart starts counting and resets the read cursor, Readout reads the frame at the cursor
// and advances it, AtScanEnd stops counting. Configure is rejected while counting, so the
// detector configuration never changes in the middle of a scan.
//
// A Session is not safe for concurrent use; callers serialise access. State may be queried from
// any goroutine.
package session

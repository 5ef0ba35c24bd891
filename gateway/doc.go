// Package gateway defines the contract with the acquisition gateway that fronts the detector
// electronics and the hardware frame generator, and provides a checked client on top of it.
//
// The gateway speaks a line-oriented text protocol. Every command is a synchronous
// request/response: SendCommand returns an optional integer reply, ReadBinary returns a block of
// signed 32-bit words whose length must equal the number requested. A length mismatch is a fatal
// transport error (ErrShortRead); the client never pads or truncates.
//
// Commands used by the client:
//
//	xspress2 open-mca '<system>'                 → MCA handle
//	xspress2 open-scalers '<system>'             → scaler handle
//	close <handle>
//	xspress2 set-window '<system>' <det> <lo> <hi>
//	xspress2 set-roi '<system>' <det> <n> {<kind> <start> <end>}...
//	xspress2 format-run '<system>' <grades> <bins>
//	xspress2 get-res-grades '<system>'           → grade count
//	enable|disable|clear|start|stop <handle>
//	read <x0> <y0> <t0> <dx> <dy> <dt> from <handle> raw intel
//	tfg read frames                               → configured frame count
//	tfg read status                               → 0 when idle
//	tfg read status frame                         → raw frame tick counter
//
// Scaler reads address x = scaler (0..3), y = channel, t = frame. MCA reads address x = bin,
// y = channel·grades + grade, t = frame. Blocks are returned t-major, then y, then x.
//
// Simulator is an in-memory gateway implementing this protocol for tests and demonstrations,
// and MockGateway is a testify mock for failure injection.
package gateway

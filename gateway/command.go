package gateway

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-xspress/detector"
)

// Region kind codes used by the set-roi command.
const (
	roiKindScalar   = 0
	roiKindSpectrum = 1
)

func cmdOpenMCA(system string) string {
	return fmt.Sprintf("xspress2 open-mca '%s'", system)
}

func cmdOpenScalers(system string) string {
	return fmt.Sprintf("xspress2 open-scalers '%s'", system)
}

func cmdClose(handle int64) string {
	return fmt.Sprintf("close %d", handle)
}

func cmdSetWindow(system string, det int, w detector.Window) string {
	return fmt.Sprintf("xspress2 set-window '%s' %d %d %d", system, det, w.Lo, w.Hi)
}

func cmdSetROI(system string, det int, regions []detector.Region) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "xspress2 set-roi '%s' %d %d", system, det, len(regions))
	for _, r := range regions {
		kind := roiKindScalar
		if r.Kind == detector.PartialSpectrum {
			kind = roiKindSpectrum
		}
		fmt.Fprintf(&sb, " %d %d %d", kind, r.Start, r.End)
	}

	return sb.String()
}

func cmdFormatRun(system string, grades, bins int) string {
	return fmt.Sprintf("xspress2 format-run '%s' %d %d", system, grades, bins)
}

func cmdResGrades(system string) string {
	return fmt.Sprintf("xspress2 get-res-grades '%s'", system)
}

func cmdCounting(verb string, handle int64) string {
	return verb + " " + strconv.FormatInt(handle, 10)
}

// cmdRead builds a raw little-endian read of the box [x0, x0+dx) × [y0, y0+dy) × [t0, t0+dt).
func cmdRead(handle int64, x0, y0, t0, dx, dy, dt int) string {
	return fmt.Sprintf("read %d %d %d %d %d %d from %d raw intel", x0, y0, t0, dx, dy, dt, handle)
}

const (
	cmdTFGFrames = "tfg read frames"
	cmdTFGStatus = "tfg read status"
	cmdTFGTicks  = "tfg read status frame"
)

package metrics

import "time"

// RemappingsResolved records the size of the remapping table.
func RemappingsResolved(builder string, n int) {
	if !enabled {
		return
	}
	remappingsResolved.WithLabelValues(builder).Set(float64(n))
}

// FilesFlattened records how many files the flattener inlined.
func FilesFlattened(n int) {
	if !enabled {
		return
	}
	filesFlattened.Set(float64(n))
}

// DiffComputed records the shape of the final diff.
func DiffComputed(hunks, added, removed int) {
	if !enabled {
		return
	}
	diffHunks.Set(float64(hunks))
	diffLines.WithLabelValues("added").Set(float64(added))
	diffLines.WithLabelValues("removed").Set(float64(removed))
	if hunks > 0 {
		driftDetected.Set(1)
	} else {
		driftDetected.Set(0)
	}
}

// RunFinished records the outcome of a diff run: "clean", "drift" or "error".
func RunFinished(result string, at time.Time) {
	if !enabled {
		return
	}
	runsTotal.WithLabelValues(result).Inc()
	lastRunTimestamp.Set(float64(at.Unix()))
}

package pool

// Lane geometry constants, in view-space units.
const (
	// EdgeInset keeps the partial edges from touching at the corners.
	EdgeInset = 60.0

	// ViewInset is applied to the view bounds when the outline is rebuilt.
	ViewInset = 100.0

	// HandleRadius is the hit radius of a drag handle.
	HandleRadius = 20.0

	// Lines whose direction vectors have |sin θ| at or below this are parallel.
	parallelTolerance = 1e-9
)

package hkey

// Range is a half-open byte range [Start, End).
type Range struct {
	Start, End int64
}

// Len returns the number of bytes the range covers.
func (r Range) Len() int64 { return r.End - r.Start }

// Empty reports whether the range covers no bytes.
func (r Range) Empty() bool { return r.End <= r.Start }

// intersects reports whether r and o overlap.
func (r Range) intersects(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// intersect returns the overlap of r and o. Callers must check intersects
// first; an empty result is returned otherwise.
func (r Range) intersect(o Range) Range {
	start := r.Start
	if o.Start > start {
		start = o.Start
	}
	end := r.End
	if o.End < end {
		end = o.End
	}
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}

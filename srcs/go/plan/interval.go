package plan

// Interval is the half-open range of integers [Begin, End).
type Interval struct {
	Begin int
	End   int
}

func (i Interval) Len() int { return i.End - i.Begin }

func (i Interval) Contains(x int) bool { return i.Begin <= x && x < i.End }

// EvenPartition splits r into k consecutive parts whose lengths differ by
// at most one, with the longer parts first.
func EvenPartition(r Interval, k int) []Interval {
	parts := make([]Interval, k)
	base, extra := r.Len()/k, r.Len()%k
	begin := r.Begin
	for i := range parts {
		n := base
		if i < extra {
			n++
		}
		parts[i] = Interval{Begin: begin, End: begin + n}
		begin += n
	}
	return parts
}

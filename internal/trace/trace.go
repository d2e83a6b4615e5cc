// Package trace records one row per successful control cycle and exports
// the recording as CSV or JSON.
package trace

// Sample is one recorded control cycle.
type Sample struct {
	Time     float64
	Setpoint float64
	Process  float64
	Output   float64
	Err      float64
	Updates  uint64
}

// Series holds parallel columns of recorded cycles. All columns always
// have the same length.
type Series struct {
	Time     []float64
	Setpoint []float64
	Process  []float64
	Output   []float64
	Err      []float64
	Updates  []uint64
}

// NewSeries returns an empty recording.
func NewSeries() *Series {
	return &Series{}
}

// Append records one cycle.
func (s *Series) Append(smp Sample) {
	s.Time = append(s.Time, smp.Time)
	s.Setpoint = append(s.Setpoint, smp.Setpoint)
	s.Process = append(s.Process, smp.Process)
	s.Output = append(s.Output, smp.Output)
	s.Err = append(s.Err, smp.Err)
	s.Updates = append(s.Updates, smp.Updates)
}

// Clear empties every column.
func (s *Series) Clear() {
	s.Time = s.Time[:0]
	s.Setpoint = s.Setpoint[:0]
	s.Process = s.Process[:0]
	s.Output = s.Output[:0]
	s.Err = s.Err[:0]
	s.Updates = s.Updates[:0]
}

// Len returns the number of recorded cycles.
func (s *Series) Len() int {
	return len(s.Time)
}

// At returns the i-th recorded cycle.
func (s *Series) At(i int) Sample {
	return Sample{
		Time:     s.Time[i],
		Setpoint: s.Setpoint[i],
		Process:  s.Process[i],
		Output:   s.Output[i],
		Err:      s.Err[i],
		Updates:  s.Updates[i],
	}
}

package form

import "github.com/roach88/qcform/internal/catalog"

// Validate reports whether s is complete enough to submit:
//
//  1. every visible row has a result;
//  2. for Press, every row with Cycles > 0 has a cycle count;
//  3. a line is selected.
//
// Seconds are never required; operators may submit pressure-only readings.
// Validate never touches the network.
func Validate(s Session) error {
	var missing []int
	for i := 0; i < s.Len(); i++ {
		if s.responses.Entry(i).Result == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Reason:  ReasonIncomplete,
			Message: "complete every value",
			Rows:    missing,
		}
	}

	if s.control == catalog.Press {
		var noCycles []int
		for i := 0; i < s.Len(); i++ {
			if s.rows[i].RequiresCycles() && s.responses.Entry(i).CycleCount == "" {
				noCycles = append(noCycles, i)
			}
		}
		if len(noCycles) > 0 {
			return &ValidationError{
				Reason:  ReasonIncomplete,
				Message: "complete the cycles for every station that requires them",
				Rows:    noCycles,
			}
		}
	}

	if s.line == "" {
		return &ValidationError{
			Reason:  ReasonMissingLine,
			Message: "select a line",
		}
	}

	return nil
}

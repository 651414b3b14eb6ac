package app

import (
	"bufio"
	"fmt"
	"io"

	"github.com/relabs-tech/movement_detection/internal/motion"
	"github.com/relabs-tech/movement_detection/internal/sensors"
)

// ReplaySummary totals a replay run.
type ReplaySummary struct {
	Lines    int
	Samples  int
	Rejected int
	Moving   int
	Total    float64
}

// RunReplay runs recorded "x,y,z" lines from r through a fresh session and
// prints one line per streamed record to w.
func RunReplay(r io.Reader, p motion.Policy, w io.Writer) (ReplaySummary, error) {
	var sum ReplaySummary
	session := motion.NewSession(p, 0)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		sum.Lines++
		s, ok, err := sensors.ParseLine(scanner.Text())
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", sum.Lines, err)
		}
		if !ok {
			continue
		}
		sum.Samples++

		out, err := session.Process(s)
		if err != nil {
			sum.Rejected++
			fmt.Fprintf(w, "%5d  rejected: %v\n", sum.Lines, err)
			continue
		}
		if out.Notify {
			sum.Moving++
		}
		if out.Stream {
			st := out.Status
			fmt.Fprintf(w, "%5d  %-10s x=%7.3f y=%7.3f z=%7.3f d=%.3f total=%.3f\n",
				sum.Lines, st.Status, st.X, st.Y, st.Z, st.Distance, st.TotalDistance)
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("read replay input: %w", err)
	}

	sum.Total = session.TotalDistance()
	return sum, nil
}

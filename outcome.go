package remesh

import "strconv"

// Outcome is the result of an attempt to collapse one edge.
type Outcome uint8

const (
	Unvisited Outcome = iota
	Collapsed
	IgnoredEdgeIsFullyConstrained
	IgnoredEdgeTooLong
	IgnoredConstrained
	IgnoredCreatesFlip
	IgnoredGeometricError
	FailedNotAnEdge
	FailedIsolatedTriangle
	FailedOpNotSuccessful
	// NumOutcomes is the number of distinct outcomes.
	NumOutcomes
)

var outcomeNames = [NumOutcomes]string{
	Unvisited:                     "unvisited",
	Collapsed:                     "collapsed",
	IgnoredEdgeIsFullyConstrained: "ignored: edge fully constrained",
	IgnoredEdgeTooLong:            "ignored: edge too long",
	IgnoredConstrained:            "ignored: constrained",
	IgnoredCreatesFlip:            "ignored: creates flip",
	IgnoredGeometricError:         "ignored: geometric error",
	FailedNotAnEdge:               "failed: not an edge",
	FailedIsolatedTriangle:        "failed: isolated triangle",
	FailedOpNotSuccessful:         "failed: operation not successful",
}

func (o Outcome) String() string {
	if o >= NumOutcomes {
		return "Outcome(" + strconv.Itoa(int(o)) + ")"
	}
	return outcomeNames[o]
}

// Stats counts the work done by one simplification call.
type Stats struct {
	// Iterations is the number of edges taken from the queue or visited by
	// a round based pass.
	Iterations      int
	Collapses       int
	IsolatedRemoved int
	Outcomes        [NumOutcomes]int
	// Rounds is the number of rounds run by round based passes.
	Rounds int
}

func (st *Stats) record(o Outcome) {
	st.Iterations++
	st.Outcomes[o]++
	if o == Collapsed {
		st.Collapses++
	}
}

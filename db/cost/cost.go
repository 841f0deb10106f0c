// Package cost implements the plan-cost model the DP join planner compares
// candidate plans with, plus a pluggable selectivity estimator for WHERE
// conjuncts/disjuncts.
package cost

// PlanCost summarizes a plan node's estimated execution cost. All fields
// are estimates produced at prepare time, not measured at runtime.
type PlanCost struct {
	NumTuples    float64
	AvgTupleSize float64
	CPUCost      float64
	NumBlockIOs  float64
}

// Combine adds two independent costs together — used when a node's own
// cost is layered on top of its children's (e.g. a filter's CPU cost added
// to its input's total cost).
func Combine(a, b PlanCost) PlanCost {
	return PlanCost{
		NumTuples:    a.NumTuples + b.NumTuples,
		AvgTupleSize: a.AvgTupleSize + b.AvgTupleSize,
		CPUCost:      a.CPUCost + b.CPUCost,
		NumBlockIOs:  a.NumBlockIOs + b.NumBlockIOs,
	}
}

// Less orders two costs for the planner's tie-breaking: CPU cost is the
// primary comparison key, matching a System-R style optimizer that is
// principally concerned with avoiding expensive nested evaluation.
func Less(a, b PlanCost) bool {
	return a.CPUCost < b.CPUCost
}

package cost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAndMultipliesSelectivities(t *testing.T) {
	require.InDelta(t, 0.25, And(0.5, 0.5), 1e-9)
}

func TestOrTwoTermsInclusionExclusion(t *testing.T) {
	require.InDelta(t, 0.75, Or(0.5, 0.5), 1e-9)
}

func TestOrMoreThanTwoTermsFallsBack(t *testing.T) {
	got := Or(0.5, 0.5, 0.5)
	require.InDelta(t, 0.875, got, 1e-9)
}

func TestLessComparesCPUCost(t *testing.T) {
	cheap := PlanCost{CPUCost: 10}
	expensive := PlanCost{CPUCost: 20}
	require.True(t, Less(cheap, expensive))
	require.False(t, Less(expensive, cheap))
}

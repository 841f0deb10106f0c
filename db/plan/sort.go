package plan

import (
	"sort"

	"nanodb/db/cost"
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

// SortKey is one ORDER BY term: a column position in the input schema,
// direction, and NULL placement.
type SortKey struct {
	ColumnIndex int
	Descending  bool
	// NullsFirst overrides the default NULL placement (NULLS LAST for
	// ascending, NULLS FIRST for descending) when explicitly requested by
	// NULLS FIRST/LAST.
	NullsFirst    bool
	NullsFirstSet bool
}

// Sort materializes its entire child input and produces it back out in
// the order given by Keys. This is always a blocking, fully-materializing
// operator — there is no merge-sort-on-read variant here.
type Sort struct {
	base
	Child Node
	Keys  []SortKey

	sch  *schema.Schema
	cst  cost.PlanCost
	rows []tuple.Tuple
	pos  int
	mark int
}

func NewSort(child Node, keys []SortKey) *Sort {
	return &Sort{Child: child, Keys: keys}
}

func (s *Sort) Prepare() error {
	if err := s.requirePrepare(); err != nil {
		return err
	}
	if err := s.Child.Prepare(); err != nil {
		return err
	}
	s.sch = s.Child.Schema()
	childCost := s.Child.Cost()
	n := childCost.NumTuples
	logN := 1.0
	for cap := 1.0; cap < n; cap *= 2 {
		logN++
	}
	s.cst = cost.PlanCost{
		NumTuples:    n,
		AvgTupleSize: childCost.AvgTupleSize,
		CPUCost:      childCost.CPUCost + n*logN,
		NumBlockIOs:  childCost.NumBlockIOs,
	}
	s.afterPrepare()
	return nil
}

func (s *Sort) Schema() *schema.Schema { return s.sch }
func (s *Sort) Cost() cost.PlanCost    { return s.cst }

func (s *Sort) Initialize() error {
	if err := s.requireInitialize(); err != nil {
		return err
	}
	if err := s.Child.Initialize(); err != nil {
		return err
	}
	s.rows = s.rows[:0]
	for {
		t, err := s.Child.Next()
		if err == ErrEndOfStream {
			break
		}
		if err != nil {
			return err
		}
		s.rows = append(s.rows, tuple.Materialize(t))
	}
	if err := s.Child.Cleanup(); err != nil {
		return err
	}
	sort.SliceStable(s.rows, func(i, j int) bool {
		return s.less(s.rows[i], s.rows[j])
	})
	s.pos = 0
	s.afterInitialize()
	return nil
}

func (s *Sort) less(a, b tuple.Tuple) bool {
	for _, k := range s.Keys {
		av, bv := a.Value(k.ColumnIndex), b.Value(k.ColumnIndex)
		if av.IsNull() || bv.IsNull() {
			if av.IsNull() && bv.IsNull() {
				continue
			}
			nullsFirst := k.NullsFirstSet && k.NullsFirst || (!k.NullsFirstSet && k.Descending)
			if av.IsNull() {
				return nullsFirst
			}
			return !nullsFirst
		}
		cmp, _ := av.Compare(bv)
		if cmp == types.Equal {
			continue
		}
		if k.Descending {
			return cmp == types.Greater
		}
		return cmp == types.Less
	}
	return false
}

func (s *Sort) Next() (tuple.Tuple, error) {
	if err := s.requireNext(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.rows) {
		s.markExhausted()
		return nil, ErrEndOfStream
	}
	t := s.rows[s.pos]
	s.pos++
	return t, nil
}

func (s *Sort) Mark() error {
	if err := s.requireMark(); err != nil {
		return err
	}
	s.mark = s.pos
	s.afterMark()
	return nil
}

func (s *Sort) ResetToMark() error {
	if err := s.requireResetToMark(); err != nil {
		return err
	}
	s.pos = s.mark
	s.afterReset()
	return nil
}

func (s *Sort) ResultsOrderedBy() []int {
	cols := make([]int, len(s.Keys))
	for i, k := range s.Keys {
		cols[i] = k.ColumnIndex
	}
	return cols
}

func (s *Sort) Cleanup() error {
	s.rows = nil
	s.cleanup()
	return nil
}

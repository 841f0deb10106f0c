package planner

import (
	"nanodb/db/cost"
	"nanodb/db/expr"
	"nanodb/db/plan"
)

// leafMask computes the minimal bitmask of leaves a conjunct touches, by
// resolving each of its AllSymbols against every leaf's schema. A conjunct
// that resolves against no leaf at all (a constant predicate) gets mask 0.
func leafMask(e expr.Expression, leaves []Leaf) uint64 {
	syms := e.AllSymbols()
	var mask uint64
	for i, leaf := range leaves {
		for sym := range syms {
			if leaf.Schema.Covers(map[string]bool{sym: true}) {
				mask |= 1 << uint(i)
				break
			}
		}
	}
	return mask
}

// bitCount returns the number of set bits.
func bitCount(mask uint64) int {
	n := 0
	for mask != 0 {
		n += int(mask & 1)
		mask >>= 1
	}
	return n
}

func trailingZero(mask uint64) int {
	i := 0
	for mask&1 == 0 {
		mask >>= 1
		i++
	}
	return i
}

// runDPPlanner implements the System-R style bottom-up DP join-order
// search. Conjuncts that resolve against exactly one leaf are pushed down
// as a filter on that leaf before DP begins; conjuncts spanning multiple
// leaves are attached at the unique join combination where both halves of
// their mask are first jointly present, so every conjunct is applied
// exactly once regardless of which decomposition DP ultimately picks.
// Every plan node built here, including the winning one, is left
// unprepared — planning only ever compares plain cost numbers, never a
// node's own Prepare, since Prepare may run only once per node and the
// caller executing the final plan owns that single call.
func runDPPlanner(leaves []Leaf, conjuncts []expr.Expression) (Leaf, error) {
	n := len(leaves)
	full := uint64(1)<<uint(n) - 1

	masks := make([]uint64, len(conjuncts))
	for i, c := range conjuncts {
		masks[i] = leafMask(c, leaves)
	}

	var multiLeaf []expr.Expression
	var multiMasks []uint64
	perLeaf := make([][]expr.Expression, n)
	for i, c := range conjuncts {
		m := masks[i]
		if bitCount(m) <= 1 {
			idx := 0
			if m != 0 {
				idx = trailingZero(m)
			}
			perLeaf[idx] = append(perLeaf[idx], c)
		} else {
			multiLeaf = append(multiLeaf, c)
			multiMasks = append(multiMasks, m)
		}
	}

	dp := make(map[uint64]Leaf, 1<<uint(n))
	for i, leaf := range leaves {
		dp[1<<uint(i)] = applyFilter(leaf, perLeaf[i])
	}

	for size := 2; size <= n; size++ {
		for mask := uint64(1); mask <= full; mask++ {
			if bitCount(mask) != size {
				continue
			}
			var best *Leaf
			for sub1 := (mask - 1) & mask; sub1 != 0; sub1 = (sub1 - 1) & mask {
				sub2 := mask ^ sub1
				if sub1 > sub2 {
					continue // consider each unordered split once
				}
				e1, ok1 := dp[sub1]
				e2, ok2 := dp[sub2]
				if !ok1 || !ok2 {
					continue
				}
				pred := conjunctsFor(multiLeaf, multiMasks, sub1, sub2)
				candidate := Leaf{
					Plan:   plan.NewNestedLoopsJoin(e1.Plan, e2.Plan, plan.Inner, pred),
					Schema: e1.Schema.Join(e2.Schema),
					Cost:   estimateJoinCost(e1.Cost, e2.Cost),
				}
				// first-seen-wins: only replace an existing candidate when
				// strictly better, so ties keep whichever split was found
				// first.
				if best == nil || cost.Less(candidate.Cost, best.Cost) {
					best = &candidate
				}
			}
			if best != nil {
				dp[mask] = *best
			}
		}
	}

	result, ok := dp[full]
	if !ok {
		return Leaf{}, errNoPlanFound
	}
	return result, nil
}

// conjunctsFor selects, from the multi-leaf conjunct pool, exactly those
// conjuncts whose leaf mask is covered by sub1|sub2 but not by sub1 or sub2
// alone — the unique join combination where both referenced leaves are
// first jointly present. A conjunct whose mask is already fully contained
// in sub1 or sub2 was necessarily applied when that smaller subplan was
// built (by induction from the leaf level up), so it is skipped here to
// avoid applying it twice.
func conjunctsFor(conjuncts []expr.Expression, masks []uint64, sub1, sub2 uint64) expr.Expression {
	combined := sub1 | sub2
	var applicable []expr.Expression
	for i, c := range conjuncts {
		m := masks[i]
		if m&combined != m {
			continue
		}
		if m&sub1 == m || m&sub2 == m {
			continue
		}
		applicable = append(applicable, c)
	}
	if len(applicable) == 0 {
		return nil
	}
	return expr.NewAndN(applicable...)
}

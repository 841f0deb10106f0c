package function

import (
	"strings"

	"nanodb/db/errs"
	"nanodb/db/types"
)

// builtins returns the pragmatic builtin set: aggregates COUNT/SUM/AVG/
// MIN/MAX and scalars UPPER/LOWER/LENGTH/CONCAT/COALESCE. Aggregate
// Evaluators here implement the single-row "fold one more value in"
// step; the planner's aggregation operator (outside this package's
// concern) is responsible for driving that fold across a group.
func builtins() []Descriptor {
	return []Descriptor{
		{Name: "COUNT", IsAggregate: true, Eval: countEval, ReturnType: constReturn(types.BIGINT)},
		{Name: "SUM", IsAggregate: true, Eval: sumEval, ReturnType: numericReturn},
		{Name: "AVG", IsAggregate: true, Eval: avgEval, ReturnType: constReturn(types.DOUBLE)},
		{Name: "MIN", IsAggregate: true, Eval: minMaxEval(false), ReturnType: firstArgReturn},
		{Name: "MAX", IsAggregate: true, Eval: minMaxEval(true), ReturnType: firstArgReturn},
		{Name: "UPPER", Eval: unaryString(strings.ToUpper), ReturnType: constReturn(types.VARCHAR)},
		{Name: "LOWER", Eval: unaryString(strings.ToLower), ReturnType: constReturn(types.VARCHAR)},
		{Name: "LENGTH", Eval: lengthEval, ReturnType: constReturn(types.INTEGER)},
		{Name: "CONCAT", Eval: concatEval, ReturnType: constReturn(types.VARCHAR)},
		{Name: "COALESCE", Eval: coalesceEval, ReturnType: firstArgReturn},
	}
}

func constReturn(t types.DataType) ReturnTypeInferencer {
	return func(_ []types.DataType) (types.DataType, error) { return t, nil }
}

func firstArgReturn(argTypes []types.DataType) (types.DataType, error) {
	if len(argTypes) == 0 {
		return 0, errs.TypeErrorf("function requires at least one argument")
	}
	return argTypes[0], nil
}

func numericReturn(argTypes []types.DataType) (types.DataType, error) {
	if len(argTypes) != 1 || !argTypes[0].IsNumeric() {
		return 0, errs.TypeErrorf("SUM requires a single numeric argument")
	}
	return types.DOUBLE, nil
}

// countEval treats its argument set as "non-null arguments seen this call";
// the aggregation driver calls Eval once per input row with a running
// accumulator as args[0] and the new value as args[1].
func countEval(args []types.Value) (types.Value, error) {
	if len(args) != 2 {
		return types.Value{}, errs.TypeErrorf("COUNT: expected (accumulator, value)")
	}
	acc := args[0].Int()
	if !args[1].IsNull() {
		acc++
	}
	return types.NewInt(types.BIGINT, acc), nil
}

func sumEval(args []types.Value) (types.Value, error) {
	if len(args) != 2 {
		return types.Value{}, errs.TypeErrorf("SUM: expected (accumulator, value)")
	}
	if args[1].IsNull() {
		return args[0], nil
	}
	return types.NewFloat(types.DOUBLE, args[0].AsFloat64()+args[1].AsFloat64()), nil
}

// avgEval is not a per-row fold step: a running (sum, count) pair does not
// fit in a single Value, so the aggregation driver keeps sum/count as two
// separate accumulator slots and calls SUM/COUNT directly; AVG's Eval here
// computes the final division given (sum, count).
func avgEval(args []types.Value) (types.Value, error) {
	if len(args) != 2 {
		return types.Value{}, errs.TypeErrorf("AVG: expected (sum, count)")
	}
	count := args[1].Int()
	if count == 0 {
		return types.Null(types.DOUBLE), nil
	}
	return types.NewFloat(types.DOUBLE, args[0].AsFloat64()/float64(count)), nil
}

func minMaxEval(wantMax bool) Evaluator {
	return func(args []types.Value) (types.Value, error) {
		if len(args) != 2 {
			return types.Value{}, errs.TypeErrorf("MIN/MAX: expected (accumulator, value)")
		}
		acc, v := args[0], args[1]
		if v.IsNull() {
			return acc, nil
		}
		if acc.IsNull() {
			return v, nil
		}
		cmp, err := acc.Compare(v)
		if err != nil {
			return types.Value{}, err
		}
		replace := (wantMax && cmp == types.Less) || (!wantMax && cmp == types.Greater)
		if replace {
			return v, nil
		}
		return acc, nil
	}
}

func unaryString(f func(string) string) Evaluator {
	return func(args []types.Value) (types.Value, error) {
		if len(args) != 1 {
			return types.Value{}, errs.TypeErrorf("expected exactly one argument")
		}
		if args[0].IsNull() {
			return types.Null(types.VARCHAR), nil
		}
		return types.NewString(types.VARCHAR, f(args[0].Str())), nil
	}
}

func lengthEval(args []types.Value) (types.Value, error) {
	if len(args) != 1 {
		return types.Value{}, errs.TypeErrorf("LENGTH: expected exactly one argument")
	}
	if args[0].IsNull() {
		return types.Null(types.INTEGER), nil
	}
	return types.NewInt(types.INTEGER, int64(len(args[0].Str()))), nil
}

func concatEval(args []types.Value) (types.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull() {
			continue
		}
		b.WriteString(a.Str())
	}
	return types.NewString(types.VARCHAR, b.String()), nil
}

func coalesceEval(args []types.Value) (types.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	if len(args) == 0 {
		return types.Value{}, errs.TypeErrorf("COALESCE: expected at least one argument")
	}
	return args[len(args)-1], nil
}

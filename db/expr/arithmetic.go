package expr

import (
	"math/big"

	"nanodb/db/env"
	"nanodb/db/errs"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// ArithOp identifies an arithmetic operator.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Mod
)

// Arithmetic is a binary arithmetic expression. NULL in either operand
// propagates to a NULL result, matching SQL arithmetic semantics.
type Arithmetic struct {
	Op          ArithOp
	Left, Right Expression
}

func NewArithmetic(op ArithOp, left, right Expression) *Arithmetic {
	return &Arithmetic{Op: op, Left: left, Right: right}
}

func (a *Arithmetic) Evaluate(e *env.Environment) (types.Value, error) {
	lv, err := a.Left.Evaluate(e)
	if err != nil {
		return types.Value{}, err
	}
	rv, err := a.Right.Evaluate(e)
	if err != nil {
		return types.Value{}, err
	}
	resultType, err := a.resultType(lv.Type(), rv.Type())
	if err != nil {
		return types.Value{}, err
	}
	if lv.IsNull() || rv.IsNull() {
		return types.Null(resultType), nil
	}
	if a.Op == Div || a.Op == Mod {
		if rv.AsFloat64() == 0 {
			return types.Value{}, errs.TypeErrorf("division by zero")
		}
	}
	if resultType.IsInteger() && lv.Type().IsInteger() && rv.Type().IsInteger() {
		return types.NewInt(resultType, applyInt(a.Op, lv.Int(), rv.Int())), nil
	}
	if resultType == types.NUMERIC {
		lr := asRat(lv)
		rr := asRat(rv)
		res, err := applyRat(a.Op, lr, rr)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewNumeric(res), nil
	}
	return types.NewFloat(resultType, applyFloat(a.Op, lv.AsFloat64(), rv.AsFloat64())), nil
}

func (a *Arithmetic) resultType(l, r types.DataType) (types.DataType, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return 0, schemaError("arithmetic requires numeric operands, got %s and %s", l, r)
	}
	if l == types.NUMERIC || r == types.NUMERIC {
		return types.NUMERIC, nil
	}
	if l == types.DOUBLE || r == types.DOUBLE {
		return types.DOUBLE, nil
	}
	if l == types.FLOAT || r == types.FLOAT {
		return types.FLOAT, nil
	}
	if l.IsInteger() && r.IsInteger() {
		return widestInt(l, r), nil
	}
	return types.DOUBLE, nil
}

func widestInt(l, r types.DataType) types.DataType {
	if l > r {
		return l
	}
	return r
}

func applyInt(op ArithOp, l, r int64) int64 {
	switch op {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	case Div:
		return l / r
	case Mod:
		return l % r
	}
	return 0
}

func applyFloat(op ArithOp, l, r float64) float64 {
	switch op {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	case Div:
		return l / r
	case Mod:
		return float64(int64(l) % int64(r))
	}
	return 0
}

func asRat(v types.Value) *big.Rat {
	if v.Type() == types.NUMERIC && v.Numeric() != nil {
		return v.Numeric()
	}
	return new(big.Rat).SetFloat64(v.AsFloat64())
}

func applyRat(op ArithOp, l, r *big.Rat) (*big.Rat, error) {
	out := new(big.Rat)
	switch op {
	case Add:
		return out.Add(l, r), nil
	case Sub:
		return out.Sub(l, r), nil
	case Mul:
		return out.Mul(l, r), nil
	case Div:
		if r.Sign() == 0 {
			return nil, errs.TypeErrorf("division by zero")
		}
		return out.Quo(l, r), nil
	default:
		return nil, errs.TypeErrorf("MOD is not supported for NUMERIC operands")
	}
}

func (a *Arithmetic) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	lt, err := a.Left.ColumnInfo(schemas)
	if err != nil {
		return 0, err
	}
	rt, err := a.Right.ColumnInfo(schemas)
	if err != nil {
		return 0, err
	}
	return a.resultType(lt, rt)
}

func (a *Arithmetic) AllSymbols() map[string]bool { return mergeSymbols(a.Left, a.Right) }

func (a *Arithmetic) Duplicate() Expression {
	return &Arithmetic{Op: a.Op, Left: a.Left.Duplicate(), Right: a.Right.Duplicate()}
}

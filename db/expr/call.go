package expr

import (
	"nanodb/db/env"
	"nanodb/db/errs"
	"nanodb/db/function"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// Call invokes a registered function by name over evaluated arguments.
// Name is matched case-insensitively against the registry, per the
// function registry's upper-cased-name contract.
type Call struct {
	Name     string
	Args     []Expression
	Registry Registry
}

func NewCall(name string, args []Expression, registry Registry) *Call {
	return &Call{Name: name, Args: args, Registry: registry}
}

func (c *Call) descriptor() (function.Descriptor, error) {
	d, ok := c.Registry.Get(c.Name)
	if !ok {
		return function.Descriptor{}, errs.SchemaErrorf("unknown function %q", c.Name)
	}
	return d, nil
}

func (c *Call) Evaluate(e *env.Environment) (types.Value, error) {
	d, err := c.descriptor()
	if err != nil {
		return types.Value{}, err
	}
	args := make([]types.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := a.Evaluate(e)
		if err != nil {
			return types.Value{}, err
		}
		args[i] = v
	}
	return d.Eval(args)
}

func (c *Call) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	d, err := c.descriptor()
	if err != nil {
		return 0, err
	}
	argTypes := make([]types.DataType, len(c.Args))
	for i, a := range c.Args {
		t, err := a.ColumnInfo(schemas)
		if err != nil {
			return 0, err
		}
		argTypes[i] = t
	}
	return d.ReturnType(argTypes)
}

func (c *Call) AllSymbols() map[string]bool { return mergeSymbols(c.Args...) }

func (c *Call) Duplicate() Expression {
	args := make([]Expression, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Duplicate()
	}
	return &Call{Name: c.Name, Args: args, Registry: c.Registry}
}

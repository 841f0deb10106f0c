package expr

import (
	"regexp"
	"strings"

	"nanodb/db/env"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// Like implements SQL LIKE: '%' matches any run of characters, '_' matches
// exactly one. NULL on either side yields Unknown.
type Like struct {
	Target  Expression
	Pattern Expression
	Negate  bool
}

func NewLike(target, pattern Expression, negate bool) *Like {
	return &Like{Target: target, Pattern: pattern, Negate: negate}
}

func (l *Like) EvaluatePredicate(e *env.Environment) (Tristate, error) {
	tv, err := l.Target.Evaluate(e)
	if err != nil {
		return False, err
	}
	pv, err := l.Pattern.Evaluate(e)
	if err != nil {
		return False, err
	}
	if tv.IsNull() || pv.IsNull() {
		return Unknown, nil
	}
	re, err := likeToRegexp(pv.Str())
	if err != nil {
		return False, err
	}
	matched := re.MatchString(tv.Str())
	if l.Negate {
		matched = !matched
	}
	if matched {
		return True, nil
	}
	return False, nil
}

func likeToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func (l *Like) Evaluate(e *env.Environment) (types.Value, error) {
	t, err := l.EvaluatePredicate(e)
	if err != nil {
		return types.Value{}, err
	}
	return tristateToValue(t), nil
}

func (l *Like) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	if _, err := l.Target.ColumnInfo(schemas); err != nil {
		return 0, err
	}
	if _, err := l.Pattern.ColumnInfo(schemas); err != nil {
		return 0, err
	}
	return types.INTEGER, nil
}

func (l *Like) AllSymbols() map[string]bool { return mergeSymbols(l.Target, l.Pattern) }

func (l *Like) Duplicate() Expression {
	return &Like{Target: l.Target.Duplicate(), Pattern: l.Pattern.Duplicate(), Negate: l.Negate}
}

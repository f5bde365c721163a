package hcl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/bundlepipe/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

func newEvalContext(env map[string]string) *hcl.EvalContext {
	envVal := cty.MapValEmpty(cty.String)
	if len(env) > 0 {
		vals := make(map[string]cty.Value, len(env))
		for k, v := range env {
			vals[k] = cty.StringVal(v)
		}
		envVal = cty.MapVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envVal,
		},
		Functions: map[string]function.Function{
			"upper": stdlib.UpperFunc,
			"lower": stdlib.LowerFunc,
			"join":  stdlib.JoinFunc,
		},
	}
}

// translateSection evaluates every attribute of body and returns them keyed by
// their upper-cased names. Null values are omitted.
func (l *Loader) translateSection(body hcl.Body) (config.Section, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	section := make(config.Section, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(l.evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		s, ok, err := valueToString(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		if ok {
			section[strings.ToUpper(name)] = s
		}
	}
	return section, nil
}

// valueToString flattens a value the way an environment variable would hold
// it: primitives are converted to their string form and sequences of
// primitives are joined with commas. The boolean result is false for null.
func valueToString(val cty.Value) (string, bool, error) {
	if val.IsNull() {
		return "", false, nil
	}
	if !val.IsWhollyKnown() {
		return "", false, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	if ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		parts := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if !elem.Type().IsPrimitiveType() {
				return "", false, fmt.Errorf("list elements must be strings, numbers or bools, got %s", elem.Type().FriendlyName())
			}
			s, ok, err := valueToString(elem)
			if err != nil {
				return "", false, err
			}
			if ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), true, nil
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", false, fmt.Errorf("cannot use %s as a setting: %w", ty.FriendlyName(), err)
	}
	return str.AsString(), true, nil
}

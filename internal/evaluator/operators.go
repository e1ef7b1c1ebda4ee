package evaluator

import (
	"fmt"
	"strings"

	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/value"
)

func (x *execution) evalPrefix(n *ast.PrefixExpression, env *Environment) (value.Value, error) {
	operand, err := x.eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "!":
		b, ok := operand.(*value.Boolean)
		if !ok {
			return nil, fmt.Errorf("cannot negate %s, expected boolean", operand.Type())
		}
		return &value.Boolean{Value: !b.Value}, nil
	case "-":
		switch tv := operand.(type) {
		case *value.Integer:
			return &value.Integer{Value: -tv.Value}, nil
		case *value.Float:
			return &value.Float{Value: -tv.Value}, nil
		default:
			return nil, fmt.Errorf("cannot negate %s, expected integer or float", operand.Type())
		}
	default:
		return nil, fmt.Errorf("unknown prefix operator %q", n.Operator)
	}
}

func (x *execution) evalInfix(n *ast.InfixExpression, env *Environment) (value.Value, error) {
	// && and || short-circuit on the left side.
	if n.Operator == "&&" || n.Operator == "||" {
		return x.evalLogical(n, env)
	}

	left, err := x.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := x.eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "==":
		return &value.Boolean{Value: value.Equal(left, right)}, nil
	case "!=":
		return &value.Boolean{Value: !value.Equal(left, right)}, nil
	case "<", "<=", ">", ">=":
		return compareNumeric(n.Operator, left, right)
	case "+":
		return add(left, right)
	case "-", "*":
		return arithmetic(n.Operator, left, right)
	case "/":
		return divide(left, right)
	default:
		return nil, fmt.Errorf("unknown operator %q", n.Operator)
	}
}

func (x *execution) evalLogical(n *ast.InfixExpression, env *Environment) (value.Value, error) {
	left, err := x.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(*value.Boolean)
	if !ok {
		return nil, fmt.Errorf("the left side of %s is %s, expected boolean", n.Operator, left.Type())
	}
	if n.Operator == "&&" && !lb.Value {
		return &value.Boolean{Value: false}, nil
	}
	if n.Operator == "||" && lb.Value {
		return &value.Boolean{Value: true}, nil
	}

	right, err := x.eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(*value.Boolean)
	if !ok {
		return nil, fmt.Errorf("the right side of %s is %s, expected boolean", n.Operator, right.Type())
	}
	return &value.Boolean{Value: rb.Value}, nil
}

// numericPair widens mixed integer/float operands to float.
func numericPair(left, right value.Value) (l, r float64, bothInt bool, err error) {
	li, lInt := left.(*value.Integer)
	lf, lFloat := left.(*value.Float)
	ri, rInt := right.(*value.Integer)
	rf, rFloat := right.(*value.Float)

	if !lInt && !lFloat {
		return 0, 0, false, fmt.Errorf("expected integer or float, found %s", left.Type())
	}
	if !rInt && !rFloat {
		return 0, 0, false, fmt.Errorf("expected integer or float, found %s", right.Type())
	}
	if lInt {
		l = float64(li.Value)
	} else {
		l = lf.Value
	}
	if rInt {
		r = float64(ri.Value)
	} else {
		r = rf.Value
	}
	return l, r, lInt && rInt, nil
}

func compareNumeric(op string, left, right value.Value) (value.Value, error) {
	l, r, _, err := numericPair(left, right)
	if err != nil {
		return nil, fmt.Errorf("cannot compare with %s: %w", op, err)
	}
	var out bool
	switch op {
	case "<":
		out = l < r
	case "<=":
		out = l <= r
	case ">":
		out = l > r
	case ">=":
		out = l >= r
	}
	return &value.Boolean{Value: out}, nil
}

func add(left, right value.Value) (value.Value, error) {
	if ls, ok := left.(*value.String); ok {
		rs, ok := right.(*value.String)
		if !ok {
			return nil, fmt.Errorf("cannot add %s to string", right.Type())
		}
		var b strings.Builder
		b.WriteString(ls.Value)
		b.WriteString(rs.Value)
		return &value.String{Value: b.String()}, nil
	}
	return arithmetic("+", left, right)
}

func arithmetic(op string, left, right value.Value) (value.Value, error) {
	l, r, bothInt, err := numericPair(left, right)
	if err != nil {
		return nil, fmt.Errorf("cannot apply %s: %w", op, err)
	}
	if bothInt {
		li := left.(*value.Integer).Value
		ri := right.(*value.Integer).Value
		switch op {
		case "+":
			return &value.Integer{Value: li + ri}, nil
		case "-":
			return &value.Integer{Value: li - ri}, nil
		case "*":
			return &value.Integer{Value: li * ri}, nil
		}
	}
	var out float64
	switch op {
	case "+":
		out = l + r
	case "-":
		out = l - r
	case "*":
		out = l * r
	}
	return &value.Float{Value: out}, nil
}

func divide(left, right value.Value) (value.Value, error) {
	l, r, _, err := numericPair(left, right)
	if err != nil {
		return nil, fmt.Errorf("cannot divide: %w", err)
	}
	if r == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	return &value.Float{Value: l / r}, nil
}

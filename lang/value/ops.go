package value

import "fmt"

// OpError is a runtime type error raised by an arithmetic, comparison, or
// unary operation. The VM turns it into a RuntimeError carrying the current
// line.
type OpError struct{ Message string }

func (e *OpError) Error() string { return e.Message }

func opErrorf(format string, args ...any) error {
	return &OpError{Message: fmt.Sprintf(format, args...)}
}

// Add implements the `+` operator. It is the only overloaded operator in
// the language: Number+Number adds, and if either operand is Text, the
// other side is coerced via its display form and the two are concatenated.
func Add(a, b Value) (Value, error) {
	an, aNum := a.(Number)
	bn, bNum := b.(Number)
	if aNum && bNum {
		return an + bn, nil
	}
	_, aText := a.(Text)
	_, bText := b.(Text)
	if aText || bText {
		return Text(a.String() + b.String()), nil
	}
	return nil, opErrorf("operands must be two numbers or one must be a string")
}

func Subtract(a, b Value) (Value, error) { return numberBinary(a, b, "-", func(x, y float64) float64 { return x - y }) }
func Multiply(a, b Value) (Value, error) { return numberBinary(a, b, "*", func(x, y float64) float64 { return x * y }) }

func Divide(a, b Value) (Value, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, opErrorf("operands must be numbers")
	}
	if bn == 0 {
		return nil, opErrorf("division by zero")
	}
	return an / bn, nil
}

func numberBinary(a, b Value, _ string, op func(x, y float64) float64) (Value, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, opErrorf("operands must be numbers")
	}
	return Number(op(float64(an), float64(bn))), nil
}

// Negate implements unary `-`.
func Negate(a Value) (Value, error) {
	n, ok := a.(Number)
	if !ok {
		return nil, opErrorf("operand must be a number")
	}
	return -n, nil
}

// Not implements unary `!`, using the language's truthiness rule.
func Not(a Value) Value {
	return Bool(!a.Truth())
}

// Greater and Less implement `>` and `<`; only Number operands are ordered.
func Greater(a, b Value) (Value, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, opErrorf("operands must be numbers")
	}
	return Bool(an > bn), nil
}

func Less(a, b Value) (Value, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return nil, opErrorf("operands must be numbers")
	}
	return Bool(an < bn), nil
}

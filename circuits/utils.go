package circuit

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/selector"
)

func init() {
	solver.RegisterHint(floorDivHint, prefixMaskHint)
}

// floorDivHint computes quotient and remainder of inputs[0] / inputs[1],
// treating both as non-negative integers.
func floorDivHint(_ *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 2 || len(outputs) != 2 {
		return errors.New("floorDivHint: expected 2 inputs and 2 outputs")
	}
	if inputs[1].Sign() == 0 {
		return errors.New("floorDivHint: division by zero")
	}
	outputs[0].QuoRem(inputs[0], inputs[1], outputs[1])
	return nil
}

// intDiv returns floor(dividend / divisor). The quotient and remainder come
// from a hint; q*divisor + r = dividend together with q < 2^32 and
// r <= divisor-1 pin them down for dividends below 32 bits.
func intDiv(api frontend.API, dividend, divisor frontend.Variable) frontend.Variable {
	res, err := api.Compiler().NewHint(floorDivHint, 2, dividend, divisor)
	if err != nil {
		panic(err)
	}
	quotient, remainder := res[0], res[1]
	api.AssertIsEqual(api.Add(api.Mul(quotient, divisor), remainder), dividend)
	api.ToBinary(quotient, 32)
	api.AssertIsLessOrEqual(remainder, api.Sub(divisor, 1))
	return quotient
}

// muxVector selects table[sel] among rows of equal length, applying the
// scalar mux column-wise.
func muxVector(api frontend.API, sel frontend.Variable, table [][]frontend.Variable) []frontend.Variable {
	if len(table) == 0 {
		panic("muxVector: empty table")
	}
	width := len(table[0])
	for _, row := range table {
		if len(row) != width {
			panic("muxVector: rows must have equal length")
		}
	}
	out := make([]frontend.Variable, width)
	column := make([]frontend.Variable, len(table))
	for i := 0; i < width; i++ {
		for j, row := range table {
			column[j] = row[i]
		}
		out[i] = selector.Mux(api, sel, column...)
	}
	return out
}

// prefixMaskHint sets outputs[i] = 1 for i < inputs[0] and 0 otherwise.
func prefixMaskHint(_ *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 1 {
		return errors.New("prefixMaskHint: expected 1 input")
	}
	if !inputs[0].IsUint64() || inputs[0].Uint64() > uint64(len(outputs)) {
		return errors.New("prefixMaskHint: length out of range")
	}
	length := inputs[0].Uint64()
	for i := range outputs {
		if uint64(i) < length {
			outputs[i].SetUint64(1)
		} else {
			outputs[i].SetUint64(0)
		}
	}
	return nil
}

// prefixMask returns n selector bits with bit i set iff i < length. The hint
// supplies the bits; booleanity, monotonicity and the bit sum force them to
// be exactly the length-long prefix of ones.
func prefixMask(api frontend.API, n int, length frontend.Variable) []frontend.Variable {
	bits, err := api.Compiler().NewHint(prefixMaskHint, n, length)
	if err != nil {
		panic(err)
	}
	sum := frontend.Variable(0)
	for i := 0; i < n; i++ {
		api.AssertIsBoolean(bits[i])
		if i+1 < n {
			api.AssertIsBoolean(api.Sub(bits[i], bits[i+1]))
		}
		sum = api.Add(sum, bits[i])
	}
	api.AssertIsEqual(sum, length)
	return bits
}

// reduceLE folds bytes little-endian: b[0] + 256*b[1] + 256^2*b[2] + ...
func reduceLE(api frontend.API, bytes []frontend.Variable) frontend.Variable {
	acc := frontend.Variable(0)
	for i := len(bytes) - 1; i >= 0; i-- {
		acc = api.Add(api.Mul(acc, 256), bytes[i])
	}
	return acc
}

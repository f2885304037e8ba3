package gadgets

import (
	"github.com/banyancomputer/arecibo/frontend"
)

// Point is an allocated point of the commitment curve, whose base field is
// the circuit's native field. The identity is represented as (0, 0) with
// the infinity flag set.
type Point struct {
	X, Y  frontend.Variable
	IsInf frontend.Variable
}

// Curve carries the in-circuit curve parameters: the Weierstrass constant
// of y^2 = x^3 + B.
type Curve[S any] struct {
	B S
}

// Alloc allocates a point from affine coordinates and checks it lies on
// the curve. The check is gated on the infinity flag, so the identity
// encoding (0, 0, true) is accepted.
func (c Curve[S]) Alloc(api frontend.API[S], x, y S, inf bool) Point {
	f := api.Field()
	infV := f.Zero()
	if inf {
		infV = f.One()
	}
	p := Point{X: api.Alloc(x), Y: api.Alloc(y), IsInf: api.Alloc(infV)}
	api.AssertBoolean(p.IsInf)

	// (1 - inf) * (y^2 - x^3 - B) = 0
	y2 := api.Square(p.Y)
	x3 := api.Mul(api.Square(p.X), p.X)
	d := api.Sub(api.Sub(y2, x3), api.Constant(c.B))
	notInf := api.Sub(api.Constant(f.One()), p.IsInf)
	api.AssertMul(notInf, d, api.Constant(f.Zero()))
	return p
}

// Identity returns the constant identity point.
func (c Curve[S]) Identity(api frontend.API[S]) Point {
	f := api.Field()
	zero := api.Constant(f.Zero())
	return Point{X: zero, Y: zero, IsInf: api.Constant(f.One())}
}

// SelectPoint returns a if cond is 1, b otherwise.
func SelectPoint[S any](api frontend.API[S], cond frontend.Variable, a, b Point) Point {
	return Point{
		X:     api.Select(cond, a.X, b.X),
		Y:     api.Select(cond, a.Y, b.Y),
		IsInf: api.Select(cond, a.IsInf, b.IsInf),
	}
}

// Add is complete addition: it is correct for any combination of identity,
// equal, and opposite inputs.
func (c Curve[S]) Add(api frontend.API[S], p, q Point) Point {
	f := api.Field()
	one := f.One()

	sameX := api.IsZero(api.Sub(q.X, p.X))
	sameY := api.IsZero(api.Sub(q.Y, p.Y))

	// Chord slope, gated so that sameX leaves it unconstrained:
	// (qx - px) * lc = (qy - py) * (1 - sameX)
	dx := api.Sub(q.X, p.X)
	dy := api.Sub(q.Y, p.Y)
	m := api.Mul(dy, api.Sub(api.Constant(one), sameX))
	var lcv S
	if inv, ok := f.Inverse(api.Value(dx)); ok {
		lcv = f.Mul(api.Value(m), inv)
	} else {
		lcv = f.Zero()
	}
	lc := api.Alloc(lcv)
	api.AssertMul(dx, lc, m)

	// Tangent slope: 2*py * lt = 3*px^2. Ungated: py = 0 only at the
	// identity, where px = 0 as well and any lt satisfies it.
	px2 := api.Square(p.X)
	three := f.FromUint64(3)
	rhs := api.MulConst(px2, three)
	twoPy := api.MulConst(p.Y, f.FromUint64(2))
	var ltv S
	if inv, ok := f.Inverse(api.Value(twoPy)); ok {
		ltv = f.Mul(api.Value(rhs), inv)
	} else {
		ltv = f.Zero()
	}
	lt := api.Alloc(ltv)
	api.AssertMul(twoPy, lt, rhs)

	useTangent := api.Mul(sameX, sameY)
	lambda := api.Select(useTangent, lt, lc)

	// x3 = lambda^2 - px - qx, y3 = lambda*(px - x3) - py
	x3 := api.Sub(api.Sub(api.Square(lambda), p.X), q.X)
	y3 := api.Sub(api.Mul(lambda, api.Sub(p.X, x3)), p.Y)
	sum := Point{X: x3, Y: y3, IsInf: api.Constant(f.Zero())}

	// p + (-p) = identity
	isNegation := api.Mul(sameX, api.Sub(api.Constant(one), sameY))
	res := SelectPoint(api, isNegation, c.Identity(api), sum)
	res = SelectPoint(api, q.IsInf, p, res)
	return SelectPoint(api, p.IsInf, q, res)
}

// ScalarMul multiplies base by the scalar given as little-endian boolean
// bits, most significant bit processed first.
func (c Curve[S]) ScalarMul(api frontend.API[S], base Point, bits []frontend.Variable) Point {
	acc := c.Identity(api)
	for i := len(bits) - 1; i >= 0; i-- {
		acc = c.Add(api, acc, acc)
		withBase := c.Add(api, acc, base)
		acc = SelectPoint(api, bits[i], withBase, acc)
	}
	return acc
}

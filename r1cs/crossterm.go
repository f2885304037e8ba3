package r1cs

import "golang.org/x/sync/errgroup"

// CrossTerm computes the folding cross term between a relaxed pair
// (inst1, wit1) and a strict pair (inst2, wit2):
//
//	T = Az1 o Bz2 + Az2 o Bz1 - u1*(Cz2) - Cz1
//
// where the strict side has u2 = 1.
func CrossTerm[S, C any](s *Shape[S], inst1 *RelaxedInstance[S, C], wit1 *RelaxedWitness[S], inst2 *Instance[S, C], wit2 *Witness[S]) []S {
	f := s.F
	z1 := s.Z(wit1.W, inst1.U, inst1.X)
	z2 := s.Z(wit2.W, f.One(), inst2.X)
	return crossTerm(s, z1, z2, inst1.U, f.One())
}

// CrossTermRelaxed is CrossTerm for two relaxed pairs:
//
//	T = Az1 o Bz2 + Az2 o Bz1 - u1*(Cz2) - u2*(Cz1)
func CrossTermRelaxed[S, C any](s *Shape[S], inst1 *RelaxedInstance[S, C], wit1 *RelaxedWitness[S], inst2 *RelaxedInstance[S, C], wit2 *RelaxedWitness[S]) []S {
	z1 := s.Z(wit1.W, inst1.U, inst1.X)
	z2 := s.Z(wit2.W, inst2.U, inst2.X)
	return crossTerm(s, z1, z2, inst1.U, inst2.U)
}

func crossTerm[S any](s *Shape[S], z1, z2 []S, u1, u2 S) []S {
	f := s.F
	var az1, bz1, cz1, az2, bz2, cz2 []S
	var g errgroup.Group
	g.Go(func() error { az1, bz1, cz1 = s.multiply(z1); return nil })
	g.Go(func() error { az2, bz2, cz2 = s.multiply(z2); return nil })
	g.Wait() //nolint:errcheck // the goroutines never fail

	t := make([]S, s.NumConstraints)
	for i := range t {
		v := f.Add(f.Mul(az1[i], bz2[i]), f.Mul(az2[i], bz1[i]))
		v = f.Sub(v, f.Mul(u1, cz2[i]))
		t[i] = f.Sub(v, f.Mul(u2, cz1[i]))
	}
	return t
}

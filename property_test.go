// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"code.hybscloud.com/storeio"
	"code.hybscloud.com/storeio/ops"
	"code.hybscloud.com/storeio/store"
)

const propertyN = 1000

var errProperty = errors.New("property failure")

// randInt returns a random int in [-1000, 1000].
func randInt(rng *rand.Rand) int {
	return rng.IntN(2001) - 1000
}

// session opens a fresh session on an empty store.
func session(t testing.TB, writable bool) storeio.Session {
	t.Helper()
	st, err := store.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var s *store.Session
	if writable {
		s, err = st.BeginWrite(context.Background())
	} else {
		s, err = st.BeginRead(context.Background())
	}
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// run executes m in a fresh writable session.
func run[E storeio.Effect, A any](t testing.TB, m storeio.IO[E, A]) (A, error) {
	t.Helper()
	return storeio.Run(m, session(t, true))
}

// randIO returns either Return(a) or a failure, decided by rng.
func randIO[E storeio.Effect](rng *rand.Rand) storeio.IO[E, int] {
	a := randInt(rng)
	if rng.IntN(4) == 0 {
		return storeio.Fail[E, int](errProperty)
	}
	return storeio.Return[E](a)
}

func same[A comparable](t *testing.T, law string, l A, lerr error, r A, rerr error) {
	t.Helper()
	if !errors.Is(lerr, rerr) && !errors.Is(rerr, lerr) {
		t.Fatalf("%s: errors differ: %v != %v", law, lerr, rerr)
	}
	if lerr == nil && l != r {
		t.Fatalf("%s: %v != %v", law, l, r)
	}
}

// --- Functor laws ---

// TestPropertyMapIdentity: Map(m, id) ≡ m
func TestPropertyMapIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	for range propertyN {
		m := randIO[storeio.Read](rng)
		l, lerr := run(t, storeio.Map(m, func(x int) int { return x }))
		r, rerr := run(t, m)
		same(t, "map identity", l, lerr, r, rerr)
	}
}

// TestPropertyMapComposition: Map(Map(m, f), g) ≡ Map(m, g∘f)
func TestPropertyMapComposition(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	f := func(x int) int { return x*2 + 1 }
	g := func(x int) string { return string(rune('a' + (x%26+26)%26)) }
	for range propertyN {
		m := randIO[storeio.Write](rng)
		l, lerr := run(t, storeio.Map(storeio.Map(m, f), g))
		r, rerr := run(t, storeio.Map(m, func(x int) string { return g(f(x)) }))
		same(t, "map composition", l, lerr, r, rerr)
	}
}

// --- Monad laws ---

// TestPropertyBindLeftIdentity: Bind(Return(a), f) ≡ f(a)
func TestPropertyBindLeftIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 2))
	f := func(x int) storeio.IO[storeio.Read, int] { return storeio.Return[storeio.Read](x * 3) }
	for range propertyN {
		a := randInt(rng)
		l, lerr := run(t, storeio.Bind(storeio.Return[storeio.Read](a), f))
		r, rerr := run(t, f(a))
		same(t, "left identity", l, lerr, r, rerr)
	}
}

// TestPropertyBindRightIdentity: Bind(m, Return) ≡ m
func TestPropertyBindRightIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 3))
	for range propertyN {
		m := randIO[storeio.Write](rng)
		l, lerr := run(t, storeio.Bind(m, storeio.Return[storeio.Write, int]))
		r, rerr := run(t, m)
		same(t, "right identity", l, lerr, r, rerr)
	}
}

// TestPropertyBindAssociativity checks (m >>= f) >>= g ≡ m >>= (f >=> g)
// for every combination of Read and Write stages.
func TestPropertyBindAssociativity(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 4))
	fr := func(x int) storeio.IO[storeio.Read, int] { return storeio.Return[storeio.Read](x + 7) }
	fw := func(x int) storeio.IO[storeio.Write, int] {
		if x%5 == 0 {
			return storeio.Fail[storeio.Write, int](errProperty)
		}
		return storeio.Return[storeio.Write](x - 2)
	}
	gr := func(x int) storeio.IO[storeio.Read, int] { return storeio.Return[storeio.Read](x * 2) }
	gw := func(x int) storeio.IO[storeio.Write, int] { return storeio.Return[storeio.Write](x * 5) }

	for range propertyN {
		mr := randIO[storeio.Read](rng)
		mw := randIO[storeio.Write](rng)

		// Read, Read, Read
		l, lerr := run(t, storeio.Bind(storeio.Bind(mr, fr), gr))
		r, rerr := run(t, storeio.Bind(mr, func(x int) storeio.IO[storeio.Read, int] { return storeio.Bind(fr(x), gr) }))
		same(t, "RRR", l, lerr, r, rerr)

		// Read, Read, Write
		l, lerr = run(t, storeio.BindWrite(storeio.Bind(mr, fr), gw))
		r, rerr = run(t, storeio.BindWrite(mr, func(x int) storeio.IO[storeio.Write, int] { return storeio.BindWrite(fr(x), gw) }))
		same(t, "RRW", l, lerr, r, rerr)

		// Read, Write, Read
		l, lerr = run(t, storeio.BindAfterWrite(storeio.BindWrite(mr, fw), gr))
		r, rerr = run(t, storeio.BindWrite(mr, func(x int) storeio.IO[storeio.Write, int] { return storeio.BindAfterWrite(fw(x), gr) }))
		same(t, "RWR", l, lerr, r, rerr)

		// Read, Write, Write
		l, lerr = run(t, storeio.Bind(storeio.BindWrite(mr, fw), gw))
		r, rerr = run(t, storeio.BindWrite(mr, func(x int) storeio.IO[storeio.Write, int] { return storeio.Bind(fw(x), gw) }))
		same(t, "RWW", l, lerr, r, rerr)

		// Write, Read, Read
		l, lerr = run(t, storeio.BindAfterWrite(storeio.BindAfterWrite(mw, fr), gr))
		r, rerr = run(t, storeio.BindAfterWrite(mw, func(x int) storeio.IO[storeio.Read, int] { return storeio.Bind(fr(x), gr) }))
		same(t, "WRR", l, lerr, r, rerr)

		// Write, Read, Write
		l, lerr = run(t, storeio.Bind(storeio.BindAfterWrite(mw, fr), gw))
		r, rerr = run(t, storeio.Bind(mw, func(x int) storeio.IO[storeio.Write, int] { return storeio.BindWrite(fr(x), gw) }))
		same(t, "WRW", l, lerr, r, rerr)

		// Write, Write, Read
		l, lerr = run(t, storeio.BindAfterWrite(storeio.Bind(mw, fw), gr))
		r, rerr = run(t, storeio.Bind(mw, func(x int) storeio.IO[storeio.Write, int] { return storeio.BindAfterWrite(fw(x), gr) }))
		same(t, "WWR", l, lerr, r, rerr)

		// Write, Write, Write
		l, lerr = run(t, storeio.Bind(storeio.Bind(mw, fw), gw))
		r, rerr = run(t, storeio.Bind(mw, func(x int) storeio.IO[storeio.Write, int] { return storeio.Bind(fw(x), gw) }))
		same(t, "WWW", l, lerr, r, rerr)
	}
}

// --- Lattice properties ---

// TestPropertyAsWritePreservesResult: AsWrite changes the tag only.
func TestPropertyAsWritePreservesResult(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 5))
	for range propertyN {
		m := randIO[storeio.Read](rng)
		w := storeio.AsWrite(m)
		if !w.IsWrite() {
			t.Fatal("AsWrite result is not Write")
		}
		l, lerr := run(t, w)
		r, rerr := run(t, m)
		same(t, "as write", l, lerr, r, rerr)
	}
}

// TestPropertyFailureShortCircuits: a failed stage never runs its continuation.
func TestPropertyFailureShortCircuits(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 6))
	for range propertyN {
		err := errors.New("stage failed")
		called := false
		k := func(x int) storeio.IO[storeio.Write, int] {
			called = true
			return storeio.Return[storeio.Write](x)
		}
		var m storeio.IO[storeio.Write, int]
		switch rng.IntN(3) {
		case 0:
			m = storeio.Bind(storeio.Fail[storeio.Write, int](err), k)
		case 1:
			m = storeio.BindWrite(storeio.Fail[storeio.Read, int](err), k)
		default:
			m = storeio.BindAfterWrite(storeio.Fail[storeio.Write, int](err), k)
		}
		_, got := run(t, m)
		if !errors.Is(got, err) {
			t.Fatalf("got %v, want %v", got, err)
		}
		if called {
			t.Fatal("continuation ran after failure")
		}
	}
}

// TestPropertyStoreFailureShortCircuits: a failure raised by the store
// stops the chain just like an explicit Fail.
func TestPropertyStoreFailureShortCircuits(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for range propertyN {
		key := fmt.Sprintf("missing-%d", randInt(rng))
		called := false
		k := func(d *Dog) storeio.IO[storeio.Write, *Dog] {
			called = true
			return storeio.Return[storeio.Write](d)
		}
		lookup := ops.MustByKey[Dog](key)
		var m storeio.IO[storeio.Write, *Dog]
		switch rng.IntN(3) {
		case 0:
			m = storeio.Bind(storeio.AsWrite(lookup), k)
		case 1:
			m = storeio.BindWrite(lookup, k)
		default:
			m = storeio.BindAfterWrite(storeio.AsWrite(lookup), func(d *Dog) storeio.IO[storeio.Read, *Dog] {
				called = true
				return storeio.Return[storeio.Read](d)
			})
		}
		got, err := run(t, m)
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
		if got != nil {
			t.Fatalf("got %v, want nil", got)
		}
		if called {
			t.Fatal("continuation ran after store failure")
		}
	}
}

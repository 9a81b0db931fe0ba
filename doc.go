// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package storeio provides effect-tracked computations over an object store
// session.
//
// The core type [IO] pairs a deferred computation with a phantom effect tag,
// [Read] or [Write]. The tag says whether executing the computation may
// mutate the store, and it is checked by the compiler: a chain that contains
// a mutating step is typed Write, and a Write computation cannot be passed
// where a Read one is expected.
//
// # Effect Lattice
//
// The tags form a two-point lattice, Read ⊑ Write. Composition takes the
// least upper bound of its parts:
//
//	first   second  result
//	Read    Read    Read
//	Read    Write   Write
//	Write   Read    Write
//	Write   Write   Write
//
// Go has no overloading, so each row has its own combinator:
//
//   - [Bind]: both stages share one tag (rows 1 and 4)
//   - [BindWrite]: a Read stage followed by a Write stage (row 2)
//   - [BindAfterWrite]: a Write stage followed by any stage (rows 3 and 4)
//   - [AsWrite]: promote a Read computation explicitly
//
// There is no demotion from Write to Read.
//
// # Core Operations
//
// Construction:
//
//   - [New]: Wrap a session function
//   - [Return]: Lift a pure value
//   - [Fail]: A computation that fails with the given error
//   - [Ask], [Asks]: Read the running session
//
// Composition:
//
//   - [Map], [MapErr]: Transform the result without changing the tag
//   - [Bind], [BindWrite], [BindAfterWrite]: Sequence, passing the result on
//   - [Then], [ThenWrite]: Sequence, discarding the first result
//   - [Modify], [ModifyErr]: Mutate the produced entity in place; always Write
//
// Execution:
//
//   - [Run]: Execute against a session
//   - [IO.IsRead], [IO.IsWrite], [EffectOf]: Inspect the static tag
//
// # Execution Model
//
// Constructing a computation does nothing. [Run] executes it once against
// one session; the first failure short-circuits the rest of the chain and is
// returned unchanged. A computation value may be run any number of times and
// from several goroutines, each run against its own session.
//
// A session admits one execution at a time: a nested [Run] on the session
// already in use fails with store.ErrSessionBusy. Read-only sessions reject
// mutation at runtime, so a computation mislabeled Read cannot write.
//
// Opening sessions, committing writes and retrying conflicts is the job of
// package runner; the CRUD leaf computations live in package ops.
//
// # Example
//
//	remove := storeio.BindWrite(ops.MustByKey[Dog]("42"), func(d *Dog) storeio.IO[storeio.Write, ops.Void] {
//		return ops.Delete(d)
//	})
//	_, err := runner.Write(ctx, r, remove)
package storeio

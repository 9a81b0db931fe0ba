// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package store is the transactional object store that storeio computations
// run against.
//
// Objects are JSON encoded and kept as records keyed by (object type, primary
// key). A [Store] hands out sessions:
//
//   - [Store.BeginRead] opens a read-only [Session] over the committed state.
//     Every mutation fails with [ErrReadOnly].
//   - [Store.BeginWrite] opens a writable [Session] over a private copy.
//     [Session.Commit] publishes it, or fails with [ErrConflict] when another
//     commit won the race.
//
// The session offers an untyped record surface ([Session.Get], [Session.Put],
// [Session.Remove], ...) and a typed generic surface ([Objects], [Lookup],
// [Add], [Insert], [Delete], [DeleteType]). Typed objects read or inserted
// through a writable session are managed: mutate them in place and the commit
// stores their final state. Objects handed in by the caller are copied, never
// managed.
//
// Durability is delegated to a [Persister]; see the sqlite, postgres, redis
// and s3 subpackages.
package store

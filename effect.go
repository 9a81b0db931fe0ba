// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio

// Read tags computations that only observe the store.
// Read is the bottom of the effect lattice. It is a type-level label only:
// no value of Read ever flows through a computation.
type Read struct{ _ [0]func() }

// Write tags computations that may mutate the store.
// Write is the top of the effect lattice and absorbs Read under composition.
type Write struct{ _ [0]func() }

func (Read) isWrite() bool  { return false }
func (Write) isWrite() bool { return true }

// String returns the tag name used in logs and metric labels.
func (Read) String() string { return "read" }

// String returns the tag name used in logs and metric labels.
func (Write) String() string { return "write" }

// Effect is the closed set of effect tags.
//
// The type set admits exactly Read and Write, so a third tag cannot be
// introduced outside this package. The unexported method lets generic code
// ask a tag for its classification without storing it anywhere.
type Effect interface {
	Read | Write
	isWrite() bool
	String() string
}

// EffectOf returns the name of the effect tag E ("read" or "write").
func EffectOf[E Effect]() string {
	var e E
	return e.String()
}

// isWriteTag reports whether E is Write.
// Each instantiation resolves to a constant method on a zero-size value.
func isWriteTag[E Effect]() bool {
	var e E
	return e.isWrite()
}

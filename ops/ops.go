// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ops provides leaf computations over the store's CRUD surface.
//
// Every constructor is a pure construction: nothing touches the store until
// the returned computation is run. Lookups are tagged Read, mutations Write.
package ops

import (
	"fmt"

	"code.hybscloud.com/storeio"
	"code.hybscloud.com/storeio/store"
)

// Void is the result of computations that yield nothing.
type Void = struct{}

// KeyedPtr constrains P to *T implementing store.Object with a settable key.
type KeyedPtr[T any] interface {
	store.ObjectPtr[T]
	SetPrimaryKey(key string)
}

// All fetches every object of type T, sorted by primary key.
func All[T any, P store.ObjectPtr[T]]() storeio.IO[storeio.Read, []P] {
	return storeio.New[storeio.Read](func(s storeio.Session) ([]P, error) {
		return store.Objects[T, P](s)
	})
}

// ByKey fetches the object of type T with the given primary key.
// It yields nil when there is no such object.
func ByKey[T any, P store.ObjectPtr[T]](key string) storeio.IO[storeio.Read, P] {
	return storeio.New[storeio.Read](func(s storeio.Session) (P, error) {
		return store.Lookup[T, P](s, key)
	})
}

// MustByKey is ByKey failing with store.ErrNotFound when there is no such object.
func MustByKey[T any, P store.ObjectPtr[T]](key string) storeio.IO[storeio.Read, P] {
	return storeio.New[storeio.Read](func(s storeio.Session) (P, error) {
		obj, err := store.Lookup[T, P](s, key)
		if err != nil {
			return obj, err
		}
		if (*T)(obj) == nil {
			return obj, fmt.Errorf("%w: %s/%s", store.ErrNotFound, store.TypeOf[T, P](), key)
		}
		return obj, nil
	})
}

// Count yields the number of objects of type T.
func Count[T any, P store.ObjectPtr[T]]() storeio.IO[storeio.Read, int] {
	return storeio.New[storeio.Read](func(s storeio.Session) (int, error) {
		return s.Count(store.TypeOf[T, P]())
	})
}

// Instantiate yields a new unmanaged T with its primary key set.
// The object is not stored; pass it to Add to store it.
func Instantiate[T any, P KeyedPtr[T]](key string) storeio.IO[storeio.Read, P] {
	return storeio.New[storeio.Read](func(storeio.Session) (P, error) {
		p := P(new(T))
		p.SetPrimaryKey(key)
		return p, nil
	})
}

// Add inserts obj and yields the session-owned copy that was stored.
// An existing primary key fails with store.ErrDuplicateKey. obj itself is
// never modified or retained: mutate the yielded copy to change what the
// commit stores.
func Add[T any, P store.ObjectPtr[T]](obj P) storeio.IO[storeio.Write, P] {
	return add[T](obj, false)
}

// AddOrUpdate inserts obj, replacing any object with the same primary key.
// Like Add, it yields the session-owned copy.
func AddOrUpdate[T any, P store.ObjectPtr[T]](obj P) storeio.IO[storeio.Write, P] {
	return add[T](obj, true)
}

func add[T any, P store.ObjectPtr[T]](obj P, update bool) storeio.IO[storeio.Write, P] {
	return storeio.New[storeio.Write](func(s storeio.Session) (P, error) {
		return store.Insert[T](s, obj, update)
	})
}

// AddAll inserts every object in order, stopping at the first failure.
// It yields the session-owned copies.
func AddAll[T any, P store.ObjectPtr[T]](objs ...P) storeio.IO[storeio.Write, []P] {
	return addAll[T](objs, false)
}

// AddOrUpdateAll is AddOrUpdate over several objects.
func AddOrUpdateAll[T any, P store.ObjectPtr[T]](objs ...P) storeio.IO[storeio.Write, []P] {
	return addAll[T](objs, true)
}

func addAll[T any, P store.ObjectPtr[T]](objs []P, update bool) storeio.IO[storeio.Write, []P] {
	return storeio.New[storeio.Write](func(s storeio.Session) ([]P, error) {
		out := make([]P, 0, len(objs))
		for _, obj := range objs {
			p, err := store.Insert[T](s, obj, update)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	})
}

// Delete removes obj from the store.
func Delete(obj store.Object) storeio.IO[storeio.Write, Void] {
	return storeio.New[storeio.Write](func(s storeio.Session) (Void, error) {
		return Void{}, store.Delete(s, obj)
	})
}

// DeleteAll removes every object in order, stopping at the first failure.
func DeleteAll[P store.Object](objs ...P) storeio.IO[storeio.Write, Void] {
	return storeio.New[storeio.Write](func(s storeio.Session) (Void, error) {
		for _, obj := range objs {
			if err := store.Delete(s, obj); err != nil {
				return Void{}, err
			}
		}
		return Void{}, nil
	})
}

// DeleteType removes every object of type T.
func DeleteType[T any, P store.ObjectPtr[T]]() storeio.IO[storeio.Write, Void] {
	return storeio.New[storeio.Write](func(s storeio.Session) (Void, error) {
		return Void{}, store.DeleteType[T, P](s)
	})
}

// Reset removes every object of every type.
func Reset() storeio.IO[storeio.Write, Void] {
	return storeio.New[storeio.Write](func(s storeio.Session) (Void, error) {
		return Void{}, s.Clear()
	})
}

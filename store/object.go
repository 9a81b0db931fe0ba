// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Object is a storable entity.
// ObjectType names the collection it belongs to and must not depend on the
// receiver's state; PrimaryKey identifies it within that collection and must
// not change once the object is stored.
type Object interface {
	ObjectType() string
	PrimaryKey() string
}

// ObjectPtr constrains P to *T implementing Object.
// It lets typed lookups allocate a T and hand back a *T.
type ObjectPtr[T any] interface {
	*T
	Object
}

// TypeOf returns the object type name of T.
func TypeOf[T any, P ObjectPtr[T]]() string {
	return P(new(T)).ObjectType()
}

// Objects returns every object of type T, sorted by primary key.
//
// Through a writable session the returned objects are managed: repeated
// lookups return the same pointer, and their state at commit is what gets
// stored. Through a read-only session they are detached copies.
func Objects[T any, P ObjectPtr[T]](s *Session) ([]P, error) {
	typ := TypeOf[T, P]()
	records, err := s.List(typ)
	if err != nil {
		return nil, err
	}
	out := make([]P, 0, len(records))
	for _, r := range records {
		obj, err := materialize[T, P](s, typ, r.Key, r.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// Lookup returns the object of type T with the given primary key,
// or nil when there is none.
func Lookup[T any, P ObjectPtr[T]](s *Session, key string) (P, error) {
	typ := TypeOf[T, P]()
	payload, ok, err := s.Get(typ, key)
	if err != nil || !ok {
		var zero P
		return zero, err
	}
	return materialize[T, P](s, typ, key, payload)
}

// materialize decodes a record, reusing the managed instance when there is one.
func materialize[T any, P ObjectPtr[T]](s *Session, typ, key string, payload json.RawMessage) (P, error) {
	k := recordKey{typ, key}
	if obj, ok := s.managed[k]; ok {
		if p, ok := obj.(P); ok {
			return p, nil
		}
	}
	p := P(new(T))
	if err := json.Unmarshal(payload, p); err != nil {
		var zero P
		return zero, fmt.Errorf("store: decode %s/%s: %w", typ, key, err)
	}
	if s.writable {
		s.managed[k] = p
	}
	return p, nil
}

// Add stores a snapshot of obj. Without update, an existing primary key
// fails with [ErrDuplicateKey]; with update, the stored object is replaced.
// obj stays owned by the caller: later mutations to it are not stored.
func Add(s *Session, obj Object, update bool) error {
	_, err := put(s, obj, update)
	return err
}

// Insert is [Add] for a typed object. It returns the session-owned copy
// decoded from what was stored; through a writable session that copy is
// managed, and its state at commit is what gets stored. obj itself is never
// retained, so a computation re-run after a conflict starts from the value
// the caller built.
func Insert[T any, P ObjectPtr[T]](s *Session, obj P, update bool) (P, error) {
	payload, err := put(s, obj, update)
	if err != nil {
		var zero P
		return zero, err
	}
	return materialize[T, P](s, obj.ObjectType(), obj.PrimaryKey(), payload)
}

func put(s *Session, obj Object, update bool) (json.RawMessage, error) {
	if isNil(obj) {
		return nil, fmt.Errorf("%w: nil object", ErrInvalidObject)
	}
	typ, key := obj.ObjectType(), obj.PrimaryKey()
	payload, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s/%s: %w", typ, key, err)
	}
	if err := s.Put(typ, key, payload, update); err != nil {
		return nil, err
	}
	return payload, nil
}

// Update stores obj, replacing any record under its primary key.
func Update(s *Session, obj Object) error {
	return Add(s, obj, true)
}

// Delete removes obj from the store.
func Delete(s *Session, obj Object) error {
	if isNil(obj) {
		return fmt.Errorf("%w: nil object", ErrInvalidObject)
	}
	return s.Remove(obj.ObjectType(), obj.PrimaryKey())
}

// DeleteType removes every object of type T.
func DeleteType[T any, P ObjectPtr[T]](s *Session) error {
	return s.Truncate(TypeOf[T, P]())
}

// isNil reports whether obj is nil or a typed nil pointer.
func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ops

import (
	"encoding/json"
	"fmt"

	"code.hybscloud.com/storeio"
	"code.hybscloud.com/storeio/store"
)

// Untyped record computations, for hosts that do not know the Go types of
// the objects they handle.

// RawTypes yields the object types that hold records.
func RawTypes() storeio.IO[storeio.Read, []string] {
	return storeio.New[storeio.Read](func(s storeio.Session) ([]string, error) {
		return s.Types()
	})
}

// RawGet yields the record under (typ, key), failing with store.ErrNotFound.
func RawGet(typ, key string) storeio.IO[storeio.Read, store.Record] {
	return storeio.New[storeio.Read](func(s storeio.Session) (store.Record, error) {
		payload, ok, err := s.Get(typ, key)
		if err != nil {
			return store.Record{}, err
		}
		if !ok {
			return store.Record{}, fmt.Errorf("%w: %s/%s", store.ErrNotFound, typ, key)
		}
		return store.Record{Type: typ, Key: key, Payload: payload}, nil
	})
}

// RawList yields every record of typ, sorted by key.
func RawList(typ string) storeio.IO[storeio.Read, []store.Record] {
	return storeio.New[storeio.Read](func(s storeio.Session) ([]store.Record, error) {
		return s.List(typ)
	})
}

// RawPut stores payload under (typ, key) and yields the stored record.
func RawPut(typ, key string, payload json.RawMessage, update bool) storeio.IO[storeio.Write, store.Record] {
	return storeio.New[storeio.Write](func(s storeio.Session) (store.Record, error) {
		if err := s.Put(typ, key, payload, update); err != nil {
			return store.Record{}, err
		}
		return store.Record{Type: typ, Key: key, Payload: payload}, nil
	})
}

// RawRemove deletes the record under (typ, key).
func RawRemove(typ, key string) storeio.IO[storeio.Write, Void] {
	return storeio.New[storeio.Write](func(s storeio.Session) (Void, error) {
		return Void{}, s.Remove(typ, key)
	})
}

// RawTruncate deletes every record of typ.
func RawTruncate(typ string) storeio.IO[storeio.Write, Void] {
	return storeio.New[storeio.Write](func(s storeio.Session) (Void, error) {
		return Void{}, s.Truncate(typ)
	})
}

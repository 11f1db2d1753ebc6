// Copyright 2021 by the Authors
// This file is part of the go-lumen library.
//
// The go-lumen library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-lumen library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-lumen library. If not, see <http://www.gnu.org/licenses/>.

package memorydb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseBasics(t *testing.T) {
	db := New()
	defer db.Close()

	if _, err := db.Get([]byte("foo")); err != ErrMemorydbNotFound {
		t.Errorf("get on missing key: got %v, want %v", err, ErrMemorydbNotFound)
	}
	assert.NoError(t, db.Put([]byte("foo"), []byte("bar")))

	has, err := db.Has([]byte("foo"))
	assert.NoError(t, err)
	assert.True(t, has)

	val, err := db.Get([]byte("foo"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("bar"), val)

	// The store must hold a copy, not the caller's slice.
	val[0] = 'x'
	val, _ = db.Get([]byte("foo"))
	assert.Equal(t, []byte("bar"), val)

	assert.NoError(t, db.Delete([]byte("foo")))
	has, _ = db.Has([]byte("foo"))
	assert.False(t, has)
}

func TestDatabaseBatch(t *testing.T) {
	db := New()
	defer db.Close()

	db.Put([]byte("a"), []byte("1"))

	b := db.NewBatch()
	b.Put([]byte("b"), []byte("2"))
	b.Put([]byte("c"), []byte("3"))
	b.Delete([]byte("a"))

	// Nothing visible before Write.
	if has, _ := db.Has([]byte("b")); has {
		t.Fatal("batch write leaked before commit")
	}
	assert.NoError(t, b.Write())

	if has, _ := db.Has([]byte("a")); has {
		t.Error("batched delete not applied")
	}
	if has, _ := db.Has([]byte("c")); !has {
		t.Error("batched put not applied")
	}

	b.Reset()
	assert.Equal(t, 0, b.ValueSize())
}

func TestDatabaseIterator(t *testing.T) {
	db := New()
	defer db.Close()

	db.Put([]byte("pa"), []byte("1"))
	db.Put([]byte("pb"), []byte("2"))
	db.Put([]byte("qc"), []byte("3"))

	var keys []string
	it := db.NewIterator([]byte("p"), nil)
	defer it.Release()
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.NoError(t, it.Error())
	assert.Equal(t, []string{"pa", "pb"}, keys)

	// Start position applies within the prefix.
	it2 := db.NewIterator([]byte("p"), []byte("b"))
	defer it2.Release()
	if !it2.Next() || !bytes.Equal(it2.Key(), []byte("pb")) {
		t.Errorf("start offset ignored, got %q", it2.Key())
	}
}

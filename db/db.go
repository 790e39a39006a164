// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package db caches compiled modules in a bolt database, keyed by a
// hash of everything that determines the compiler's output.
package db

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/blake2b"
	"time"
)

const (
	InitialMmapSize = 1024 * 1024 * 16 // 16MB
	Perm            = 0700
)

var ModuleBucket = []byte("modules")

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, e := bolt.Open(path, Perm, &bolt.Options{
		InitialMmapSize: InitialMmapSize,
		Timeout:         time.Second * 3,
	})
	if e != nil {
		return nil, errors.Wrapf(e, "opening data file %s", path)
	}
	e = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(ModuleBucket)
		return e
	})
	if e != nil {
		db.Close()
		return nil, errors.Wrap(e, "creating module bucket")
	}
	logrus.WithField("path", path).Debug("opened module cache")
	return &Store{db}, nil
}

func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "closing data file")
}

// Key identifies a compilation: the same source compiled with the same
// codec, strategy and export always yields the same module.
func Key(source, codec, strategy, export string) []byte {
	h, e := blake2b.New256(nil)
	if e != nil {
		panic(e) // only fails for oversized keys
	}
	for _, part := range []string{codec, strategy, export, source} {
		var n [4]byte
		l := len(part)
		n[0], n[1], n[2], n[3] = byte(l>>24), byte(l>>16), byte(l>>8), byte(l)
		h.Write(n[:])
		h.Write([]byte(part))
	}
	return h.Sum(nil)
}

// Get returns the cached module for key, or nil if there is none.
func (s *Store) Get(key []byte) ([]byte, error) {
	var out []byte
	e := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(ModuleBucket).Get(key); v != nil {
			out = append([]byte(nil), v...) // v is only valid inside the transaction
		}
		return nil
	})
	if e != nil {
		return nil, errors.Wrap(e, "reading module cache")
	}
	return out, nil
}

func (s *Store) Put(key, module []byte) error {
	e := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ModuleBucket).Put(key, module)
	})
	return errors.Wrap(e, "writing module cache")
}

// Len returns the number of cached modules.
func (s *Store) Len() (int, error) {
	n := 0
	e := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(ModuleBucket).Stats().KeyN
		return nil
	})
	return n, errors.Wrap(e, "reading module cache")
}

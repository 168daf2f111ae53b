package service

import (
	"context"

	"github.com/go-jose/go-jose/v4"
)

// StaticKeySet is a fixed KeySet for tests and offline verification.
type StaticKeySet struct {
	keys map[string]jose.JSONWebKey
}

// NewStaticKeySet builds a StaticKeySet from public keys. Keys without a kid are ignored.
func NewStaticKeySet(keys ...jose.JSONWebKey) *StaticKeySet {
	set := &StaticKeySet{keys: make(map[string]jose.JSONWebKey, len(keys))}
	for _, k := range keys {
		if k.KeyID == "" {
			continue
		}
		set.keys[k.KeyID] = k
	}
	return set
}

// LookupKey returns the key for kid.
func (s *StaticKeySet) LookupKey(_ context.Context, kid string) (*jose.JSONWebKey, error) {
	k, ok := s.keys[kid]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &k, nil
}

// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"math/rand/v2"
	"slices"
)

// EndpointSelector picks an endpoint from a pool of equivalent indexers.
type EndpointSelector interface {
	// Select returns an endpoint that is not among exclude. It returns
	// ErrNoEndpoint when every endpoint is excluded.
	Select(exclude ...string) (string, error)

	// Endpoints returns the full pool.
	Endpoints() []string
}

// A compile-time assertion to ensure the selectors satisfy the
// EndpointSelector interface.
var (
	_ EndpointSelector = (*RandomSelector)(nil)
	_ EndpointSelector = (*StaticSelector)(nil)
)

// RandomSelector selects uniformly at random among the endpoints that are not
// excluded. It keeps no state between calls.
type RandomSelector struct {
	endpoints []string
}

// NewRandomSelector creates a random selector over the given pool.
func NewRandomSelector(endpoints ...string) *RandomSelector {
	return &RandomSelector{endpoints: slices.Clone(endpoints)}
}

// Select returns a random endpoint not in exclude.
func (r *RandomSelector) Select(exclude ...string) (string, error) {
	candidates := remaining(r.endpoints, exclude)
	if len(candidates) == 0 {
		return "", ErrNoEndpoint
	}

	return candidates[rand.IntN(len(candidates))], nil
}

// Endpoints returns the pool.
func (r *RandomSelector) Endpoints() []string {
	return slices.Clone(r.endpoints)
}

// StaticSelector always selects the first endpoint, in pool order, that is
// not excluded.
type StaticSelector struct {
	endpoints []string
}

// NewStaticSelector creates an ordered selector over the given pool.
func NewStaticSelector(endpoints ...string) *StaticSelector {
	return &StaticSelector{endpoints: slices.Clone(endpoints)}
}

// Select returns the first endpoint not in exclude.
func (s *StaticSelector) Select(exclude ...string) (string, error) {
	candidates := remaining(s.endpoints, exclude)
	if len(candidates) == 0 {
		return "", ErrNoEndpoint
	}

	return candidates[0], nil
}

// Endpoints returns the pool.
func (s *StaticSelector) Endpoints() []string {
	return slices.Clone(s.endpoints)
}

// remaining returns the endpoints that are not in exclude.
func remaining(endpoints, exclude []string) []string {
	out := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if !slices.Contains(exclude, e) {
			out = append(out, e)
		}
	}

	return out
}

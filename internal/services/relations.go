package services

import (
	"sort"

	"dating-app/internal/models"
)

// Predicate selects one of the derived views of the like relation.
type Predicate string

const (
	PredicateLiked   Predicate = "liked"
	PredicateLikedBy Predicate = "likedBy"
	PredicateMutual  Predicate = "mutual"
)

func (p Predicate) Valid() bool {
	switch p {
	case PredicateLiked, PredicateLikedBy, PredicateMutual:
		return true
	}
	return false
}

// Edge is an ordered (source, target) pair.
type Edge struct {
	Source string
	Target string
}

// EdgeSet is a set of like edges.
type EdgeSet map[Edge]struct{}

func NewEdgeSet(likes []models.Like) EdgeSet {
	set := make(EdgeSet, len(likes))
	for _, l := range likes {
		set[Edge{Source: l.SourceUserID, Target: l.LikedUserID}] = struct{}{}
	}
	return set
}

func (s EdgeSet) Has(source, target string) bool {
	_, ok := s[Edge{Source: source, Target: target}]
	return ok
}

// Liked returns the members viewer has liked.
func (s EdgeSet) Liked(viewer string) map[string]struct{} {
	out := make(map[string]struct{})
	for e := range s {
		if e.Source == viewer {
			out[e.Target] = struct{}{}
		}
	}
	return out
}

// LikedBy returns the members who have liked viewer.
func (s EdgeSet) LikedBy(viewer string) map[string]struct{} {
	out := make(map[string]struct{})
	for e := range s {
		if e.Target == viewer {
			out[e.Source] = struct{}{}
		}
	}
	return out
}

// Mutual is Liked(viewer) ∩ LikedBy(viewer).
func (s EdgeSet) Mutual(viewer string) map[string]struct{} {
	liked := s.Liked(viewer)
	likedBy := s.LikedBy(viewer)

	out := make(map[string]struct{})
	for id := range liked {
		if _, ok := likedBy[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Select evaluates predicate for viewer and returns the member IDs sorted.
func (s EdgeSet) Select(viewer string, predicate Predicate) []string {
	var ids map[string]struct{}
	switch predicate {
	case PredicateLiked:
		ids = s.Liked(viewer)
	case PredicateLikedBy:
		ids = s.LikedBy(viewer)
	case PredicateMutual:
		ids = s.Mutual(viewer)
	}

	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Package geo answers nearest-branch lookups by coordinate or postcode.
package geo

import (
	"context"
	"math"
	"os"
	"sort"
	"sync/atomic"

	"storeassist/internal/models"
	"storeassist/internal/retrieval/policy"
	"storeassist/internal/retrieval/storage"
)

// Geocoder resolves a normalized postcode to a coordinate pair. Returning
// false means the postcode could not be resolved; the store then degrades
// to prefix matching.
type Geocoder interface {
	Geocode(ctx context.Context, postcode string) (lat, lon float64, ok bool)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, postcode string) (float64, float64, bool)

func (f GeocoderFunc) Geocode(ctx context.Context, postcode string) (float64, float64, bool) {
	return f(ctx, postcode)
}

const earthRadiusKm = 6371.0

// HaversineKm computes the great-circle distance between two coordinates
// on a spherical-earth approximation.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(s))
}

type snapshot struct {
	branches  []models.Branch
	byID      map[string]*models.Branch
	byOutward map[string][]*models.Branch
	prefixes  []string // sorted delivery outward prefixes
}

// Store indexes branches for nearest lookups and exposes the delivery
// coverage prefixes the router uses for clarifier hints.
type Store struct {
	storage *storage.Storage
	snap    atomic.Pointer[snapshot]
}

func New(st *storage.Storage) (*Store, error) {
	s := &Store{storage: st}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads branches.json and delivery.json. Missing files yield an
// empty index.
func (s *Store) Reload() error {
	var branches []models.Branch
	if err := s.storage.ReadJSON(storage.FileBranches, &branches); err != nil && !os.IsNotExist(err) {
		return err
	}

	var delivery models.DeliveryDocument
	if err := s.storage.ReadJSON(storage.FileDelivery, &delivery); err != nil && !os.IsNotExist(err) {
		return err
	}

	snap := &snapshot{
		branches:  branches,
		byID:      make(map[string]*models.Branch, len(branches)),
		byOutward: map[string][]*models.Branch{},
	}
	for i := range branches {
		b := &branches[i]
		snap.byID[b.ID] = b
		if out := policy.OutwardPrefix(b.Postcode); out != "" {
			snap.byOutward[out] = append(snap.byOutward[out], b)
		}
	}

	seen := map[string]struct{}{}
	for _, a := range delivery.Areas {
		if p := policy.OutwardPrefix(a.PostcodePrefix); p != "" {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				snap.prefixes = append(snap.prefixes, p)
			}
		}
	}
	sort.Strings(snap.prefixes)

	s.snap.Store(snap)
	return nil
}

func (s *Store) Branches() []models.Branch {
	return s.snap.Load().branches
}

func (s *Store) BranchByID(id string) (*models.Branch, bool) {
	b, ok := s.snap.Load().byID[id]
	return b, ok
}

// CoveragePrefixes returns the sorted deliverable outward prefixes.
func (s *Store) CoveragePrefixes() []string {
	return s.snap.Load().prefixes
}

// Nearest returns the branch closest to a coordinate by great-circle
// distance. Deterministic for a fixed branch set: ties keep the earlier
// branch in document order.
func (s *Store) Nearest(lat, lon float64) (models.NearestBranch, bool) {
	snap := s.snap.Load()
	if len(snap.branches) == 0 {
		return models.NearestBranch{}, false
	}
	best := -1
	bestDist := math.Inf(1)
	for i := range snap.branches {
		d := HaversineKm(lat, lon, snap.branches[i].Lat, snap.branches[i].Lon)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return models.NearestBranch{
		Branch:     snap.branches[best],
		DistanceKm: math.Round(bestDist*1000) / 1000,
	}, true
}

// NearestForPostcode resolves the nearest branch for a postcode. With a
// working geocoder this is a true distance lookup; otherwise branches
// sharing the outward prefix are matched, smallest branch id winning. If
// nothing matches, the branch with the smallest id overall is returned
// with LowConfidence set so callers can soften their wording.
func (s *Store) NearestForPostcode(ctx context.Context, postcode string, geocoder Geocoder) (models.NearestBranch, bool) {
	pc := policy.NormPostcode(postcode)
	snap := s.snap.Load()
	if pc == "" || len(snap.branches) == 0 {
		return models.NearestBranch{}, false
	}

	if geocoder != nil {
		if lat, lon, ok := geocoder.Geocode(ctx, pc); ok {
			return s.Nearest(lat, lon)
		}
	}

	if candidates := snap.byOutward[policy.OutwardPrefix(pc)]; len(candidates) > 0 {
		best := candidates[0]
		for _, b := range candidates[1:] {
			if b.ID < best.ID {
				best = b
			}
		}
		return models.NearestBranch{Branch: *best}, true
	}

	first := &snap.branches[0]
	for i := range snap.branches {
		if snap.branches[i].ID < first.ID {
			first = &snap.branches[i]
		}
	}
	return models.NearestBranch{Branch: *first, LowConfidence: true}, true
}

// Package policy resolves delivery terms by postcode and answers branch
// opening-hours questions.
package policy

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"storeassist/internal/models"
	"storeassist/internal/retrieval/storage"
)

// NormPostcode upper-cases a postcode and strips all whitespace.
func NormPostcode(pc string) string {
	return strings.ToUpper(strings.Join(strings.Fields(pc), ""))
}

// OutwardPrefix extracts the outward part of a normalized postcode: all
// but the last 3 characters when longer than 3, else the whole string.
// Deliberately simple; it does not validate real postal grammar.
func OutwardPrefix(pc string) string {
	pc = NormPostcode(pc)
	if len(pc) > 3 {
		return pc[:len(pc)-3]
	}
	return pc
}

type snapshot struct {
	delivery models.DeliveryDocument
	branches map[string]*models.Branch
}

// Store answers delivery and opening-hours lookups. Reload swaps the
// parsed documents atomically.
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

// Reload re-reads delivery.json and branches.json. Missing files yield
// empty documents.
func (s *Store) Reload() error {
	var delivery models.DeliveryDocument
	if err := s.storage.ReadJSON(storage.FileDelivery, &delivery); err != nil && !os.IsNotExist(err) {
		return err
	}

	var branches []models.Branch
	if err := s.storage.ReadJSON(storage.FileBranches, &branches); err != nil && !os.IsNotExist(err) {
		return err
	}

	byID := make(map[string]*models.Branch, len(branches))
	for i := range branches {
		byID[branches[i].ID] = &branches[i]
	}

	s.snap.Store(&snapshot{delivery: delivery, branches: byID})
	return nil
}

// RuleFor resolves the effective delivery rule for a postcode. An exact
// exception always beats an outward-prefix area rule; first match wins at
// each level. Returns false when the postcode is uncovered.
func (s *Store) RuleFor(postcode string) (models.DeliveryRule, bool) {
	pc := NormPostcode(postcode)
	if pc == "" {
		return models.DeliveryRule{}, false
	}

	snap := s.snap.Load()
	for _, ex := range snap.delivery.Exceptions {
		if NormPostcode(ex.Postcode) == pc {
			return models.DeliveryRule{
				Fee:      ex.Fee,
				MinOrder: ex.MinOrder,
				EtaMin:   ex.EtaMin,
				Source:   models.RuleSourceException,
			}, true
		}
	}

	pref := OutwardPrefix(pc)
	for _, ar := range snap.delivery.Areas {
		if NormPostcode(ar.PostcodePrefix) == pref {
			return models.DeliveryRule{
				Fee:      ar.Fee,
				MinOrder: ar.MinOrder,
				EtaMin:   ar.EtaMin,
				Source:   models.RuleSourcePrefix,
			}, true
		}
	}

	return models.DeliveryRule{}, false
}

// Summary formats the effective rule for a postcode as a short human
// string, e.g. "£2.50 fee, min £15.00, ~40 mins". Returns false when the
// postcode is uncovered.
func (s *Store) Summary(postcode string) (string, bool) {
	rule, ok := s.RuleFor(postcode)
	if !ok {
		return "", false
	}
	parts := []string{fmt.Sprintf("£%.2f fee", rule.Fee)}
	if rule.MinOrder > 0 {
		parts = append(parts, fmt.Sprintf("min £%.2f", rule.MinOrder))
	}
	if rule.EtaMin > 0 {
		parts = append(parts, fmt.Sprintf("~%d mins", rule.EtaMin))
	}
	return strings.Join(parts, ", "), true
}

// ClickAndCollectEnabled defaults to true when the document omits the flag.
func (s *Store) ClickAndCollectEnabled() bool {
	v := s.snap.Load().delivery.ClickAndCollect
	if v == nil {
		return true
	}
	return *v
}

// Notes returns the free-text delivery notes, if any.
func (s *Store) Notes() string {
	return s.snap.Load().delivery.Notes
}

var weekdays = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// IsOpen reports whether a branch is open at the given time per its
// "09:00-18:00" style hours. The second return is false for an unknown
// branch or an unparseable range.
func (s *Store) IsOpen(branchID string, at time.Time) (bool, bool) {
	br, ok := s.snap.Load().branches[branchID]
	if !ok {
		return false, false
	}
	rng, ok := br.Hours[weekdays[at.Weekday()]]
	if !ok || rng == "" {
		// no hours for the day means closed
		return false, true
	}
	start, end, ok := parseRange(rng)
	if !ok {
		return false, false
	}
	cur := at.Hour()*100 + at.Minute()
	return start <= cur && cur <= end, true
}

// OpenRangeToday returns the raw hours string for the branch on the day
// of the given time, or false when the branch is unknown or closed.
func (s *Store) OpenRangeToday(branchID string, at time.Time) (string, bool) {
	br, ok := s.snap.Load().branches[branchID]
	if !ok {
		return "", false
	}
	rng, ok := br.Hours[weekdays[at.Weekday()]]
	if !ok || rng == "" {
		return "", false
	}
	return rng, true
}

func parseRange(rng string) (start, end int, ok bool) {
	parts := strings.SplitN(rng, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok = parseClock(parts[0])
	if !ok {
		return 0, 0, false
	}
	end, ok = parseClock(parts[1])
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func parseClock(s string) (int, bool) {
	digits := strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

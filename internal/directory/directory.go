// Package directory holds the normalized user store: records by id plus a
// secondary index from group key to the ids in that group.
//
// Snapshots are immutable. Maps and slices may be shared between snapshots,
// so every transition copies what it changes.
package directory

import (
	"slices"
	"sort"

	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/domain"
)

type Snapshot struct {
	byID    map[string]domain.User
	byGroup map[string][]string
}

func Empty() *Snapshot {
	return &Snapshot{
		byID:    map[string]domain.User{},
		byGroup: map[string][]string{},
	}
}

// Apply returns the snapshot that results from a. Invalid payloads and
// non-directory actions return s unchanged.
func Apply(s *Snapshot, a action.Action) *Snapshot {
	if s == nil {
		s = Empty()
	}

	switch a := a.(type) {
	case action.UpsertUser:
		return s.upsert(a.User)
	case action.AssociateUser:
		return s.associate(a.ID, a.GroupKey)
	case action.RemoveUser:
		return s.remove(a.ID)
	default:
		return s
	}
}

// upsert replaces the whole record. An existing group association wins over
// the incoming GroupKey so that byGroup and byID never disagree.
func (s *Snapshot) upsert(user domain.User) *Snapshot {
	if user.ID == "" {
		return s
	}
	if g := s.groupOf(user.ID); g != "" {
		user.GroupKey = g
	}

	byID := s.cloneByID()
	byID[user.ID] = user
	return &Snapshot{byID: byID, byGroup: s.byGroup}
}

func (s *Snapshot) associate(id, groupKey string) *Snapshot {
	if id == "" || groupKey == "" {
		return s
	}

	current := s.groupOf(id)
	record, hasRecord := s.byID[id]
	if current == groupKey && (!hasRecord || record.GroupKey == groupKey) {
		return s
	}

	byGroup := s.cloneByGroup()
	if current != "" && current != groupKey {
		removeMember(byGroup, current, id)
	}
	if current != groupKey {
		members := byGroup[groupKey]
		byGroup[groupKey] = append(slices.Clip(members), id)
	}

	byID := s.byID
	if hasRecord {
		byID = s.cloneByID()
		record.GroupKey = groupKey
		byID[id] = record
	}
	return &Snapshot{byID: byID, byGroup: byGroup}
}

func (s *Snapshot) remove(id string) *Snapshot {
	record, ok := s.byID[id]
	if !ok {
		return s
	}

	byID := s.cloneByID()
	delete(byID, id)

	byGroup := s.byGroup
	if g := s.groupOf(id); g != "" || record.GroupKey != "" {
		byGroup = s.cloneByGroup()
		if g != "" {
			removeMember(byGroup, g, id)
		}
		if record.GroupKey != "" && record.GroupKey != g {
			removeMember(byGroup, record.GroupKey, id)
		}
	}
	return &Snapshot{byID: byID, byGroup: byGroup}
}

// groupOf returns the group holding id, or "" when id is in none.
func (s *Snapshot) groupOf(id string) string {
	for g, members := range s.byGroup {
		if slices.Contains(members, id) {
			return g
		}
	}
	return ""
}

func (s *Snapshot) cloneByID() map[string]domain.User {
	byID := make(map[string]domain.User, len(s.byID)+1)
	for id, user := range s.byID {
		byID[id] = user
	}
	return byID
}

func (s *Snapshot) cloneByGroup() map[string][]string {
	byGroup := make(map[string][]string, len(s.byGroup)+1)
	for g, members := range s.byGroup {
		byGroup[g] = members
	}
	return byGroup
}

// removeMember drops id from byGroup[g] without touching the shared slice.
// Groups left empty are deleted.
func removeMember(byGroup map[string][]string, g, id string) {
	members, ok := byGroup[g]
	if !ok {
		return
	}
	kept := make([]string, 0, len(members))
	for _, m := range members {
		if m != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		delete(byGroup, g)
		return
	}
	byGroup[g] = kept
}

func (s *Snapshot) User(id string) (domain.User, bool) {
	user, ok := s.byID[id]
	return user, ok
}

func (s *Snapshot) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Snapshot) Len() int {
	return len(s.byID)
}

// Users returns every record ordered by id.
func (s *Snapshot) Users() []domain.User {
	out := make([]domain.User, 0, len(s.byID))
	for _, user := range s.byID {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Group returns the ids associated with groupKey in association order.
func (s *Snapshot) Group(groupKey string) []string {
	return slices.Clone(s.byGroup[groupKey])
}

// Groups returns the known group keys, sorted.
func (s *Snapshot) Groups() []string {
	keys := make([]string, 0, len(s.byGroup))
	for g := range s.byGroup {
		keys = append(keys, g)
	}
	sort.Strings(keys)
	return keys
}

package group

import (
	"mpc-coordinator/internal/common"
	"sync"
)

// Registry manages groups and the index of which groups each key belongs to.
type Registry struct {
	mu          sync.RWMutex
	groups      map[string]*Group
	memberships map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groups:      make(map[string]*Group),
		memberships: make(map[string][]string),
	}
}

// Upsert creates the group if it does not exist yet, then records pubkey's
// signature and membership. The info of an existing group is left untouched.
// It reports whether this call created the group.
func (r *Registry) Upsert(groupID string, info []byte, pubkey string, signature []byte) bool {
	r.mu.Lock()
	g, exists := r.groups[groupID]
	if !exists {
		g = newGroup(groupID, info)
		r.groups[groupID] = g
	}
	r.addMembership(pubkey, groupID)
	g.sign(pubkey, signature)
	r.mu.Unlock()
	return !exists
}

// addMembership appends groupID to pubkey's index once. Caller holds r.mu.
func (r *Registry) addMembership(pubkey, groupID string) {
	for _, id := range r.memberships[pubkey] {
		if id == groupID {
			return
		}
	}
	r.memberships[pubkey] = append(r.memberships[pubkey], groupID)
}

// Get retrieves a group by id.
func (r *Registry) Get(groupID string) (*Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[groupID]
	if !ok {
		return nil, common.NotFound("group %s", groupID)
	}
	return g, nil
}

// List returns the groups pubkey has joined, in join order. It is never nil.
func (r *Registry) List(pubkey string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.memberships[pubkey]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Len reports the number of groups.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

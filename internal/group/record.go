package group

import "mpc-coordinator/internal/session"

// Record is the persisted form of a group and the sessions it owns.
type Record struct {
	ID         string                               `msgpack:"id"`
	Info       []byte                               `msgpack:"info"`
	Signatures map[string][]byte                    `msgpack:"signatures"`
	Artifacts  map[ArtifactKind]map[string]Artifact `msgpack:"artifacts"`
	Sessions   map[string]session.Record            `msgpack:"sessions"`
}

// Record captures the group's current state.
func (g *Group) Record() Record {
	g.mu.RLock()
	r := Record{
		ID:         g.ID,
		Info:       clone(g.Info),
		Signatures: make(map[string][]byte, len(g.signatures)),
		Artifacts:  make(map[ArtifactKind]map[string]Artifact, len(g.artifacts)),
	}
	for k, sig := range g.signatures {
		r.Signatures[k] = clone(sig)
	}
	for kind, byParty := range g.artifacts {
		m := make(map[string]Artifact, len(byParty))
		for k, a := range byParty {
			m[k] = Artifact{Value: clone(a.Value), Signature: clone(a.Signature)}
		}
		r.Artifacts[kind] = m
	}
	g.mu.RUnlock()

	r.Sessions = g.Sessions.Export()
	return r
}

func fromRecord(r Record) *Group {
	g := newGroup(r.ID, r.Info)
	for k, sig := range r.Signatures {
		g.signatures[k] = clone(sig)
	}
	for kind, byParty := range r.Artifacts {
		if _, ok := g.artifacts[kind]; !ok {
			continue
		}
		for k, a := range byParty {
			g.artifacts[kind][k] = Artifact{Value: clone(a.Value), Signature: clone(a.Signature)}
		}
	}
	g.Sessions.Import(r.Sessions)
	return g
}

// Export captures every group and the membership index.
func (r *Registry) Export() (map[string]Record, map[string][]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make(map[string]Record, len(r.groups))
	for id, g := range r.groups {
		groups[id] = g.Record()
	}
	memberships := make(map[string][]string, len(r.memberships))
	for k, ids := range r.memberships {
		memberships[k] = append([]string(nil), ids...)
	}
	return groups, memberships
}

// Import replaces the registry contents. Duplicate ids in a membership list
// are collapsed.
func (r *Registry) Import(groups map[string]Record, memberships map[string][]string) {
	freshGroups := make(map[string]*Group, len(groups))
	for id, rec := range groups {
		if rec.ID == "" {
			rec.ID = id
		}
		freshGroups[id] = fromRecord(rec)
	}
	freshMemberships := make(map[string][]string, len(memberships))
	for k, ids := range memberships {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				freshMemberships[k] = append(freshMemberships[k], id)
			}
		}
	}

	r.mu.Lock()
	r.groups = freshGroups
	r.memberships = freshMemberships
	r.mu.Unlock()
}

package group

import (
	"mpc-coordinator/internal/common"
	"mpc-coordinator/internal/session"
	"sync"
)

// ArtifactKind names a per-party key-generation artifact kept on a group.
type ArtifactKind string

const (
	KeygenShareData     ArtifactKind = "shareData"
	IndividualPublicKey ArtifactKind = "individualPublicKey"
	GroupKeyInfo        ArtifactKind = "groupKeyInfo"
)

var artifactKinds = []ArtifactKind{KeygenShareData, IndividualPublicKey, GroupKeyInfo}

// ParseArtifactKind validates a kind received from a caller.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	for _, k := range artifactKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", common.InvalidRequest("unknown artifact kind %q", s)
}

// Artifact is an opaque key-generation value with the publisher's signature
// over it. Neither is verified here.
type Artifact struct {
	Value     []byte `msgpack:"value" json:"value"`
	Signature []byte `msgpack:"signature" json:"signature"`
}

// Group is a named set of parties. Info is fixed by whoever stored the group
// first; signatures and artifacts are per party and overwritten on repeat.
type Group struct {
	ID   string
	Info []byte

	// Sessions is created with the group and never replaced.
	Sessions *session.Store

	mu         sync.RWMutex
	signatures map[string][]byte
	artifacts  map[ArtifactKind]map[string]Artifact
}

func newGroup(id string, info []byte) *Group {
	g := &Group{
		ID:         id,
		Info:       clone(info),
		Sessions:   session.NewStore(),
		signatures: make(map[string][]byte),
		artifacts:  make(map[ArtifactKind]map[string]Artifact, len(artifactKinds)),
	}
	for _, k := range artifactKinds {
		g.artifacts[k] = make(map[string]Artifact)
	}
	return g
}

func (g *Group) sign(pubkey string, signature []byte) {
	g.mu.Lock()
	g.signatures[pubkey] = clone(signature)
	g.mu.Unlock()
}

// Descriptor returns the group info together with pubkey's signature over it.
func (g *Group) Descriptor(pubkey string) (info, signature []byte, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sig, ok := g.signatures[pubkey]
	if !ok {
		return nil, nil, common.NotFound("%s has not signed group %s", pubkey, g.ID)
	}
	return clone(g.Info), clone(sig), nil
}

// PutArtifact stores pubkey's artifact of the given kind.
func (g *Group) PutArtifact(kind ArtifactKind, pubkey string, value, signature []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.artifacts[kind][pubkey] = Artifact{Value: clone(value), Signature: clone(signature)}
}

// Artifact returns pubkey's artifact of the given kind.
func (g *Group) Artifact(kind ArtifactKind, pubkey string) (Artifact, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	byParty, ok := g.artifacts[kind]
	if !ok {
		return Artifact{}, common.InvalidRequest("unknown artifact kind %q", kind)
	}
	a, ok := byParty[pubkey]
	if !ok {
		return Artifact{}, common.NotFound("no %s from %s in group %s", kind, pubkey, g.ID)
	}
	return Artifact{Value: clone(a.Value), Signature: clone(a.Signature)}, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

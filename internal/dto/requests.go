package dto

import "mpc-coordinator/internal/session"

// StoreEntityInfoRequest stores an artifact under a fingerprint.
type StoreEntityInfoRequest struct {
	Fingerprint string   `json:"fingerprint" binding:"required"`
	EntityInfo  HexBytes `json:"entityInfo" binding:"required"`
}

// EntityInfoResponse carries a cached artifact. Found is false and EntityInfo
// empty when the fingerprint is unknown.
type EntityInfoResponse struct {
	Fingerprint string   `json:"fingerprint"`
	EntityInfo  HexBytes `json:"entityInfo"`
	Found       bool     `json:"found"`
}

// StoreGroupInfoRequest creates a group or adds a member's signature to it.
type StoreGroupInfoRequest struct {
	GroupID   string   `json:"groupID" binding:"required"`
	GroupInfo HexBytes `json:"groupInfo"`
	PubKey    string   `json:"pubKey" binding:"required"`
	Signature HexBytes `json:"signature" binding:"required"`
}

// StoreGroupInfoResponse reports whether the call created the group.
type StoreGroupInfoResponse struct {
	Created bool `json:"created"`
}

// GroupInfoResponse is the group info with the caller's signature.
type GroupInfoResponse struct {
	GroupInfo HexBytes `json:"groupInfo"`
	Signature HexBytes `json:"signature"`
}

// GroupIDsResponse lists the groups a key belongs to.
type GroupIDsResponse struct {
	PubKey   string   `json:"pubKey"`
	GroupIDs []string `json:"groupIDs"`
}

// StoreArtifactRequest publishes a key-generation artifact.
type StoreArtifactRequest struct {
	GroupID   string   `json:"groupID" binding:"required"`
	PubKey    string   `json:"pubKey" binding:"required"`
	Artifact  HexBytes `json:"artifact" binding:"required"`
	Signature HexBytes `json:"signature"`
}

// ArtifactResponse returns a key-generation artifact.
type ArtifactResponse struct {
	Kind      string   `json:"kind"`
	Artifact  HexBytes `json:"artifact"`
	Signature HexBytes `json:"signature"`
}

// SignRequest creates or joins the signing session for Message.
type SignRequest struct {
	GroupID string   `json:"groupID" binding:"required"`
	PubKey  string   `json:"pubKey" binding:"required"`
	Message HexBytes `json:"message" binding:"required"`
}

// SignResponse returns the message hash identifying the session.
type SignResponse struct {
	MessageHash string `json:"messageHash"`
}

// ApproveRequest admits a party into a session.
type ApproveRequest struct {
	GroupID     string `json:"groupID" binding:"required"`
	MessageHash string `json:"messageHash" binding:"required"`
	PubKey      string `json:"pubKey" binding:"required"`
}

// SessionsResponse lists a group's sessions.
type SessionsResponse struct {
	GroupID  string            `json:"groupID"`
	Sessions []session.Summary `json:"sessions"`
}

// PartiesResponse lists a session's parties in join order.
type PartiesResponse struct {
	MessageHash string   `json:"messageHash"`
	Parties     []string `json:"parties"`
}

// MessageResponse carries the raw message for a hash.
type MessageResponse struct {
	MessageHash string   `json:"messageHash"`
	Message     HexBytes `json:"message"`
	Found       bool     `json:"found"`
}

// PublishRequest writes one round contribution. Recipient is required for
// list buckets and ignored for keyed ones.
type PublishRequest struct {
	GroupID     string   `json:"groupID" binding:"required"`
	MessageHash string   `json:"messageHash" binding:"required"`
	PubKey      string   `json:"pubKey" binding:"required"`
	Recipient   string   `json:"recipient"`
	Payload     HexBytes `json:"payload" binding:"required"`
}

// RoundDataResponse is a single party's keyed-bucket payload.
type RoundDataResponse struct {
	Bucket  string   `json:"bucket"`
	PubKey  string   `json:"pubKey"`
	Payload HexBytes `json:"payload"`
}

// BarrierResponse holds the contributions that satisfied a barrier read.
type BarrierResponse struct {
	Bucket    string     `json:"bucket"`
	FilterKey string     `json:"filterKey"`
	Payloads  []HexBytes `json:"payloads"`
}

// StatusResponse acknowledges a request with nothing else to return.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse describes a rejected request. Error is the taxonomy code.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

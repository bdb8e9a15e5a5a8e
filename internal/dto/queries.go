package dto

// FingerprintQuery selects a cached artifact.
type FingerprintQuery struct {
	Fingerprint string `form:"fingerprint" binding:"required"`
}

// GroupMemberQuery selects a member's view of a group.
type GroupMemberQuery struct {
	GroupID string `form:"groupID" binding:"required"`
	PubKey  string `form:"pubKey" binding:"required"`
}

// PubKeyQuery selects a key's memberships.
type PubKeyQuery struct {
	PubKey string `form:"pubKey" binding:"required"`
}

// GroupQuery selects a group.
type GroupQuery struct {
	GroupID string `form:"groupID" binding:"required"`
}

// MessageQuery selects a raw message by hash.
type MessageQuery struct {
	MessageHash string `form:"messageHash" binding:"required"`
}

// SessionQuery selects a session.
type SessionQuery struct {
	GroupID     string `form:"groupID" binding:"required"`
	MessageHash string `form:"messageHash" binding:"required"`
}

// RoundDataQuery selects one party's keyed-bucket payload.
type RoundDataQuery struct {
	GroupID     string `form:"groupID" binding:"required"`
	MessageHash string `form:"messageHash" binding:"required"`
	PubKey      string `form:"pubKey" binding:"required"`
}

// BarrierQuery asks for the list-bucket payloads addressed to FilterKey once
// at least MinCount exist.
type BarrierQuery struct {
	GroupID     string `form:"groupID" binding:"required"`
	MessageHash string `form:"messageHash" binding:"required"`
	FilterKey   string `form:"filterKey"`
	MinCount    *int   `form:"minCount" binding:"required,min=0"`
}

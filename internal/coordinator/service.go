package coordinator

import (
	"mpc-coordinator/internal/blob"
	"mpc-coordinator/internal/common"
	"mpc-coordinator/internal/group"
	"mpc-coordinator/internal/logger"
	"mpc-coordinator/internal/metrics"
	"mpc-coordinator/internal/session"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GroupDescriptor is what a member reads back about a group it signed.
type GroupDescriptor struct {
	Info      []byte
	Signature []byte
}

// Service ties the blob cache, group registry and per-group session stores
// together and enforces existence and membership before any bucket access.
//
// Every operation holds state in shared mode. Export and Import take it
// exclusively so a snapshot never observes a half-applied write.
type Service struct {
	state sync.RWMutex

	blobs    *blob.Cache
	registry *group.Registry

	msgMu    sync.RWMutex
	messages map[string][]byte

	snapshots Snapshotter
	metrics   *metrics.Recorder
	log       *logrus.Entry
}

// New creates an empty service. snapshots and rec may be nil.
func New(snapshots Snapshotter, rec *metrics.Recorder) *Service {
	return &Service{
		blobs:     blob.NewCache(),
		registry:  group.NewRegistry(),
		messages:  make(map[string][]byte),
		snapshots: snapshots,
		metrics:   rec,
		log:       logger.Component("coordinator"),
	}
}

// track starts timing op; the returned func records the outcome held in *errp.
func (s *Service) track(op string, fields logrus.Fields) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		s.observe(op, start, err, fields)
	}
}

func (s *Service) observe(op string, start time.Time, err error, fields logrus.Fields) {
	s.metrics.Observe(op, start, err)
	entry := s.log.WithFields(fields).WithField("op", op)
	if err != nil {
		entry.WithError(err).Debug("request rejected")
		return
	}
	entry.Debug("request served")
}

// PutBlob stores an artifact under a caller-computed fingerprint.
func (s *Service) PutBlob(fingerprint string, artifact []byte) {
	s.state.RLock()
	defer s.state.RUnlock()
	start := time.Now()
	s.blobs.Put(fingerprint, artifact)
	s.metrics.Gauge("blobs", int64(s.blobs.Len()))
	s.observe("putBlob", start, nil, logrus.Fields{"fingerprint": fingerprint})
}

// GetBlob returns the artifact for fingerprint and whether it is known.
func (s *Service) GetBlob(fingerprint string) ([]byte, bool) {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.blobs.Get(fingerprint)
}

// UpsertGroup creates the group on first call and records pubkey's signature.
func (s *Service) UpsertGroup(groupID string, info []byte, pubkey string, signature []byte) bool {
	s.state.RLock()
	defer s.state.RUnlock()
	start := time.Now()
	created := s.registry.Upsert(groupID, info, pubkey, signature)
	if created {
		s.metrics.Gauge("groups", int64(s.registry.Len()))
		s.log.WithFields(logrus.Fields{"group": groupID, "pubKey": pubkey}).Info("group created")
	}
	s.observe("upsertGroup", start, nil, logrus.Fields{"group": groupID, "pubKey": pubkey})
	return created
}

// GetGroup returns the group info and pubkey's signature over it.
func (s *Service) GetGroup(groupID, pubkey string) (desc GroupDescriptor, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("getGroup", logrus.Fields{"group": groupID, "pubKey": pubkey})(&err)

	g, err := s.registry.Get(groupID)
	if err != nil {
		return GroupDescriptor{}, err
	}
	info, sig, err := g.Descriptor(pubkey)
	if err != nil {
		return GroupDescriptor{}, err
	}
	return GroupDescriptor{Info: info, Signature: sig}, nil
}

// ListGroups returns the groups pubkey has joined; empty when none.
func (s *Service) ListGroups(pubkey string) []string {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.registry.List(pubkey)
}

// UpsertKeyArtifact stores pubkey's key-generation artifact in a group.
func (s *Service) UpsertKeyArtifact(groupID string, kind group.ArtifactKind, pubkey string, value, signature []byte) (err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("upsertKeyArtifact", logrus.Fields{"group": groupID, "kind": kind, "pubKey": pubkey})(&err)

	if _, err = group.ParseArtifactKind(string(kind)); err != nil {
		return err
	}
	g, err := s.registry.Get(groupID)
	if err != nil {
		return err
	}
	g.PutArtifact(kind, pubkey, value, signature)
	return nil
}

// GetKeyArtifact returns pubkey's key-generation artifact from a group.
func (s *Service) GetKeyArtifact(groupID string, kind group.ArtifactKind, pubkey string) (a group.Artifact, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("getKeyArtifact", logrus.Fields{"group": groupID, "kind": kind, "pubKey": pubkey})(&err)

	g, err := s.registry.Get(groupID)
	if err != nil {
		return group.Artifact{}, err
	}
	return g.Artifact(kind, pubkey)
}

// rememberMessage records raw under hash unless the content is already known.
func (s *Service) rememberMessage(hash string, raw []byte) {
	s.msgMu.Lock()
	defer s.msgMu.Unlock()
	if _, ok := s.messages[hash]; ok {
		return
	}
	s.messages[hash] = append([]byte{}, raw...)
}

// CreateOrApproveSession opens a signing session for raw under a group, or
// joins the existing one, and admits pubkey as a party. An existing session
// keeps its parties and round data.
func (s *Service) CreateOrApproveSession(groupID, pubkey string, raw []byte) (hash string, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	hash = session.HashMessage(raw)
	defer s.track("createOrApproveSession", logrus.Fields{"group": groupID, "pubKey": pubkey, "messageHash": hash})(&err)

	g, err := s.registry.Get(groupID)
	if err != nil {
		return "", err
	}
	s.rememberMessage(hash, raw)
	sess, created := g.Sessions.GetOrCreate(hash, pubkey, raw)
	sess.Approve(pubkey)
	if created {
		s.log.WithFields(logrus.Fields{"group": groupID, "messageHash": hash, "initiator": pubkey, "sessions": g.Sessions.Len()}).Info("signing session created")
	}
	return hash, nil
}

// ResetSession replaces the session for raw with an empty one initiated by
// pubkey. Parties and round data of the previous session are discarded.
func (s *Service) ResetSession(groupID, pubkey string, raw []byte) (hash string, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	hash = session.HashMessage(raw)
	defer s.track("resetSession", logrus.Fields{"group": groupID, "pubKey": pubkey, "messageHash": hash})(&err)

	g, err := s.registry.Get(groupID)
	if err != nil {
		return "", err
	}
	s.rememberMessage(hash, raw)
	g.Sessions.Reset(hash, pubkey, raw)
	s.log.WithFields(logrus.Fields{"group": groupID, "messageHash": hash, "initiator": pubkey}).Warn("signing session reset")
	return hash, nil
}

// ListSessions summarizes the sessions of a group.
func (s *Service) ListSessions(groupID string) (out []session.Summary, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("listSessions", logrus.Fields{"group": groupID})(&err)

	g, err := s.registry.Get(groupID)
	if err != nil {
		return nil, err
	}
	return g.Sessions.List(), nil
}

// GetMessageContent returns the raw message for hash, across all groups.
func (s *Service) GetMessageContent(hash string) ([]byte, bool) {
	s.state.RLock()
	defer s.state.RUnlock()
	s.msgMu.RLock()
	defer s.msgMu.RUnlock()
	raw, ok := s.messages[hash]
	if !ok {
		return nil, false
	}
	return append([]byte{}, raw...), true
}

func (s *Service) lookup(groupID, hash string) (*session.Session, error) {
	g, err := s.registry.Get(groupID)
	if err != nil {
		return nil, err
	}
	return g.Sessions.Get(hash)
}

// Approve admits pubkey into a session. Approving a present party succeeds
// without changing anything.
func (s *Service) Approve(groupID, hash, pubkey string) (err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("approve", logrus.Fields{"group": groupID, "messageHash": hash, "pubKey": pubkey})(&err)

	sess, err := s.lookup(groupID, hash)
	if err != nil {
		return err
	}
	sess.Approve(pubkey)
	return nil
}

// ListParties returns a session's parties in join order.
func (s *Service) ListParties(groupID, hash string) (parties []string, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("listParties", logrus.Fields{"group": groupID, "messageHash": hash})(&err)

	sess, err := s.lookup(groupID, hash)
	if err != nil {
		return nil, err
	}
	return sess.Parties(), nil
}

// Publish writes pubkey's round data into a session bucket. Keyed buckets
// keep the latest payload per party and ignore recipient; list buckets append
// and require a recipient for barrier reads to match on.
func (s *Service) Publish(groupID, hash, pubkey string, name session.BucketName, recipient string, payload []byte) (err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("publish", logrus.Fields{"group": groupID, "messageHash": hash, "pubKey": pubkey, "bucket": name})(&err)

	sess, err := s.lookup(groupID, hash)
	if err != nil {
		return err
	}
	if !sess.IsParty(pubkey) {
		return common.Forbidden("%s is not a party of session %s", pubkey, hash)
	}
	b, err := sess.Bucket(name)
	if err != nil {
		return err
	}
	if b.Kind == session.Keyed {
		return b.Put(pubkey, payload)
	}
	if recipient == "" {
		return common.InvalidRequest("bucket %s needs a recipient", name)
	}
	return b.Append(session.Contribution{Sender: pubkey, Recipient: recipient, Payload: payload})
}

// ReadOne returns the payload pubkey published to a keyed bucket. It does not
// wait: an absent payload is reported at once as not found.
func (s *Service) ReadOne(groupID, hash, pubkey string, name session.BucketName) (payload []byte, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("readOne", logrus.Fields{"group": groupID, "messageHash": hash, "pubKey": pubkey, "bucket": name})(&err)

	sess, err := s.lookup(groupID, hash)
	if err != nil {
		return nil, err
	}
	b, err := sess.Bucket(name)
	if err != nil {
		return nil, err
	}
	return b.Get(pubkey)
}

// ReadBarrier returns the list-bucket payloads addressed to filterKey once at
// least minCount have arrived, and ErrNotReady until then. Callers poll.
func (s *Service) ReadBarrier(groupID, hash string, name session.BucketName, filterKey string, minCount int) (payloads [][]byte, err error) {
	s.state.RLock()
	defer s.state.RUnlock()
	defer s.track("readBarrier", logrus.Fields{"group": groupID, "messageHash": hash, "bucket": name, "filterKey": filterKey, "minCount": minCount})(&err)

	if minCount < 0 {
		return nil, common.InvalidRequest("minCount %d", minCount)
	}
	sess, err := s.lookup(groupID, hash)
	if err != nil {
		return nil, err
	}
	b, err := sess.Bucket(name)
	if err != nil {
		return nil, err
	}
	return b.Collect(filterKey, minCount)
}

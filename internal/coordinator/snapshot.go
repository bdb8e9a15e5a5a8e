package coordinator

import (
	"bytes"
	"context"
	"mpc-coordinator/internal/group"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNoBackend is returned by Snapshot and Restore when the service was built
// without a Snapshotter.
var ErrNoBackend = errors.New("no snapshot backend configured")

// Snapshotter persists and reloads an encoded State.
type Snapshotter interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
}

// State is the whole store as four independent maps. Restoring replaces
// everything; nothing is merged.
type State struct {
	Blobs       map[string][]byte       `msgpack:"blobs"`
	Memberships map[string][]string     `msgpack:"memberships"`
	Groups      map[string]group.Record `msgpack:"groups"`
	Messages    map[string][]byte       `msgpack:"messages"`
}

// Encode serializes st with msgpack.
func (st State) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&st); err != nil {
		return nil, errors.Wrap(err, "encoding state")
	}
	return buf.Bytes(), nil
}

// DecodeState parses data produced by State.Encode.
func DecodeState(data []byte) (State, error) {
	var st State
	if err := msgpack.Unmarshal(data, &st); err != nil {
		return State{}, errors.Wrap(err, "decoding state")
	}
	return st, nil
}

// Export captures the whole store. Writers are held off until it returns.
func (s *Service) Export() State {
	s.state.Lock()
	defer s.state.Unlock()

	groups, memberships := s.registry.Export()
	messages := make(map[string][]byte, len(s.messages))
	for h, raw := range s.messages {
		messages[h] = append([]byte{}, raw...)
	}
	return State{
		Blobs:       s.blobs.Export(),
		Memberships: memberships,
		Groups:      groups,
		Messages:    messages,
	}
}

// Import replaces the whole store with st.
func (s *Service) Import(st State) {
	messages := make(map[string][]byte, len(st.Messages))
	for h, raw := range st.Messages {
		messages[h] = append([]byte{}, raw...)
	}

	s.state.Lock()
	defer s.state.Unlock()
	s.blobs.Import(st.Blobs)
	s.registry.Import(st.Groups, st.Memberships)
	s.msgMu.Lock()
	s.messages = messages
	s.msgMu.Unlock()
	s.metrics.Gauge("groups", int64(s.registry.Len()))
	s.metrics.Gauge("blobs", int64(s.blobs.Len()))
}

// Snapshot writes the current store through the configured backend.
func (s *Service) Snapshot(ctx context.Context) (err error) {
	defer s.track("snapshot", logrus.Fields{})(&err)
	if s.snapshots == nil {
		return ErrNoBackend
	}
	start := time.Now()
	data, err := s.Export().Encode()
	if err != nil {
		return err
	}
	if err = s.snapshots.Save(ctx, data); err != nil {
		return errors.Wrap(err, "saving snapshot")
	}
	s.log.WithFields(logrus.Fields{"bytes": len(data), "took": time.Since(start)}).Info("snapshot saved")
	return nil
}

// Restore replaces the store with the backend's latest snapshot. Errors from
// the backend, including its "no snapshot" error, are returned unchanged in
// their cause so callers can tell an empty backend from a broken one.
func (s *Service) Restore(ctx context.Context) (err error) {
	defer s.track("restore", logrus.Fields{})(&err)
	if s.snapshots == nil {
		return ErrNoBackend
	}
	data, err := s.snapshots.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading snapshot")
	}
	st, err := DecodeState(data)
	if err != nil {
		return err
	}
	s.Import(st)
	s.log.WithFields(logrus.Fields{"bytes": len(data), "groups": len(st.Groups)}).Info("snapshot restored")
	return nil
}

package client

import (
	"context"
	"fmt"
	"mpc-coordinator/api"
	"mpc-coordinator/internal/common"
	"mpc-coordinator/internal/config"
	"mpc-coordinator/internal/coordinator"
	"mpc-coordinator/internal/metrics"
	"mpc-coordinator/internal/session"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) *Client {
	c, _ := setupLimitedClient(t, 0)
	return c
}

// setupLimitedClient serves a fresh coordinator limited to rps requests per
// second (0 disables the limit) and returns a client plus the service behind it.
func setupLimitedClient(t *testing.T, rps float64) (*Client, *coordinator.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := metrics.New()
	svc := coordinator.New(nil, rec)
	srv := httptest.NewServer(api.SetupRouter(svc, rec, config.RateLimitConfig{RequestsPerSecond: rps}))
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/", srv.Client())
	c.PollInitial = 5 * time.Millisecond
	c.PollMax = 20 * time.Millisecond
	return c, svc
}

func TestClientGroupAndArtifacts(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	require.NoError(t, c.Ping(ctx))

	created, err := c.StoreGroupInfo(ctx, "g1", []byte("info"), "A", []byte("sa"))
	require.NoError(t, err)
	assert.True(t, created)

	info, sig, err := c.GetGroupInfo(ctx, "g1", "A")
	require.NoError(t, err)
	assert.Equal(t, []byte("info"), []byte(info))
	assert.Equal(t, []byte("sa"), []byte(sig))

	_, _, err = c.GetGroupInfo(ctx, "g1", "B")
	assert.Equal(t, common.ErrNotFound, errors.Cause(err))

	ids, err := c.GroupIDs(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, ids)

	require.NoError(t, c.PutArtifact(ctx, "individualPublicKey", "g1", "A", []byte("pk"), nil))
	pk, _, err := c.GetArtifact(ctx, "individualPublicKey", "g1", "A")
	require.NoError(t, err)
	assert.Equal(t, []byte("pk"), []byte(pk))

	err = c.PutArtifact(ctx, "nonsense", "g1", "A", []byte("pk"), nil)
	assert.Equal(t, common.ErrBadRequest, errors.Cause(err))

	require.NoError(t, c.PutEntityInfo(ctx, "fp", []byte{1, 2}))
	blob, found, err := c.GetEntityInfo(ctx, "fp")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{1, 2}, []byte(blob))
}

func TestClientForbiddenPublish(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	_, err := c.StoreGroupInfo(ctx, "g1", []byte("info"), "A", []byte("s"))
	require.NoError(t, err)

	hash, err := c.Sign(ctx, "g1", "A", []byte("msg"))
	require.NoError(t, err)

	err = c.Publish(ctx, session.ShareData, "g1", hash, "Z", "", []byte("x"))
	assert.Equal(t, common.ErrForbidden, errors.Cause(err))
}

func TestWaitBarrierHonoursContext(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	_, err := c.StoreGroupInfo(ctx, "g1", []byte("info"), "A", []byte("s"))
	require.NoError(t, err)
	hash, err := c.Sign(ctx, "g1", "A", []byte("msg"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Millisecond)
	defer cancel()
	_, err = c.WaitBarrier(ctx, session.MtaRequest, "g1", hash, "A", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitBarrierStopsOnPermanentError(t *testing.T) {
	c := setupClient(t)
	_, err := c.WaitBarrier(context.Background(), session.MtaRequest, "missing", "h", "A", 1)
	assert.Equal(t, common.ErrNotFound, errors.Cause(err))
}

// Three parties run the round sequence the way signing nodes do: every party
// publishes a commitment, then sends an MtA request to each peer and waits
// until it has received one from every peer.
func TestConcurrentSigningRounds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := setupClient(t)

	parties := []string{"A", "B", "C"}
	for _, p := range parties {
		_, err := c.StoreGroupInfo(ctx, "g1", []byte("info"), p, []byte("sig-"+p))
		require.NoError(t, err)
	}
	message := []byte("transfer 10")
	hash, err := c.Sign(ctx, "g1", "A", message)
	require.NoError(t, err)

	var wg sync.WaitGroup
	received := make(map[string][][]byte)
	var mu sync.Mutex
	errs := make(chan error, len(parties))

	for _, self := range parties {
		wg.Add(1)
		go func(self string) {
			defer wg.Done()
			run := func() error {
				h, err := c.Sign(ctx, "g1", self, message)
				if err != nil {
					return err
				}
				if h != hash {
					return fmt.Errorf("hash mismatch for %s", self)
				}
				if err := c.Publish(ctx, session.PublicCommitment, "g1", hash, self, "", []byte("commit-"+self)); err != nil {
					return err
				}
				for _, peer := range parties {
					if peer == self {
						continue
					}
					if err := c.Publish(ctx, session.MtaRequest, "g1", hash, self, peer, []byte(self+"->"+peer)); err != nil {
						return err
					}
				}
				got, err := c.WaitBarrier(ctx, session.MtaRequest, "g1", hash, self, len(parties)-1)
				if err != nil {
					return err
				}
				mu.Lock()
				received[self] = got
				mu.Unlock()
				return nil
			}
			errs <- run()
		}(self)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, self := range parties {
		require.Len(t, received[self], len(parties)-1, self)
		for _, p := range received[self] {
			assert.Contains(t, string(p), "->"+self)
		}
	}

	joined, err := c.Parties(ctx, "g1", hash)
	require.NoError(t, err)
	assert.ElementsMatch(t, parties, joined)

	for _, p := range parties {
		commit, err := c.ReadOne(ctx, session.PublicCommitment, "g1", hash, p)
		require.NoError(t, err)
		assert.Equal(t, "commit-"+p, string(commit))
	}

	raw, found, err := c.Message(ctx, hash)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, message, []byte(raw))

	sessions, err := c.Sessions(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 3, sessions[0].PartyCount)
}

func TestDecodeErrorThrottled(t *testing.T) {
	err := decodeError(http.StatusTooManyRequests, []byte(`{"error":"rate_limited","message":"slow down"}`))
	assert.Equal(t, ErrThrottled, errors.Cause(err))

	err = decodeError(http.StatusServiceUnavailable, []byte("busy"))
	assert.Equal(t, ErrThrottled, errors.Cause(err))

	err = decodeError(http.StatusNotFound, []byte(`{"error":"not_ready"}`))
	assert.Equal(t, common.ErrNotReady, errors.Cause(err))
	assert.True(t, retryable(err))

	err = decodeError(http.StatusInternalServerError, []byte(`{"error":"internal_error"}`))
	assert.False(t, retryable(err))
}

func TestWaitBarrierBacksOffWhenRateLimited(t *testing.T) {
	c, svc := setupLimitedClient(t, 2)
	c.PollMax = 100 * time.Millisecond

	svc.UpsertGroup("g1", []byte("info"), "A", []byte("sa"))
	svc.UpsertGroup("g1", []byte("info"), "B", []byte("sb"))
	hash, err := svc.CreateOrApproveSession("g1", "A", []byte("msg"))
	require.NoError(t, err)
	require.NoError(t, svc.Approve("g1", hash, "B"))

	go func() {
		time.Sleep(400 * time.Millisecond)
		_ = svc.Publish("g1", hash, "A", session.MtaRequest, "B", []byte("a->b"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	got, err := c.WaitBarrier(ctx, session.MtaRequest, "g1", hash, "B", 1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a->b")}, got)
}

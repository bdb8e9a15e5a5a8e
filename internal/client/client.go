// Package client is the participant side of the coordination HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mpc-coordinator/internal/common"
	"mpc-coordinator/internal/dto"
	"mpc-coordinator/internal/logger"
	"mpc-coordinator/internal/session"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client talks to one coordinator.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Entry

	// Polling bounds for WaitBarrier.
	PollInitial time.Duration
	PollMax     time.Duration
}

// New creates a client for the coordinator at baseURL. A nil httpClient
// uses one with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        httpClient,
		log:         logger.Component("client"),
		PollInitial: 50 * time.Millisecond,
		PollMax:     2 * time.Second,
	}
}

// ErrThrottled means the coordinator turned the request away for now, either
// rate limited or temporarily unavailable. The same request may succeed later.
var ErrThrottled = errors.New("throttled")

// decodeError turns an error body back into the shared taxonomy so callers
// can test it with errors.Cause.
func decodeError(status int, body []byte) error {
	var e dto.ErrorResponse
	jsonErr := json.Unmarshal(body, &e)
	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable || e.Error == "rate_limited" {
		return errors.Wrapf(ErrThrottled, "coordinator returned %d: %s", status, strings.TrimSpace(string(body)))
	}
	if jsonErr != nil || e.Error == "" {
		return errors.Errorf("coordinator returned %d: %s", status, strings.TrimSpace(string(body)))
	}
	switch e.Error {
	case common.ErrNotFound.Error():
		return common.NotFound("%s", e.Message)
	case common.ErrNotReady.Error():
		return common.NotReady("%s", e.Message)
	case common.ErrForbidden.Error():
		return common.Forbidden("%s", e.Message)
	case common.ErrBadRequest.Error():
		return common.InvalidRequest("%s", e.Message)
	}
	return errors.Errorf("coordinator returned %d %s: %s", status, e.Error, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "decoding response")
}

// PutEntityInfo caches an artifact under fingerprint.
func (c *Client) PutEntityInfo(ctx context.Context, fingerprint string, artifact []byte) error {
	return c.do(ctx, http.MethodPost, "/entityInfo", nil,
		dto.StoreEntityInfoRequest{Fingerprint: fingerprint, EntityInfo: artifact}, nil)
}

// GetEntityInfo returns the cached artifact and whether it was found.
func (c *Client) GetEntityInfo(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	var resp dto.EntityInfoResponse
	err := c.do(ctx, http.MethodGet, "/entityInfo", url.Values{"fingerprint": {fingerprint}}, nil, &resp)
	return resp.EntityInfo, resp.Found, err
}

// StoreGroupInfo creates or joins a group. It reports whether this call
// created it.
func (c *Client) StoreGroupInfo(ctx context.Context, groupID string, info []byte, pubkey string, signature []byte) (bool, error) {
	var resp dto.StoreGroupInfoResponse
	err := c.do(ctx, http.MethodPost, "/groupInfo", nil, dto.StoreGroupInfoRequest{
		GroupID: groupID, GroupInfo: info, PubKey: pubkey, Signature: signature,
	}, &resp)
	return resp.Created, err
}

// GetGroupInfo returns the group info and pubkey's signature over it.
func (c *Client) GetGroupInfo(ctx context.Context, groupID, pubkey string) (info, signature []byte, err error) {
	var resp dto.GroupInfoResponse
	err = c.do(ctx, http.MethodGet, "/groupInfo", url.Values{"groupID": {groupID}, "pubKey": {pubkey}}, nil, &resp)
	return resp.GroupInfo, resp.Signature, err
}

// GroupIDs lists the groups pubkey belongs to.
func (c *Client) GroupIDs(ctx context.Context, pubkey string) ([]string, error) {
	var resp dto.GroupIDsResponse
	err := c.do(ctx, http.MethodGet, "/groupID", url.Values{"pubKey": {pubkey}}, nil, &resp)
	return resp.GroupIDs, err
}

// PutArtifact publishes a key-generation artifact.
func (c *Client) PutArtifact(ctx context.Context, kind, groupID, pubkey string, artifact, signature []byte) error {
	return c.do(ctx, http.MethodPost, "/artifacts/"+url.PathEscape(kind), nil, dto.StoreArtifactRequest{
		GroupID: groupID, PubKey: pubkey, Artifact: artifact, Signature: signature,
	}, nil)
}

// GetArtifact reads a member's key-generation artifact.
func (c *Client) GetArtifact(ctx context.Context, kind, groupID, pubkey string) (artifact, signature []byte, err error) {
	var resp dto.ArtifactResponse
	err = c.do(ctx, http.MethodGet, "/artifacts/"+url.PathEscape(kind),
		url.Values{"groupID": {groupID}, "pubKey": {pubkey}}, nil, &resp)
	return resp.Artifact, resp.Signature, err
}

// Sign creates or joins the session for message and returns its hash.
func (c *Client) Sign(ctx context.Context, groupID, pubkey string, message []byte) (string, error) {
	var resp dto.SignResponse
	err := c.do(ctx, http.MethodPost, "/sessions", nil,
		dto.SignRequest{GroupID: groupID, PubKey: pubkey, Message: message}, &resp)
	return resp.MessageHash, err
}

// ResetSession discards the session for message and starts an empty one.
func (c *Client) ResetSession(ctx context.Context, groupID, pubkey string, message []byte) (string, error) {
	var resp dto.SignResponse
	err := c.do(ctx, http.MethodPost, "/sessions/reset", nil,
		dto.SignRequest{GroupID: groupID, PubKey: pubkey, Message: message}, &resp)
	return resp.MessageHash, err
}

// Sessions lists a group's sessions.
func (c *Client) Sessions(ctx context.Context, groupID string) ([]session.Summary, error) {
	var resp dto.SessionsResponse
	err := c.do(ctx, http.MethodGet, "/sessions", url.Values{"groupID": {groupID}}, nil, &resp)
	return resp.Sessions, err
}

// Message returns the raw message behind hash.
func (c *Client) Message(ctx context.Context, hash string) ([]byte, bool, error) {
	var resp dto.MessageResponse
	err := c.do(ctx, http.MethodGet, "/message", url.Values{"messageHash": {hash}}, nil, &resp)
	return resp.Message, resp.Found, err
}

// Approve joins a session as pubkey.
func (c *Client) Approve(ctx context.Context, groupID, hash, pubkey string) error {
	return c.do(ctx, http.MethodPost, "/sessions/approve", nil,
		dto.ApproveRequest{GroupID: groupID, MessageHash: hash, PubKey: pubkey}, nil)
}

// Parties lists a session's parties in join order.
func (c *Client) Parties(ctx context.Context, groupID, hash string) ([]string, error) {
	var resp dto.PartiesResponse
	err := c.do(ctx, http.MethodGet, "/sessions/parties", url.Values{"groupID": {groupID}, "messageHash": {hash}}, nil, &resp)
	return resp.Parties, err
}

// Publish writes pubkey's contribution to a round bucket. recipient is only
// used by list buckets.
func (c *Client) Publish(ctx context.Context, bucket session.BucketName, groupID, hash, pubkey, recipient string, payload []byte) error {
	return c.do(ctx, http.MethodPost, "/rounds/"+url.PathEscape(string(bucket)), nil, dto.PublishRequest{
		GroupID: groupID, MessageHash: hash, PubKey: pubkey, Recipient: recipient, Payload: payload,
	}, nil)
}

// ReadOne reads pubkey's payload from a keyed bucket.
func (c *Client) ReadOne(ctx context.Context, bucket session.BucketName, groupID, hash, pubkey string) ([]byte, error) {
	var resp dto.RoundDataResponse
	err := c.do(ctx, http.MethodGet, "/rounds/"+url.PathEscape(string(bucket)),
		url.Values{"groupID": {groupID}, "messageHash": {hash}, "pubKey": {pubkey}}, nil, &resp)
	return resp.Payload, err
}

// ReadBarrier makes a single barrier read. It fails with a not_ready error
// while fewer than minCount payloads match filterKey.
func (c *Client) ReadBarrier(ctx context.Context, bucket session.BucketName, groupID, hash, filterKey string, minCount int) ([][]byte, error) {
	var resp dto.BarrierResponse
	err := c.do(ctx, http.MethodGet, "/rounds/"+url.PathEscape(string(bucket))+"/barrier", url.Values{
		"groupID":     {groupID},
		"messageHash": {hash},
		"filterKey":   {filterKey},
		"minCount":    {strconv.Itoa(minCount)},
	}, nil, &resp)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(resp.Payloads))
	for i, p := range resp.Payloads {
		out[i] = p
	}
	return out, nil
}

// retryable reports whether a failed poll may succeed if repeated.
func retryable(err error) bool {
	switch errors.Cause(err) {
	case common.ErrNotReady, ErrThrottled:
		return true
	}
	return false
}

// WaitBarrier polls ReadBarrier with exponential backoff until it succeeds,
// fails with anything other than not_ready or throttling, or ctx ends.
func (c *Client) WaitBarrier(ctx context.Context, bucket session.BucketName, groupID, hash, filterKey string, minCount int) ([][]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.PollInitial
	b.MaxInterval = c.PollMax
	b.MaxElapsedTime = 0

	var payloads [][]byte
	attempts := 0
	op := func() error {
		attempts++
		var err error
		payloads, err = c.ReadBarrier(ctx, bucket, groupID, hash, filterKey, minCount)
		if err == nil {
			return nil
		}
		if retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"bucket":   bucket,
		"attempts": attempts,
		"count":    len(payloads),
	}).Debug("barrier satisfied")
	return payloads, nil
}

// Snapshot asks the coordinator to persist its state.
func (c *Client) Snapshot(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/snapshot", nil, nil, nil)
}

// Ping checks that the coordinator is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil, nil)
}

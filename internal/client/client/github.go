package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/gophrelease/internal/client/models"
	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/logging"
	"github.com/dmitrijs2005/gophrelease/internal/netx"
)

const (
	DefaultAPIURL = "https://api.github.com"

	acceptHeader      = "application/vnd.github.v3+json"
	defaultRetryDelay = 500 * time.Millisecond
)

// PublishResult describes the commit created by a successful publish.
type PublishResult struct {
	ContentSHA string
	CommitSHA  string
	HTMLURL    string
	Created    bool
	Attempts   int
}

// GitHubClient writes a single file through the repository contents API.
type GitHubClient struct {
	baseURL    string
	http       netx.Doer
	now        func() time.Time
	logger     logging.Logger
	retries    uint64
	retryDelay time.Duration
}

type GitHubOption func(*GitHubClient)

func WithBaseURL(u string) GitHubOption {
	return func(c *GitHubClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithConflictRetries enables re-reading the sha and retrying the write up
// to n times after a conflict. Zero, the default, never retries.
func WithConflictRetries(n int, delay time.Duration) GitHubOption {
	return func(c *GitHubClient) {
		if n > 0 {
			c.retries = uint64(n)
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

func WithClock(now func() time.Time) GitHubOption {
	return func(c *GitHubClient) { c.now = now }
}

func WithLogger(l logging.Logger) GitHubOption {
	return func(c *GitHubClient) { c.logger = l }
}

func NewGitHubClient(doer netx.Doer, opts ...GitHubOption) *GitHubClient {
	c := &GitHubClient{
		baseURL:    DefaultAPIURL,
		http:       doer,
		now:        time.Now,
		logger:     logging.Discard(),
		retryDelay: defaultRetryDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *GitHubClient) repoURL(s models.GitHubSettings) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(s.Owner), url.PathEscape(s.Repo))
}

func (c *GitHubClient) contentsURL(s models.GitHubSettings) string {
	segs := strings.Split(strings.Trim(s.FilePath, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return c.repoURL(s) + "/contents/" + strings.Join(segs, "/")
}

func (c *GitHubClient) newRequest(ctx context.Context, method, u, token string, body []byte) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", common.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and returns the body of a response with any status. Transport
// errors become SyncFailures carrying the raw error text.
func (c *GitHubClient) do(op string, req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, transportFailure(op, err)
	}
	body, err := netx.ReadBody(resp)
	if err != nil {
		return resp.StatusCode, nil, transportFailure(op, err)
	}
	return resp.StatusCode, body, nil
}

func remoteFailure(op string, status int, body []byte) *SyncFailure {
	return &SyncFailure{Op: op, StatusCode: status, Reason: netx.RemoteMessage(status, body)}
}

// fetchSHA returns the current content sha of the file, or "" when the file
// does not exist yet.
func (c *GitHubClient) fetchSHA(ctx context.Context, s models.GitHubSettings) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.contentsURL(s), s.Token, nil)
	if err != nil {
		return "", transportFailure("fetch", err)
	}

	status, body, err := c.do("fetch", req)
	if err != nil {
		return "", err
	}

	switch status {
	case http.StatusOK:
		var file struct {
			SHA string `json:"sha"`
		}
		if err := json.Unmarshal(body, &file); err != nil {
			return "", &SyncFailure{Op: "fetch", StatusCode: status, Reason: "unexpected response: " + err.Error(), Err: err}
		}
		return file.SHA, nil
	case http.StatusNotFound:
		return "", nil
	default:
		return "", remoteFailure("fetch", status, body)
	}
}

type putRequest struct {
	Message string  `json:"message"`
	Content string  `json:"content"`
	SHA     *string `json:"sha"`
}

type putResponse struct {
	Content struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// CommitMessage is the message used for every publish commit.
func CommitMessage(filePath string, at time.Time) string {
	return fmt.Sprintf("Update %s - %s", path.Base(filePath), at.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func (c *GitHubClient) publishOnce(ctx context.Context, s models.GitHubSettings, content []byte) (PublishResult, error) {
	sha, err := c.fetchSHA(ctx, s)
	if err != nil {
		return PublishResult{}, err
	}

	payload := putRequest{
		Message: CommitMessage(s.FilePath, c.now()),
		Content: base64.StdEncoding.EncodeToString(content),
	}
	if sha != "" {
		payload.SHA = &sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return PublishResult{}, transportFailure("publish", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, c.contentsURL(s), s.Token, body)
	if err != nil {
		return PublishResult{}, transportFailure("publish", err)
	}

	status, respBody, err := c.do("publish", req)
	if err != nil {
		return PublishResult{}, err
	}
	if !netx.IsSuccess(status) {
		return PublishResult{}, remoteFailure("publish", status, respBody)
	}

	var out putResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		c.logger.Warn(ctx, "publish response not understood", "error", err)
	}
	return PublishResult{
		ContentSHA: out.Content.SHA,
		CommitSHA:  out.Commit.SHA,
		HTMLURL:    out.Content.HTMLURL,
		Created:    sha == "",
	}, nil
}

// Publish reads the file's current sha and writes content over it in one
// commit. A concurrent writer makes the write fail with a SyncFailure that
// matches common.ErrConflict. Settings are checked before any request.
func (c *GitHubClient) Publish(ctx context.Context, s models.GitHubSettings, content []byte) (PublishResult, error) {
	if err := s.Validate(); err != nil {
		return PublishResult{}, err
	}

	if c.retries == 0 {
		res, err := c.publishOnce(ctx, s, content)
		res.Attempts = 1
		return res, err
	}

	var (
		res      PublishResult
		attempts int
	)
	backoff := retry.WithMaxRetries(c.retries, retry.NewConstant(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		var err error
		res, err = c.publishOnce(ctx, s, content)
		if errors.Is(err, common.ErrConflict) {
			c.logger.Info(ctx, "publish conflict, re-reading sha", "attempt", attempts)
			return retry.RetryableError(err)
		}
		return err
	})
	res.Attempts = attempts
	return res, err
}

// TestConnection performs a single read of the repository and returns its
// full name. The file path is not needed.
func (c *GitHubClient) TestConnection(ctx context.Context, s models.GitHubSettings) (string, error) {
	if err := s.ValidateConnection(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.repoURL(s), s.Token, nil)
	if err != nil {
		return "", transportFailure("test connection", err)
	}
	status, body, err := c.do("test connection", req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", remoteFailure("test connection", status, body)
	}

	var repo struct {
		FullName string `json:"full_name"`
	}
	if err := json.Unmarshal(body, &repo); err != nil || repo.FullName == "" {
		return s.Owner + "/" + s.Repo, nil
	}
	return repo.FullName, nil
}

// Package api talks to the OSM editing API 0.6. Client is a blocking
// changeset.Transport over HTTP; Serialized wraps any Transport to run all
// operations on a single worker goroutine.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/changeset"
	"github.com/omniscale/go-osmapi/config"
	"github.com/omniscale/go-osmapi/diff"
	"github.com/omniscale/go-osmapi/element"
	"github.com/omniscale/go-osmapi/logging"
	"github.com/omniscale/go-osmapi/osmchange"
)

var log = logging.NewLogger("api")

var _ changeset.Transport = &Client{}

// Client performs changeset operations with one blocking HTTP request per
// call. It never retries: uploads are not idempotent, a resubmitted create
// could duplicate elements. Retry policy stays with the caller.
type Client struct {
	baseURL   string
	userAgent string
	user      string
	password  string
	client    *http.Client
}

func NewClient(conf *config.Config) *Client {
	client := &http.Client{
		Timeout: time.Duration(conf.Timeout),
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return &Client{
		baseURL:   strings.TrimRight(conf.BaseURL, "/"),
		userAgent: conf.UserAgent,
		user:      conf.User,
		password:  conf.Password,
		client:    client,
	}
}

// Open creates a changeset and returns the server assigned ID.
func (c *Client) Open(ctx context.Context, tags osm.Tags) (int64, error) {
	body, err := osmchange.MarshalChangeset(tags, c.userAgent)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(ctx, "PUT", c.baseURL+"/api/0.6/changeset/create", body, "")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return 0, responseError(resp)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "reading changeset id")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing changeset id %q", raw)
	}
	log.Debugf("opened changeset %d", id)
	return id, nil
}

// Upload submits the package as an osmChange document. A 409 response with
// a version mismatch surfaces as *changeset.ConflictError.
func (c *Client) Upload(ctx context.Context, changesetID int64, pkg *diff.Package) ([]diff.Mapping, error) {
	body, err := osmchange.Marshal(pkg, c.userAgent)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/0.6/changeset/%d/upload", c.baseURL, changesetID)
	resp, err := c.do(ctx, "POST", url, body, pkg.Token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == 409 {
		raw, _ := io.ReadAll(resp.Body)
		if conflict := parseConflict(string(raw)); conflict != nil {
			return nil, conflict
		}
		return nil, errors.Errorf("conflict uploading to changeset %d: %s",
			changesetID, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode != 200 {
		return nil, responseError(resp)
	}
	log.Debugf("uploaded %d changes to changeset %d (%s)", pkg.Len(), changesetID, pkg.Token)
	return osmchange.ParseDiffResult(resp.Body)
}

// Close closes the changeset.
func (c *Client) Close(ctx context.Context, changesetID int64) error {
	url := fmt.Sprintf("%s/api/0.6/changeset/%d/close", c.baseURL, changesetID)
	resp, err := c.do(ctx, "PUT", url, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return responseError(resp)
	}
	log.Debugf("closed changeset %d", changesetID)
	return nil
}

// Fetch reads the current changeset metadata.
func (c *Client) Fetch(ctx context.Context, changesetID int64) (*osm.Changeset, error) {
	url := fmt.Sprintf("%s/api/0.6/changeset/%d", c.baseURL, changesetID)
	resp, err := c.do(ctx, "GET", url, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, responseError(resp)
	}
	return osmchange.ParseChangeset(resp.Body)
}

// FetchElement reads the current version of a single element, e.g. to
// resolve a version conflict.
func (c *Client) FetchElement(ctx context.Context, ref element.Ref) (element.Element, error) {
	kind := map[osm.MemberType]string{
		osm.NodeMember:     "node",
		osm.WayMember:      "way",
		osm.RelationMember: "relation",
	}[ref.Type]
	url := fmt.Sprintf("%s/api/0.6/%s/%d", c.baseURL, kind, ref.ID)
	resp, err := c.do(ctx, "GET", url, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		return nil, element.NotFound
	}
	if resp.StatusCode != 200 {
		return nil, responseError(resp)
	}
	elements, err := osmchange.ParseElements(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, errors.Errorf("empty response for %s", ref)
	}
	return elements[0], nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	}
	if token != "" {
		req.Header.Set("X-Request-ID", token)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, url)
	}
	return resp, nil
}

func responseError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = resp.Status
	}
	return errors.Errorf("%s %s: unexpected status %d: %s",
		resp.Request.Method, resp.Request.URL, resp.StatusCode, msg)
}

// parseConflict extracts the element and versions from the server's
// version mismatch message, e.g.
// "Version mismatch: Provided 2, server had: 3 of Way 123".
func parseConflict(msg string) *changeset.ConflictError {
	var expected, actual int32
	var kind string
	var id int64
	n, err := fmt.Sscanf(strings.TrimSpace(msg),
		"Version mismatch: Provided %d, server had: %d of %s %d",
		&expected, &actual, &kind, &id)
	if err != nil || n != 4 {
		return nil
	}
	var t osm.MemberType
	switch strings.ToLower(kind) {
	case "node":
		t = osm.NodeMember
	case "way":
		t = osm.WayMember
	case "relation":
		t = osm.RelationMember
	default:
		return nil
	}
	return &changeset.ConflictError{
		Ref:      element.Ref{Type: t, ID: id},
		Expected: expected,
		Actual:   actual,
	}
}

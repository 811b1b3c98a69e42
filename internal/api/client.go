// Package api is the HTTP client for the scans backend. The backend itself
// (CRUD, auth, listing) is an external collaborator; this package only
// consumes the surface the annotation tool needs: scan detail, the current
// user, and per-type mask raster fetch/save.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"scan-annotator/internal/mask"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
var ErrUnauthorized = errors.New("api: unauthorized")

// Client talks to the scans API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Me fetches the authenticated user record, including roles.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FetchScan fetches the detail record for a scan.
func (c *Client) FetchScan(ctx context.Context, scanID uuid.UUID) (*Scan, error) {
	var scan Scan
	if err := c.getJSON(ctx, "/scans/"+scanID.String(), &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// FetchMask reads the raw raster bytes for (scan, mask type). A scan that
// has never had this mask saved yields found=false with a nil error; any
// other failure is a real error and must not be swallowed.
func (c *Client) FetchMask(ctx context.Context, scanID uuid.UUID, t mask.Type) ([]byte, bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.maskPath(scanID, t), nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s mask: %w", t.Slug(), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("read %s mask body: %w", t.Slug(), err)
		}
		return data, true, nil
	case http.StatusNotFound:
		return nil, false, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, false, ErrUnauthorized
	default:
		return nil, false, fmt.Errorf("fetch %s mask: unexpected status %s", t.Slug(), resp.Status)
	}
}

// SaveMask uploads an encoded raster for (scan, mask type) and returns the
// full updated scan record, so the caller can re-derive overlays from fresh
// server state instead of its stale copy.
func (c *Client) SaveMask(ctx context.Context, scanID uuid.UUID, t mask.Type, raster []byte) (*Scan, error) {
	req, err := c.newRequest(ctx, http.MethodPut, c.maskPath(scanID, t), bytes.NewReader(raster))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("save %s mask: %w", t.Slug(), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var scan Scan
		if err := json.NewDecoder(resp.Body).Decode(&scan); err != nil {
			return nil, fmt.Errorf("decode save response: %w", err)
		}
		return &scan, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("save %s mask: unexpected status %s", t.Slug(), resp.Status)
	}
}

// FetchAsset downloads bytes from a presigned asset URL (absolute, already
// authorized by its signature).
func (c *Client) FetchAsset(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch asset: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) maskPath(scanID uuid.UUID, t mask.Type) string {
	return "/scans/" + scanID.String() + "/masks/" + t.Slug()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("get %s: unexpected status %s", path, resp.Status)
	}
}

// Package client is a Go API client for the EmotiSense backend. It keeps the
// authenticated session and the image list as explicit local state, mirroring
// the dashboard's containers: a successful call replaces the cached state, a
// failed call leaves it untouched and records the server's error message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/emotisense/emotisense/backend/internal/models"
)

// Client talks to the backend REST API on behalf of one user.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	sessionPath string

	session *Session
	images  []models.ImageRecord
	lastErr string
}

// New builds a client and restores any persisted session from sessionPath.
func New(baseURL, sessionPath string) (*Client, error) {
	session, err := LoadSession(sessionPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		sessionPath: sessionPath,
		session:     session,
	}, nil
}

// Session returns the current session state.
func (c *Client) Session() *Session { return c.session }

// Images returns the locally cached image list.
func (c *Client) Images() []models.ImageRecord { return c.images }

// LastError returns the most recent server error message, or "".
func (c *Client) LastError() string { return c.lastErr }

// Register creates an account and signs the session in.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var out models.RegisterResponse
	err := c.postJSON(ctx, "/api/auth/register", models.RegisterRequest{
		Name: name, Email: email, Password: password,
	}, http.StatusCreated, &out)
	if err != nil {
		return err
	}

	c.session = &Session{
		Token: out.Token,
		User:  models.User{ID: out.UserID, Name: out.Name, Email: email},
	}
	return saveSession(c.sessionPath, c.session)
}

// Login authenticates and signs the session in.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out models.LoginResponse
	err := c.postJSON(ctx, "/api/auth/login", models.LoginRequest{
		Email: email, Password: password,
	}, http.StatusOK, &out)
	if err != nil {
		return err
	}

	c.session = &Session{Token: out.Token, User: out.User}
	return saveSession(c.sessionPath, c.session)
}

// Logout clears the session state and its persisted copy. The bearer token
// itself stays valid until expiry; there is nothing to revoke server-side.
func (c *Client) Logout() error {
	c.session = &Session{}
	c.images = nil
	return clearSession(c.sessionPath)
}

// Upload sends an image through the analysis pipeline and refreshes the
// cached image list.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, data []byte) (*models.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="image"; filename=%q`, filename)},
		"Content-Type":        {mimeType},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/images", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.UploadResponse
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return nil, err
	}

	if err := c.RefreshImages(ctx); err != nil {
		return &out, err
	}
	return &out, nil
}

// RefreshImages reloads the image list from the backend, replacing the cache
// on success and leaving it untouched on failure.
func (c *Client) RefreshImages(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/images", nil)
	if err != nil {
		return err
	}

	var recs []models.ImageRecord
	if err := c.do(req, http.StatusOK, &recs); err != nil {
		return err
	}
	c.images = recs
	return nil
}

// Delete removes an image and refreshes the cached list.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/images/"+id, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, http.StatusOK, nil); err != nil {
		return err
	}
	return c.RefreshImages(ctx)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.session.Active() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	return req, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in any, wantStatus int, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, wantStatus, out)
}

// do executes the request. A non-matching status records the server's error
// message and fails without mutating any cached state.
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg := serverError(resp.Body)
		c.lastErr = msg
		return fmt.Errorf("%s %s: %d: %s", req.Method, req.URL.Path, resp.StatusCode, msg)
	}

	c.lastErr = ""
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func serverError(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return "unexpected server response"
}

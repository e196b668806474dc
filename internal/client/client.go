// Package client talks to the attendance API on behalf of a signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MANGOpali/attendance-backend/internal/models"
)

const reloginDelay = 120 * time.Millisecond

// APIError is a non-2xx response. Message is the server's error text when it
// sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type Client struct {
	baseURL   string
	http      *http.Client
	session   *Session
	onExpired func()

	mu      sync.Mutex
	pending *time.Timer
	firing  sync.WaitGroup
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithReloginPrompt sets the callback run once, shortly after a signed-in
// session is rejected by the server.
func WithReloginPrompt(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type LinkResult struct {
	OK           bool `json:"ok"`
	EmployeeID   uint `json:"employee_id"`
	LinkedUserID uint `json:"linked_user_id"`
}

// MarkRequest is one mark. NewMarkRequest fills the Gregorian date and both
// time representations from a single reading.
type MarkRequest struct {
	EmployeeID  uint   `json:"employee_id"`
	DateBS      string `json:"date_bs"`
	DateAD      string `json:"date_ad,omitempty"`
	TimeISO     string `json:"time_iso,omitempty"`
	TimeDisplay string `json:"time_display,omitempty"`
	Status      string `json:"status,omitempty"`
}

func NewMarkRequest(employeeID uint, dateBS string, at time.Time) MarkRequest {
	return MarkRequest{
		EmployeeID:  employeeID,
		DateBS:      dateBS,
		DateAD:      at.Format(time.DateOnly),
		TimeISO:     at.Format(time.TimeOnly),
		TimeDisplay: Format12Hour(at),
	}
}

type idResponse struct {
	ID uint `json:"id"`
}

func (c *Client) Register(ctx context.Context, name, email, password string, role models.Role) (uint, error) {
	var out idResponse
	body := map[string]any{"name": name, "email": email, "password": password, "role": role}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Login signs in and stores the token and user in the session.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return out, err
	}
	return out, c.session.SignIn(out.Token, out.User)
}

// Logout only forgets the local token; the server keeps no session state.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Me(ctx context.Context) (models.PublicUser, error) {
	var out models.PublicUser
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out, err
}

func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) error {
	body := map[string]string{"email": email, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/auth/reset", body, nil)
}

func (c *Client) Employees(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	err := c.doJSON(ctx, http.MethodGet, "/employees", nil, &out)
	return out, err
}

func (c *Client) AddEmployee(ctx context.Context, name string, linkedUserID *uint) (uint, error) {
	var out idResponse
	body := map[string]any{"name": name, "linked_user_id": linkedUserID}
	if err := c.doJSON(ctx, http.MethodPost, "/employees", body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) LinkEmployee(ctx context.Context, employeeID uint, userEmail string) (LinkResult, error) {
	var out LinkResult
	path := fmt.Sprintf("/employees/%d/link", employeeID)
	err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"user_email": userEmail}, &out)
	return out, err
}

func (c *Client) DeleteEmployee(ctx context.Context, employeeID uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/employees/%d", employeeID), nil, nil)
}

// MarkAttendance submits a mark. A blank status is classified from
// TimeDisplay when one is given; otherwise the server default applies.
func (c *Client) MarkAttendance(ctx context.Context, req MarkRequest) (uint, error) {
	if req.Status == "" && req.TimeDisplay != "" {
		req.Status = string(ClassifyStatus(req.TimeDisplay))
	}
	var out idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/attendance", req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) Attendance(ctx context.Context, dateBS string) ([]models.Attendance, error) {
	var out []models.Attendance
	err := c.doJSON(ctx, http.MethodGet, "/attendance"+query("date_bs", dateBS), nil, &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context, dateBS string) (DaySummary, error) {
	var out DaySummary
	err := c.doJSON(ctx, http.MethodGet, "/dashboard"+query("date_bs", dateBS), nil, &out)
	return out, err
}

func (c *Client) AuditLog(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	path := "/audit"
	if limit > 0 {
		path += query("limit", strconv.Itoa(limit))
	}
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Export downloads the attendance table and returns the server-suggested
// filename with the file body.
func (c *Client) Export(ctx context.Context, dateBS, format string) (string, []byte, error) {
	q := url.Values{}
	if dateBS != "" {
		q.Set("date_bs", dateBS)
	}
	if format != "" {
		q.Set("format", format)
	}
	path := "/attendance/export"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read export: %w", err)
	}
	return exportFilename(resp.Header.Get("Content-Disposition"), dateBS, format), body, nil
}

func exportFilename(disposition, dateBS, format string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if dateBS == "" {
		dateBS = "all"
	}
	if format == "" {
		format = "csv"
	}
	return "attendance_" + dateBS + "." + format
}

func query(key, value string) string {
	if value == "" {
		return ""
	}
	return "?" + url.Values{key: {value}}.Encode()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the request and turns non-2xx responses into *APIError. The
// caller closes the body of a successful response.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp)}
	if resp.StatusCode == http.StatusUnauthorized {
		wasSignedIn := c.session.SignedIn()
		if err := c.session.Clear(); err != nil {
			return nil, err
		}
		if wasSignedIn {
			c.promptRelogin()
		}
	}
	return nil, apiErr
}

func readErrorMessage(resp *http.Response) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "Missing authorization header"
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "API error"
}

// promptRelogin coalesces bursts of 401s into a single callback.
func (c *Client) promptRelogin() {
	if c.onExpired == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		c.pending = time.AfterFunc(reloginDelay, c.firePrompt)
	}
}

func (c *Client) firePrompt() {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.firing.Add(1)
	c.mu.Unlock()

	defer c.firing.Done()
	c.onExpired()
}

// FlushReloginPrompt runs a scheduled re-login prompt now and waits for it.
// Short-lived callers use it before exiting.
func (c *Client) FlushReloginPrompt() {
	c.mu.Lock()
	timer := c.pending
	c.mu.Unlock()
	if timer != nil {
		timer.Stop()
		c.firePrompt()
	}
	c.firing.Wait()
}

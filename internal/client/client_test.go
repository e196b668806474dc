package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MANGOpali/attendance-backend/internal/config"
	"github.com/MANGOpali/attendance-backend/internal/dbtest"
	"github.com/MANGOpali/attendance-backend/internal/email"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/routes"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes.Register(router, dbtest.Open(t), config.Config{
		JwtSecret:   "client-secret",
		JwtTTLHours: 8,
		BcryptCost:  4,
	}, email.NopNotifier{})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	session, err := NewSession(NewMemoryStorage())
	require.NoError(t, err)
	return New(baseURL, session, opts...)
}

func TestClientAgainstServer(t *testing.T) {
	srv := newAPI(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.Register(ctx, "Admin", "admin@example.com", "admin123", models.RoleAdmin)
	require.NoError(t, err)
	userID, err := c.Register(ctx, "Mango", "mango@example.com", "mango123", models.RoleEmployee)
	require.NoError(t, err)

	_, err = c.Login(ctx, "admin@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, c.Session().SignedIn())

	result, err := c.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, result.Token, c.Session().Token())
	assert.True(t, c.Session().HasRole(models.RoleAdmin))

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Admin", me.Name)

	employeeID, err := c.AddEmployee(ctx, "Mango", nil)
	require.NoError(t, err)
	link, err := c.LinkEmployee(ctx, employeeID, "mango@example.com")
	require.NoError(t, err)
	assert.Equal(t, LinkResult{OK: true, EmployeeID: employeeID, LinkedUserID: userID}, link)

	_, err = c.MarkAttendance(ctx, MarkRequest{EmployeeID: employeeID, DateBS: "2082-01-01", TimeDisplay: "10:20 AM"})
	require.NoError(t, err)

	records, err := c.Attendance(ctx, "2082-01-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusLate, records[0].Status)

	summary, err := c.Summary(ctx, "2082-01-01")
	require.NoError(t, err)
	assert.Equal(t, DaySummary{DateBS: "2082-01-01", Employees: 1, Late: 1}, summary)

	name, body, err := c.Export(ctx, "2082-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "attendance_2082-01-01.csv", name)
	assert.True(t, strings.HasPrefix(string(body), "Name,Date (BS),Time,Status,Marked By\nMango,"))

	logs, err := c.AuditLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.ActionExportCSV, logs[0].Action)

	require.NoError(t, c.DeleteEmployee(ctx, employeeID))
	require.NoError(t, c.Logout())
	assert.False(t, c.Session().SignedIn())

	_, err = c.Employees(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Missing authorization header", apiErr.Message)
}

func TestUnauthorizedClearsSessionAndPromptsOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid or expired token"}`))
	}))
	t.Cleanup(srv.Close)

	var prompts atomic.Int32
	done := make(chan struct{}, 4)
	c := newClient(t, srv.URL, WithReloginPrompt(func() {
		prompts.Add(1)
		done <- struct{}{}
	}))
	require.NoError(t, c.Session().SignIn("stale", models.PublicUser{ID: 1, Name: "Mango", Role: models.RoleEmployee}))

	_, err := c.Employees(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid or expired token", apiErr.Message)
	assert.False(t, c.Session().SignedIn())
	assert.Nil(t, c.Session().User())

	// already signed out: no second prompt
	_, _ = c.Employees(context.Background())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relogin prompt not called")
	}
	time.Sleep(3 * reloginDelay)
	assert.Equal(t, int32(1), prompts.Load())
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "attendance_2082-01-01.csv", exportFilename(`attachment; filename="attendance_2082-01-01.csv"`, "", ""))
	assert.Equal(t, "attendance_all.csv", exportFilename("", "", ""))
	assert.Equal(t, "attendance_2082-01-01.xlsx", exportFilename("inline", "2082-01-01", "xlsx"))
}

func TestFlushReloginPromptRunsPendingPromptNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	var prompts atomic.Int32
	c := newClient(t, srv.URL, WithReloginPrompt(func() { prompts.Add(1) }))
	require.NoError(t, c.Session().SignIn("stale", models.PublicUser{ID: 1, Name: "Mango", Role: models.RoleEmployee}))

	_, err := c.Employees(context.Background())
	require.Error(t, err)
	c.FlushReloginPrompt()
	assert.Equal(t, int32(1), prompts.Load())

	// the stopped timer must not fire a second prompt
	time.Sleep(3 * reloginDelay)
	assert.Equal(t, int32(1), prompts.Load())

	c.FlushReloginPrompt()
	assert.Equal(t, int32(1), prompts.Load())
}

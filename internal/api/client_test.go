package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
)

// =========================================================================
// HELPERS
// =========================================================================

// recorded captures what the fake collaborator received.
type recorded struct {
	method    string
	path      string
	rawPath   string
	query     string
	body      []byte
	requestID string
	ctype     string
}

// newTestClient starts an httptest server that records the request and
// replies with status and body.
func newTestClient(t *testing.T, status int, body string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.rawPath = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.body, _ = io.ReadAll(r.Body)
		rec.requestID = r.Header.Get(requestIDHeader)
		rec.ctype = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.URL+"/api/", srv.Client(), logger), rec
}

func fptr(f float64) *float64 { return &f }

// =========================================================================
// AUTH
// =========================================================================

func TestLogin_ReturnsProfile(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"user":{"user_id":"alice","age":30,"gender":"female","weight":null,"height":165,"allergies":["peanuts","dairy"],"medical_conditions":[],"_id":"abc"}}`)

	p, err := c.Login(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/auth/login", rec.path)
	assert.Equal(t, "user_id=alice", rec.query)
	assert.Empty(t, rec.body)
	assert.NotEmpty(t, rec.requestID)

	assert.Equal(t, "alice", p.UserID)
	assert.Equal(t, 30, p.Age)
	assert.Nil(t, p.Weight)
	assert.Equal(t, fptr(165), p.Height)
	assert.Equal(t, []string{"peanuts", "dairy"}, p.Allergies)
	assert.JSONEq(t, `"abc"`, string(p.Extra["_id"]))
}

func TestLogin_EscapesUserID(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"user":{"user_id":"a b&c"}}`)

	_, err := c.Login(context.Background(), "a b&c")
	require.NoError(t, err)
	assert.Equal(t, "user_id=a+b%26c", rec.query)
}

func TestLogin_NotFoundCarriesDetail(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"detail":"User not found"}`)

	_, err := c.Login(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrRejected))

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "User not found", appErr.Message)
}

func TestLogin_MissingUserIsMalformed(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"ok":true}`)

	_, err := c.Login(context.Background(), "alice")
	assert.True(t, errors.Is(err, apperror.ErrTransport))
}

func TestRegister_SendsProfile(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"message":"User created successfully"}`)

	p := &model.Profile{
		UserID:            "bob",
		Age:               40,
		Gender:            model.GenderMale,
		Weight:            fptr(80.5),
		Allergies:         []string{},
		MedicalConditions: []string{"asthma"},
	}
	require.NoError(t, c.Register(context.Background(), p))

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/auth/register", rec.path)
	assert.Equal(t, "application/json", rec.ctype)
	assert.JSONEq(t, `{"user_id":"bob","age":40,"gender":"male","weight":80.5,"height":null,"allergies":[],"medical_conditions":["asthma"]}`, string(rec.body))
}

func TestRegister_Conflict(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadRequest, `{"detail":"User already exists"}`)

	err := c.Register(context.Background(), &model.Profile{UserID: "bob", Age: 1})
	assert.True(t, errors.Is(err, apperror.ErrRejected))
	assert.Equal(t, "User already exists", apperror.UserMessage(err, "Registration failed"))
}

// =========================================================================
// PROFILE
// =========================================================================

func TestUpdateProfile_PutsToUserPath(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"message":"Profile updated successfully"}`)

	err := c.UpdateProfile(context.Background(), "al/ice", &model.Profile{UserID: "al/ice", Age: 31, Gender: model.GenderOther})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/users/al%2Fice", rec.rawPath)
}

// =========================================================================
// DIARY
// =========================================================================

func TestListDiary_DecodesEntries(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[
		{"_id":"e1","user_id":"alice","date":"2024-03-01","meals":["oatmeal"],"conditions":[],"activities":[],"notes":"","created_at":"2024-03-01T08:00:00.123456"},
		{"_id":"e2","user_id":"alice","date":"2024-03-02","meals":[],"conditions":[{"condition":"headache","severity":7,"notes":"","timestamp":"2024-03-02T09:00:00Z"}],"activities":["walk"],"notes":"tired"}
	]`)

	entries, err := c.ListDiary(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/diary/alice", rec.path)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	require.NotNil(t, entries[0].CreatedAt)
	assert.Equal(t, 2024, entries[0].CreatedAt.Year())
	assert.Equal(t, "headache", entries[1].Conditions[0].Condition)
	assert.Equal(t, 7, entries[1].Conditions[0].Severity)
}

func TestListDiary_NullIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `null`)

	entries, err := c.ListDiary(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestListDiary_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `<html>oops</html>`)

	_, err := c.ListDiary(context.Background(), "alice")
	assert.True(t, errors.Is(err, apperror.ErrTransport))
}

func TestAppendDiary_SendsEntry(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"message":"Diary entry added successfully"}`)

	entry := model.DiaryEntry{
		Date:       "2024-03-01",
		Meals:      []string{"oatmeal", "coffee"},
		Conditions: []model.ConditionRecord{},
		Activities: []string{},
	}
	require.NoError(t, c.AppendDiary(context.Background(), "alice", entry))

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/diary/alice", rec.path)
	assert.JSONEq(t, `{"date":"2024-03-01","meals":["oatmeal","coffee"],"conditions":[],"activities":[],"notes":""}`, string(rec.body))
}

// =========================================================================
// RECOMMENDATIONS
// =========================================================================

func TestGenerateRecommendation(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"recommendation":"Drink more water."}`)

	text, err := c.GenerateRecommendation(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Drink more water.", text)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/recommendations/alice", rec.path)
}

func TestGenerateRecommendation_EmptyTextIsValid(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"recommendation":""}`)

	text, err := c.GenerateRecommendation(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestGenerateRecommendation_ServerError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusInternalServerError, `{"detail":"Error generating recommendation"}`)

	_, err := c.GenerateRecommendation(context.Background(), "alice")
	assert.True(t, errors.Is(err, apperror.ErrRejected))
}

func TestRecommendationHistory_PassesLimit(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[{"_id":"r1","user_id":"alice","recommendation":"Sleep more.","created_at":"2024-03-01T10:00:00"}]`)

	history, err := c.RecommendationHistory(context.Background(), "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, "/api/recommendations/alice/history", rec.path)
	assert.Equal(t, "limit=3", rec.query)
	require.Len(t, history, 1)
	assert.Equal(t, "Sleep more.", history[0].Recommendation)
}

// =========================================================================
// ERROR DETAIL
// =========================================================================

func TestReadDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"User not found"}`, "User not found"},
		{"validation list", `{"detail":[{"loc":["body","age"],"msg":"field required"},{"msg":"value is not a valid integer"}]}`, "field required; value is not a valid integer"},
		{"object detail", `{"detail":{"code":1}}`, ""},
		{"no detail", `{"error":"boom"}`, ""},
		{"not json", `Internal Server Error`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readDetail(strings.NewReader(tt.body)))
		})
	}
}

func TestRejectedWithoutDetailFallsBack(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	err := c.UpdateProfile(context.Background(), "alice", &model.Profile{UserID: "alice", Age: 30})
	require.Error(t, err)
	assert.Equal(t, "Error updating profile", apperror.UserMessage(err, "Error updating profile"))
}

// =========================================================================
// TRANSPORT
// =========================================================================

func TestUnreachableCollaborator(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(base, nil, nil)
	_, err := c.Login(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrTransport))
	assert.Equal(t, "Login failed. User not found.", apperror.UserMessage(err, "Login failed. User not found."))
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListDiary(ctx, "alice")
	assert.True(t, errors.Is(err, apperror.ErrTransport))
}

func TestRequestIDIsUniquePerCall(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[]`)

	_, err := c.ListDiary(context.Background(), "alice")
	require.NoError(t, err)
	first := rec.requestID

	_, err = c.ListDiary(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, first, rec.requestID)
}

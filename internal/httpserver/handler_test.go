package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/events"
	"jobmate/board-service/internal/httpserver"
	"jobmate/board-service/internal/model"
	"jobmate/board-service/internal/store"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	router *gin.Engine
	store  *store.Memory
	events *events.Recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := &env{store: store.NewMemory(), events: &events.Recorder{}}
	svc := board.NewService(e.store, board.ContextAuth{},
		board.WithPublisher(e.events),
		board.WithClock(func() time.Time { return now }),
	)
	e.router = httpserver.NewRouter(svc, httpserver.Options{CORSOrigins: []string{"*"}, Version: "test"})

	e.seed(t, model.CollectionUsers, "rec-1", model.User{ID: "rec-1", Role: model.RoleRecruiter, Name: "Rita", Company: "Acme"})
	e.seed(t, model.CollectionUsers, "cand-1", model.User{
		ID: "cand-1", Role: model.RoleCandidate, Name: "Bruna", Email: "bruna@example.com",
		Skills: []string{"React", "Node"}, ExperienceLevel: "5 anos",
	})
	return e
}

func (e *env) seed(t *testing.T, collection, id string, v any) {
	t.Helper()
	doc, err := store.Encode(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := e.store.Set(context.Background(), collection, id, doc); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (e *env) seedJob(t *testing.T, id string, closeIn time.Duration) {
	t.Helper()
	e.seed(t, model.CollectionJobs, id, model.JobPosting{
		ID:                 id,
		Title:              "Dev " + id,
		Description:        "Vaga",
		RequiredSkills:     []string{"React", "Node"},
		ExperienceRequired: "3 anos",
		OpenDate:           now.Add(-48 * time.Hour),
		CloseDate:          now.Add(closeIn),
		ContractType:       "CLT",
		Location:           "Recife",
		CreatorID:          "rec-1",
	})
}

func (e *env) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(httpserver.UserHeader, userID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

// ── Surface ──────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "ok" || body["service"] != "board-service" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/health", "", nil)
	w := e.do(http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "board_http_request_duration_seconds") {
		t.Errorf("metrics status = %d", w.Code)
	}
}

func TestMissingUserHeader(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/api/v1/jobs", "/api/v1/applications/mine"} {
		if w := e.do(http.MethodGet, path, "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without header = %d, want 401", path, w.Code)
		}
	}
}

// ── Jobs ─────────────────────────────────────────────────────────────────────

func TestCreateAndGetJob(t *testing.T) {
	e := newEnv(t)
	in := map[string]any{
		"title":              "Backend Go",
		"description":        "<b>APIs</b>",
		"requiredSkills":     []string{"Go"},
		"experienceRequired": "2 anos",
		"location":           "Remoto",
		"salaryMin":          4000,
		"salaryMax":          7000,
		"openDate":           now.Format(time.RFC3339),
		"closeDate":          now.Add(72 * time.Hour).Format(time.RFC3339),
		"contractType":       "PJ",
	}
	w := e.do(http.MethodPost, "/api/v1/jobs", "rec-1", in)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	var job model.JobPosting
	decode(t, w, &job)
	if job.ID == "" || job.CreatorID != "rec-1" {
		t.Fatalf("job = %+v", job)
	}
	if len(e.events.OfType(events.JobCreated)) != 1 {
		t.Errorf("job.created not published")
	}

	w = e.do(http.MethodGet, "/api/v1/jobs/"+job.ID, "cand-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var view map[string]any
	decode(t, w, &view)
	if view["status"] != "Active" || view["daysLeftLabel"] != "3 days" || view["recruiterCompany"] != "Acme" {
		t.Errorf("view = %v", view)
	}
	if view["salaryLabel"] != "R$ 4000 - R$ 7000" {
		t.Errorf("salaryLabel = %v", view["salaryLabel"])
	}
}

func TestCreateJob_ValidationDetails(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/api/v1/jobs", "rec-1", map[string]any{"title": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Error   string             `json:"error"`
		Details []board.FieldError `json:"details"`
	}
	decode(t, w, &body)
	if len(body.Details) == 0 {
		t.Errorf("expected field details, got %s", w.Body.String())
	}
}

func TestCreateJob_MalformedJSON(t *testing.T) {
	e := newEnv(t)
	if w := e.do(http.MethodPost, "/api/v1/jobs", "rec-1", "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	e := newEnv(t)
	if w := e.do(http.MethodGet, "/api/v1/jobs/nope", "cand-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListJobs_QueryParsing(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "a", 24*time.Hour)
	e.seedJob(t, "b", 5*24*time.Hour)
	e.seedJob(t, "c", -time.Hour)

	w := e.do(http.MethodGet, "/api/v1/jobs?sort=daysLeft&order=desc&pageSize=5", "cand-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		Items      []map[string]any `json:"items"`
		TotalItems int              `json:"totalItems"`
	}
	decode(t, w, &page)
	if page.TotalItems != 3 || len(page.Items) != 3 || page.Items[0]["id"] != "b" {
		t.Errorf("page = %+v", page)
	}

	bad := []string{
		"/api/v1/jobs?sort=salary",
		"/api/v1/jobs?order=up",
		"/api/v1/jobs?page=two",
		"/api/v1/jobs?pageSize=7",
		"/api/v1/jobs?status=Pending",
	}
	for _, path := range bad {
		if w := e.do(http.MethodGet, path, "cand-1", nil); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, w.Code)
		}
	}
}

func TestUpdateJob_Forbidden(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "a", 24*time.Hour)
	in := map[string]any{
		"title": "t", "description": "d", "experienceRequired": "1 ano", "location": "l",
		"openDate": now.Format(time.RFC3339), "closeDate": now.Add(time.Hour).Format(time.RFC3339),
		"contractType": "CLT",
	}
	if w := e.do(http.MethodPut, "/api/v1/jobs/a", "cand-1", in); w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

// ── Apply / delete ───────────────────────────────────────────────────────────

func TestApply_CreatedThenAlreadyApplied(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "a", 24*time.Hour)

	if w := e.do(http.MethodPost, "/api/v1/jobs/a/apply", "cand-1", nil); w.Code != http.StatusCreated {
		t.Fatalf("first apply = %d: %s", w.Code, w.Body.String())
	}
	w := e.do(http.MethodPost, "/api/v1/jobs/a/apply", "cand-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second apply = %d", w.Code)
	}
	var res board.ApplyResult
	decode(t, w, &res)
	if res.Created || res.Application.ID != model.ApplicationID("a", "cand-1") {
		t.Errorf("res = %+v", res)
	}
	if n := len(e.events.OfType(events.ApplicationCreated)); n != 1 {
		t.Errorf("application.created published %d times, want 1", n)
	}
}

func TestApply_ClosedPosting(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "old", -time.Hour)
	if w := e.do(http.MethodPost, "/api/v1/jobs/old/apply", "cand-1", nil); w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestDeleteJob_Gated(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "a", 24*time.Hour)
	e.seedJob(t, "b", 24*time.Hour)
	e.do(http.MethodPost, "/api/v1/jobs/a/apply", "cand-1", nil)

	if w := e.do(http.MethodDelete, "/api/v1/jobs/a", "rec-1", nil); w.Code != http.StatusConflict {
		t.Errorf("delete with applicants = %d, want 409", w.Code)
	}
	if w := e.do(http.MethodDelete, "/api/v1/jobs/b", "cand-1", nil); w.Code != http.StatusForbidden {
		t.Errorf("delete by non-owner = %d, want 403", w.Code)
	}
	if w := e.do(http.MethodDelete, "/api/v1/jobs/b", "rec-1", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/v1/jobs/b", "rec-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

// ── Applicants and applications ──────────────────────────────────────────────

func TestApplicantsAndDetails(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "a", 24*time.Hour)
	e.do(http.MethodPost, "/api/v1/jobs/a/apply", "cand-1", nil)

	w := e.do(http.MethodGet, "/api/v1/jobs/a/applicants", "rec-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("applicants = %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		Items []struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
		} `json:"items"`
	}
	decode(t, w, &page)
	// skills 2/2, experience 5/3 capped at 1, no salary range: 65 + 35.
	if len(page.Items) != 1 || page.Items[0].Name != "Bruna" || page.Items[0].Score != 100 {
		t.Errorf("items = %+v", page.Items)
	}

	if w := e.do(http.MethodGet, "/api/v1/jobs/a/applicants", "cand-1", nil); w.Code != http.StatusForbidden {
		t.Errorf("applicants by candidate = %d, want 403", w.Code)
	}

	appID := model.ApplicationID("a", "cand-1")
	if w := e.do(http.MethodGet, "/api/v1/applications/"+appID, "rec-1", nil); w.Code != http.StatusOK {
		t.Errorf("details = %d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/v1/applications/missing", "rec-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing details = %d, want 404", w.Code)
	}

	w = e.do(http.MethodGet, "/api/v1/applications/mine", "cand-1", nil)
	var mine struct {
		Applications []board.MyApplicationView `json:"applications"`
	}
	decode(t, w, &mine)
	if len(mine.Applications) != 1 || mine.Applications[0].JobTitle != "Dev a" {
		t.Errorf("mine = %+v", mine.Applications)
	}
}

// ── Profiles ─────────────────────────────────────────────────────────────────

func TestProfiles(t *testing.T) {
	e := newEnv(t)

	cand := map[string]any{
		"workExperience":  "Agência X",
		"skills":          []string{"Go"},
		"experienceLevel": "4 anos",
		"phone":           "+55 81 98765-4321",
		"minSalary":       4000,
		"maxSalary":       6000,
	}
	w := e.do(http.MethodPut, "/api/v1/profile/candidate", "cand-1", cand)
	if w.Code != http.StatusOK {
		t.Fatalf("candidate profile = %d: %s", w.Code, w.Body.String())
	}
	var user model.User
	decode(t, w, &user)
	if !user.SalaryRange.Valid || user.SalaryRange.Amount != 5000 {
		t.Errorf("salary = %+v, want 5000", user.SalaryRange)
	}

	cand["phone"] = "81 98765-4321"
	if w := e.do(http.MethodPut, "/api/v1/profile/candidate", "cand-1", cand); w.Code != http.StatusBadRequest {
		t.Errorf("bad phone = %d, want 400", w.Code)
	}

	rec := map[string]any{"position": "Tech Recruiter", "company": "Acme", "phone": "+55 11 91234-5678"}
	if w := e.do(http.MethodPut, "/api/v1/profile/recruiter", "rec-1", rec); w.Code != http.StatusOK {
		t.Errorf("recruiter profile = %d: %s", w.Code, w.Body.String())
	}
}

func TestListJobs_OrderWithoutSort(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "a", 24*time.Hour)
	e.seedJob(t, "b", 24*time.Hour)

	w := e.do(http.MethodGet, "/api/v1/jobs?order=desc", "cand-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		Items []map[string]any  `json:"items"`
		Sort  map[string]string `json:"sort"`
	}
	decode(t, w, &page)
	if len(page.Items) != 2 || page.Items[0]["title"] != "Dev b" {
		t.Errorf("items = %v, want Dev b first", page.Items)
	}
	if page.Sort["sortField"] != "title" || page.Sort["sortOrder"] != "desc" {
		t.Errorf("sort = %v, want title desc", page.Sort)
	}
}

// ── Registration ─────────────────────────────────────────────────────────────

func TestRegisterThenCompleteProfile(t *testing.T) {
	e := newEnv(t)
	reg := map[string]any{"name": "Nova", "email": "nova@example.com", "role": "candidate"}

	if w := e.do(http.MethodPost, "/api/v1/profile", "fresh-user", reg); w.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/api/v1/profile", "fresh-user", reg); w.Code != http.StatusOK {
		t.Errorf("re-register = %d, want 200", w.Code)
	}

	cand := map[string]any{
		"workExperience":  "Startup Y",
		"skills":          []string{"Go"},
		"experienceLevel": "1 ano",
		"phone":           "+55 81 91111-2222",
		"salaryRange":     3500,
	}
	if w := e.do(http.MethodPut, "/api/v1/profile/candidate", "fresh-user", cand); w.Code != http.StatusOK {
		t.Fatalf("complete = %d: %s", w.Code, w.Body.String())
	}

	w := e.do(http.MethodGet, "/api/v1/profile", "fresh-user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get profile = %d", w.Code)
	}
	var user model.User
	decode(t, w, &user)
	if user.Role != model.RoleCandidate || user.Name != "Nova" || len(user.Skills) != 1 {
		t.Errorf("profile = %+v", user)
	}

	w = e.do(http.MethodPatch, "/api/v1/profile", "fresh-user", map[string]any{"name": "Nova Silva"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &user)
	if user.Name != "Nova Silva" || user.ExperienceLevel != "1 ano" {
		t.Errorf("patched profile = %+v", user)
	}

	if w := e.do(http.MethodPost, "/api/v1/profile", "other", map[string]any{"name": "X", "email": "x@y.z", "role": "admin"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad role = %d, want 400", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/v1/profile", "other", nil); w.Code != http.StatusNotFound {
		t.Errorf("unregistered profile = %d, want 404", w.Code)
	}
}

func TestSettingsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.seed(t, model.CollectionSettings, model.GlobalSettingsID, model.Settings{
		Skills: []string{"Go"}, ContractTypes: []string{"CLT"}, ExperienceLevels: []string{"Pleno"},
	})

	w := e.do(http.MethodGet, "/api/v1/settings", "cand-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st model.Settings
	decode(t, w, &st)
	if len(st.Skills) != 1 || st.ContractTypes[0] != "CLT" || st.ExperienceLevels[0] != "Pleno" {
		t.Errorf("settings = %+v", st)
	}
}

func TestCandidateDetails_UnknownCandidate(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "j1", 24*time.Hour)
	if w := e.do(http.MethodPost, "/api/v1/jobs/j1/apply", "ghost", nil); w.Code != http.StatusCreated {
		t.Fatalf("apply = %d", w.Code)
	}

	w := e.do(http.MethodGet, "/api/v1/applications/"+model.ApplicationID("j1", "ghost"), "rec-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("details = %d: %s", w.Code, w.Body.String())
	}
	var details board.CandidateDetails
	decode(t, w, &details)
	if details.Candidate.Name != board.UnknownCandidate {
		t.Errorf("candidate = %+v, want placeholder", details.Candidate)
	}
}

func TestUserHeaderWithUnderscore(t *testing.T) {
	e := newEnv(t)
	e.seedJob(t, "a", 24*time.Hour)
	if w := e.do(http.MethodPost, "/api/v1/jobs/a/apply", "b_c", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/fastlab/regain-api/internal/infrastructure/config"
	"github.com/fastlab/regain-api/internal/infrastructure/datastore"
	"github.com/fastlab/regain-api/internal/infrastructure/logger"
)

func newTestAPI(t *testing.T) (*echo.Echo, *datastore.Store) {
	t.Helper()
	log := logger.NewNop()
	store := datastore.New(filepath.Join(t.TempDir(), "db.json"), log)

	e := echo.New()
	users := NewUserHandler(store, log)
	NewResourceHandler(store, log).Register(e, users)
	users.Register(e)
	NewAuthHandler(store, config.AuthConfig{
		Secret:      "local-dev-secret",
		TokenTTL:    180 * time.Second,
		CallbackURL: "http://localhost:3000/auth/callback",
	}, log).Register(e)
	e.GET("/", Health)
	return e, store
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) datastore.Record {
	t.Helper()
	out := datastore.Record{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, rec.Body.String())
	}
	return out
}

func decodeString(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON string: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	e, _ := newTestAPI(t)

	res := do(e, http.MethodPost, "/exercise/create", `{"title":"Neck Stretch","time":30}`)
	if res.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200", res.Code)
	}
	created := decodeRecord(t, res)
	id := datastore.StringField(created, "id")
	if id == "" {
		t.Fatal("create did not assign an id")
	}
	if _, ok := created["createdAt"]; ok {
		t.Error("create auto-populated createdAt, want caller-controlled timestamps")
	}

	res = do(e, http.MethodGet, "/exercise/get/"+id, "")
	if res.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", res.Code)
	}
	got := decodeRecord(t, res)
	if got["title"] != "Neck Stretch" || got["time"] != float64(30) {
		t.Errorf("get = %v, want the created fields", got)
	}
}

func TestCreateKeepsCallerSuppliedID(t *testing.T) {
	e, _ := newTestAPI(t)

	res := do(e, http.MethodPost, "/group/create", `{"id":"g-1","area":"Arms"}`)
	created := decodeRecord(t, res)
	if created["id"] != "g-1" {
		t.Errorf("id = %v, want caller-supplied g-1", created["id"])
	}
}

func TestGetMissingReturnsSentinelWith200(t *testing.T) {
	e, _ := newTestAPI(t)

	for path, want := range map[string]string{
		"/exercise/get/none":      "Error: Exercise not found",
		"/group/get/none":         "Error: Group not found",
		"/groupExercise/get/none": "Error: GroupExercise not found",
		"/stat/get/none":          "Error: Stat not found",
		"/session/get/none":       "Error: Session not found",
		"/message/get/none":       "Error: Message not found",
		"/userGroup/get/none":     "Error: UserGroup not found",
	} {
		res := do(e, http.MethodGet, path, "")
		if res.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, res.Code)
		}
		if got := decodeString(t, res); got != want {
			t.Errorf("%s body = %q, want %q", path, got, want)
		}
	}
}

func TestUpdateMergesAndStampsUpdatedAt(t *testing.T) {
	e, _ := newTestAPI(t)

	do(e, http.MethodPost, "/exercise/create",
		`{"id":"e1","title":"Neck Stretch","time":30,"createdAt":"2020-01-01T00:00:00.000Z","updatedAt":"2020-01-01T00:00:00.000Z"}`)

	res := do(e, http.MethodPut, "/exercise/update", `{"id":"e1","time":45}`)
	if res.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", res.Code)
	}
	merged := decodeRecord(t, res)
	if merged["title"] != "Neck Stretch" {
		t.Errorf("title = %v, want untouched field preserved", merged["title"])
	}
	if merged["time"] != float64(45) {
		t.Errorf("time = %v, want patched to 45", merged["time"])
	}
	if merged["createdAt"] != "2020-01-01T00:00:00.000Z" {
		t.Errorf("createdAt = %v, want unchanged", merged["createdAt"])
	}
	updatedAt := datastore.StringField(merged, "updatedAt")
	if updatedAt <= "2020-01-01T00:00:00.000Z" {
		t.Errorf("updatedAt = %q, want strictly newer than the prior value", updatedAt)
	}
}

func TestUpdateMissingRecordIs500Sentinel(t *testing.T) {
	e, _ := newTestAPI(t)

	res := do(e, http.MethodPut, "/message/update", `{"id":"none"}`)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", res.Code)
	}
	if got := decodeString(t, res); got != "Error: Message not found" {
		t.Errorf("body = %q, want sentinel", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	e, _ := newTestAPI(t)

	do(e, http.MethodPost, "/stat/create", `{"id":"s1","pain":3}`)

	for i := 0; i < 2; i++ {
		res := do(e, http.MethodDelete, "/stat/delete", `{"id":"s1"}`)
		if res.Code != http.StatusOK {
			t.Fatalf("delete #%d status = %d, want 200", i+1, res.Code)
		}
		body := decodeRecord(t, res)
		if body["message"] != "Stat deleted" {
			t.Errorf("delete #%d body = %v, want fixed success message", i+1, body)
		}
	}

	res := do(e, http.MethodGet, "/stat/get/s1", "")
	if got := decodeString(t, res); got != "Error: Stat not found" {
		t.Errorf("get after delete = %q, want sentinel", got)
	}
}

func TestListPreservesCreationOrder(t *testing.T) {
	e, _ := newTestAPI(t)

	for _, id := range []string{"a", "b", "c"} {
		do(e, http.MethodPost, "/session/create", `{"id":"`+id+`"}`)
	}

	res := do(e, http.MethodGet, "/session/list", "")
	var list []datastore.Record
	if err := json.Unmarshal(res.Body.Bytes(), &list); err != nil {
		t.Fatalf("list is not an array: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list has %d records, want 3", len(list))
	}
	for i, id := range []string{"a", "b", "c"} {
		if datastore.StringField(list[i], "id") != id {
			t.Errorf("list[%d].id = %v, want %s", i, list[i]["id"], id)
		}
	}
}

func TestEmptyListIsArrayNotNull(t *testing.T) {
	e, _ := newTestAPI(t)

	res := do(e, http.MethodGet, "/message/list", "")
	if got := strings.TrimSpace(res.Body.String()); got != "[]" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestUnparsableBodyDegradesToEmptyRecord(t *testing.T) {
	e, _ := newTestAPI(t)

	res := do(e, http.MethodPost, "/message/create", `{not json`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (silent degradation)", res.Code)
	}
	created := decodeRecord(t, res)
	if datastore.StringField(created, "id") == "" {
		t.Error("degraded create did not assign an id")
	}
}

func TestUserKeyedByEmail(t *testing.T) {
	e, _ := newTestAPI(t)

	res := do(e, http.MethodPost, "/user/create", `{"email":"a@x.com","onboard":false}`)
	created := decodeRecord(t, res)
	if datastore.StringField(created, "id") == "" {
		t.Fatal("user create did not assign an id")
	}

	res = do(e, http.MethodGet, "/user/getUserByEmail/a@x.com", "")
	got := decodeRecord(t, res)
	if got["email"] != "a@x.com" {
		t.Errorf("getUserByEmail = %v, want created user", got)
	}

	res = do(e, http.MethodGet, "/user/getUserByEmail/missing@x.com", "")
	if got := decodeString(t, res); got != "Error: User doesn't exist" {
		t.Errorf("missing user body = %q, want sentinel", got)
	}

	res = do(e, http.MethodPut, "/user/update", `{"email":"a@x.com","overallProgress":50}`)
	updated := decodeRecord(t, res)
	if updated["overallProgress"] != float64(50) {
		t.Errorf("update by email = %v, want merged progress", updated)
	}

	res = do(e, http.MethodPut, "/user/update", `{"email":"missing@x.com"}`)
	if res.Code != http.StatusInternalServerError {
		t.Errorf("update missing user status = %d, want 500", res.Code)
	}

	res = do(e, http.MethodDelete, "/user/delete", `{"email":"a@x.com"}`)
	body := decodeRecord(t, res)
	if body["message"] != "User deleted" {
		t.Errorf("delete body = %v, want fixed message", body)
	}
	res = do(e, http.MethodGet, "/user/getUserByEmail/a@x.com", "")
	if got := decodeString(t, res); got != "Error: User doesn't exist" {
		t.Errorf("get after delete = %q, want sentinel", got)
	}
}

func TestUpdateExerciseTargetsReplacesWholesale(t *testing.T) {
	e, _ := newTestAPI(t)

	do(e, http.MethodPost, "/user/create",
		`{"email":"a@x.com","exercises":[{"exerciseId":"e1","targetReps":5},{"exerciseId":"e2","targetReps":8}]}`)

	res := do(e, http.MethodPut, "/user/updateExerciseTargets",
		`{"email":"a@x.com","exercises":[{"exerciseId":"e3","targetReps":3}]}`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	updated := decodeRecord(t, res)
	exercises, ok := updated["exercises"].([]any)
	if !ok || len(exercises) != 1 {
		t.Fatalf("exercises = %v, want the replacement list only", updated["exercises"])
	}
	first, _ := exercises[0].(map[string]any)
	if first["exerciseId"] != "e3" {
		t.Errorf("exercises[0] = %v, want e3 assignment", first)
	}
	if datastore.StringField(updated, "updatedAt") == "" {
		t.Error("updatedAt not stamped")
	}
}

func TestUserGroupUpdateMutatesUserNotJoinTable(t *testing.T) {
	e, store := newTestAPI(t)

	do(e, http.MethodPost, "/user/create", `{"email":"a@x.com","onboard":false,"groups":[]}`)
	do(e, http.MethodPost, "/userGroup/create", `{"id":"ug1","userId":"u1","groupId":"g1"}`)

	res := do(e, http.MethodPut, "/userGroup/update",
		`{"email":"a@x.com","onboard":true,"groups":[{"id":"g1","area":"Arms"}]}`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	updated := decodeRecord(t, res)
	if updated["email"] != "a@x.com" {
		t.Fatalf("updated record = %v, want the user", updated)
	}
	if updated["onboard"] != true {
		t.Errorf("onboard = %v, want true", updated["onboard"])
	}
	groups, ok := updated["groups"].([]any)
	if !ok || len(groups) != 1 {
		t.Errorf("groups = %v, want replaced list", updated["groups"])
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.UserGroups) != 1 || datastore.StringField(doc.UserGroups[0], "id") != "ug1" {
		t.Errorf("userGroups = %v, want join table untouched", doc.UserGroups)
	}

	res = do(e, http.MethodPut, "/userGroup/update", `{"email":"missing@x.com"}`)
	if res.Code != http.StatusInternalServerError {
		t.Errorf("missing user status = %d, want 500", res.Code)
	}
	if got := decodeString(t, res); got != "Error: User not found" {
		t.Errorf("missing user body = %q, want sentinel", got)
	}
}

func TestSessionListByUser(t *testing.T) {
	e, _ := newTestAPI(t)

	do(e, http.MethodPost, "/session/create", `{"id":"s1","userId":"u1"}`)
	do(e, http.MethodPost, "/session/create", `{"id":"s2","userId":"u2"}`)
	do(e, http.MethodPost, "/session/create", `{"id":"s3","userId":"u1"}`)

	res := do(e, http.MethodGet, "/session/listByUser/u1", "")
	var list []datastore.Record
	if err := json.Unmarshal(res.Body.Bytes(), &list); err != nil {
		t.Fatalf("list is not an array: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list has %d sessions, want 2", len(list))
	}
	for _, sess := range list {
		if datastore.StringField(sess, "userId") != "u1" {
			t.Errorf("session %v belongs to the wrong user", sess)
		}
	}

	res = do(e, http.MethodGet, "/session/listByUser/nobody", "")
	if got := strings.TrimSpace(res.Body.String()); got != "[]" {
		t.Errorf("empty filter body = %q, want []", got)
	}
}

func TestHealthGreeting(t *testing.T) {
	e, _ := newTestAPI(t)

	res := do(e, http.MethodGet, "/", "")
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	got := decodeString(t, res)
	if !strings.HasPrefix(got, "Hello world. The time is ") {
		t.Errorf("body = %q, want greeting with timestamp", got)
	}
}

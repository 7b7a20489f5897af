package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/files"
	"github.com/goliatone/go-manual/internal/metrics"
	"github.com/goliatone/go-manual/internal/runtimeconfig"
	"github.com/goliatone/go-manual/internal/users"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type apiFixture struct {
	handler    http.Handler
	catalog    catalog.Service
	adminToken string
	userToken  string
	observed   *recordingObserver
}

type recordingObserver struct {
	requests []string
	statuses []int
	uploads  []bool
}

func (o *recordingObserver) ObserveRequest(procedure string, status int, _ time.Duration) {
	o.requests = append(o.requests, procedure)
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) ObserveUpload(ok bool, _ int64) {
	o.uploads = append(o.uploads, ok)
}

func setupAPI(t *testing.T) apiFixture {
	t.Helper()
	ctx := context.Background()

	catalogSvc := catalog.NewService(
		catalog.NewMemoryCategoryRepository(),
		catalog.NewMemoryItemRepository(),
		catalog.NewMemoryItemImageRepository(),
		catalog.WithSearchLog(catalog.NewMemorySearchLogRepository(), auth.ActorID),
	)
	filesSvc := files.NewService(files.NewMemoryFileRepository(), files.NewMemoryBlobStore(),
		files.WithAllowedExtensions(runtimeconfig.DefaultAllowedExtensions...),
	)
	usersSvc := users.NewService(users.NewMemoryUserRepository(), users.WithOwner("owner"))

	admin, err := usersSvc.Upsert(ctx, users.UpsertInput{OpenID: "owner"})
	if err != nil {
		t.Fatalf("upsert admin: %v", err)
	}
	member, err := usersSvc.Upsert(ctx, users.UpsertInput{OpenID: "member"})
	if err != nil {
		t.Fatalf("upsert member: %v", err)
	}

	tokens, err := auth.NewTokens("test-secret", "manual", time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	adminToken, err := tokens.Issue(admin)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	userToken, err := tokens.Issue(member)
	if err != nil {
		t.Fatalf("issue user token: %v", err)
	}

	observer := &recordingObserver{}
	api := New(catalogSvc,
		WithFiles(filesSvc),
		WithUsers(usersSvc),
		WithTokens(tokens),
		WithObserver(observer),
		WithUploadObserver(observer),
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "metrics")
		})),
	)
	return apiFixture{
		handler:    api.Handler(),
		catalog:    catalogSvc,
		adminToken: adminToken,
		userToken:  userToken,
		observed:   observer,
	}
}

func call(t *testing.T, handler http.Handler, token, name string, input any, expectedStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			t.Fatalf("marshal input: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/"+name, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != expectedStatus {
		t.Fatalf("%s: expected status %d got %d body=%s", name, expectedStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Result, target); err != nil {
		t.Fatalf("decode result: %v body=%s", err, rec.Body.String())
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var payload errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v body=%s", err, rec.Body.String())
	}
	return payload
}

func TestAPI_CategoryAndItemLifecycle(t *testing.T) {
	f := setupAPI(t)

	rec := call(t, f.handler, f.adminToken, "manual.createCategory", map[string]any{"title": "Setup", "order": 1}, http.StatusOK)
	var category catalog.Category
	decodeResult(t, rec, &category)
	if category.Slug != "setup" {
		t.Fatalf("expected slug setup got %q", category.Slug)
	}

	rec = call(t, f.handler, f.adminToken, "manual.createItem", map[string]any{
		"categoryId": category.ID,
		"title":      "Install",
		"content":    "**Steps**\n- download\n- run",
	}, http.StatusOK)
	var item catalog.Item
	decodeResult(t, rec, &item)

	rec = call(t, f.handler, "", "manual.getItemsByCategory", map[string]any{"categoryId": category.ID}, http.StatusOK)
	var items []catalog.Item
	decodeResult(t, rec, &items)
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("expected the created item, got %+v", items)
	}

	rec = call(t, f.handler, "", "manual.renderItem", map[string]any{"id": item.ID}, http.StatusOK)
	var view struct {
		Output struct {
			Kind   string           `json:"kind"`
			Blocks []map[string]any `json:"blocks"`
		} `json:"output"`
	}
	decodeResult(t, rec, &view)
	if view.Output.Kind != "blocks" || len(view.Output.Blocks) != 2 {
		t.Fatalf("unexpected render output %+v", view.Output)
	}

	call(t, f.handler, f.adminToken, "manual.updateItem", map[string]any{"id": item.ID, "title": "Installing"}, http.StatusOK)
	call(t, f.handler, f.adminToken, "manual.deleteCategory", map[string]any{"id": category.ID}, http.StatusOK)
	rec = call(t, f.handler, "", "manual.getItem", map[string]any{"id": item.ID}, http.StatusNotFound)
	if payload := decodeError(t, rec); payload.Error != "not_found" {
		t.Fatalf("expected not_found got %+v", payload)
	}
}

func TestAPI_QueryAcceptsGETInput(t *testing.T) {
	f := setupAPI(t)
	ctx := context.Background()
	category, err := f.catalog.CreateCategory(ctx, catalog.CreateCategoryInput{Title: "Billing"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := f.catalog.CreateItem(ctx, catalog.CreateItemInput{CategoryID: category.ID, Title: "Invoices", Content: "text"}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	input := url.QueryEscape(`{"query":"invoice"}`)
	req := httptest.NewRequest(http.MethodGet, "/api/manual.getTree?input="+input, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	var tree []catalog.TreeNode
	decodeResult(t, rec, &tree)
	if len(tree) != 1 || tree[0].Category.Title != "Billing" {
		t.Fatalf("expected filtered tree, got %+v", tree)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestAPI_MutationRejectsGET(t *testing.T) {
	f := setupAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/manual.deleteItem", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rec.Code)
	}
}

func TestAPI_AccessLevels(t *testing.T) {
	f := setupAPI(t)
	input := map[string]any{"title": "Blocked"}

	rec := call(t, f.handler, "", "manual.createCategory", input, http.StatusUnauthorized)
	if payload := decodeError(t, rec); payload.Error != "unauthorized" {
		t.Fatalf("expected unauthorized got %+v", payload)
	}
	call(t, f.handler, f.userToken, "manual.createCategory", input, http.StatusForbidden)
	call(t, f.handler, "", "files.list", nil, http.StatusUnauthorized)
	call(t, f.handler, f.userToken, "files.list", nil, http.StatusOK)
	call(t, f.handler, "not-a-token", "manual.getCategories", nil, http.StatusUnauthorized)
}

func TestAPI_ValidationIssues(t *testing.T) {
	f := setupAPI(t)
	rec := call(t, f.handler, f.adminToken, "manual.createCategory", map[string]any{"title": ""}, http.StatusBadRequest)
	payload := decodeError(t, rec)
	if payload.Error != "validation_failed" {
		t.Fatalf("expected validation_failed got %+v", payload)
	}
	if len(payload.Issues) != 1 || payload.Issues[0].Field != "title" {
		t.Fatalf("expected title issue got %+v", payload.Issues)
	}

	rec = call(t, f.handler, "", "manual.getItem", map[string]any{}, http.StatusBadRequest)
	if payload := decodeError(t, rec); len(payload.Issues) != 1 || payload.Issues[0].Field != "id" {
		t.Fatalf("expected id issue got %+v", payload.Issues)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/manual.getItem", strings.NewReader("{"))
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest || decodeError(t, res).Error != "bad_request" {
		t.Fatalf("expected bad_request got %d %s", res.Code, res.Body.String())
	}
}

func TestAPI_UnknownProcedure(t *testing.T) {
	f := setupAPI(t)
	call(t, f.handler, "", "manual.nope", nil, http.StatusNotFound)
	if len(f.observed.requests) != 1 || f.observed.requests[0] != UnknownProcedure || f.observed.statuses[0] != http.StatusNotFound {
		t.Fatalf("expected observed 404, got %v %v", f.observed.requests, f.observed.statuses)
	}
}

func TestAPI_SearchReturnsSuggestionsWhenEmpty(t *testing.T) {
	f := setupAPI(t)
	ctx := context.Background()
	category, err := f.catalog.CreateCategory(ctx, catalog.CreateCategoryInput{Title: "Setup"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := f.catalog.CreateItem(ctx, catalog.CreateItemInput{CategoryID: category.ID, Title: "Installation", Content: "x"}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	rec := call(t, f.handler, f.userToken, "manual.search", map[string]any{"query": "instln"}, http.StatusOK)
	var result searchResult
	decodeResult(t, rec, &result)
	if len(result.Items) != 0 {
		t.Fatalf("expected no direct matches got %+v", result.Items)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0].Title != "Installation" {
		t.Fatalf("expected suggestion got %+v", result.Suggestions)
	}

	rec = call(t, f.handler, "", "manual.search", map[string]any{"query": "install"}, http.StatusOK)
	var direct searchResult
	decodeResult(t, rec, &direct)
	if len(direct.Items) != 1 || len(direct.Suggestions) != 0 {
		t.Fatalf("expected one match without suggestions got %+v", direct)
	}
}

func TestAPI_SearchLogsAreAdminOnly(t *testing.T) {
	f := setupAPI(t)
	call(t, f.handler, f.userToken, "manual.search", map[string]any{"query": "anything"}, http.StatusOK)
	call(t, f.handler, "", "manual.search", map[string]any{"query": "anonymous"}, http.StatusOK)

	call(t, f.handler, f.userToken, "manual.getSearchLogs", nil, http.StatusForbidden)
	rec := call(t, f.handler, f.adminToken, "manual.getSearchLogs", nil, http.StatusOK)
	var logs []catalog.SearchLog
	decodeResult(t, rec, &logs)
	if len(logs) != 1 || logs[0].Query != "anything" || logs[0].ResultCount != 0 {
		t.Fatalf("expected one logged search got %+v", logs)
	}
}

func TestAPI_PreviewRendersMarkup(t *testing.T) {
	f := setupAPI(t)
	rec := call(t, f.handler, f.adminToken, "manual.preview", map[string]any{"content": "<p>hi</p><script>x()</script>"}, http.StatusOK)
	var out struct {
		Kind string `json:"kind"`
		HTML string `json:"html"`
	}
	decodeResult(t, rec, &out)
	if out.Kind != "html" || out.HTML != "<p>hi</p>" {
		t.Fatalf("unexpected preview %+v", out)
	}
}

func TestAPI_AuthMe(t *testing.T) {
	f := setupAPI(t)
	rec := call(t, f.handler, "", "auth.me", nil, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != `{"result":null}` {
		t.Fatalf("expected null session got %s", rec.Body.String())
	}

	rec = call(t, f.handler, f.adminToken, "auth.me", nil, http.StatusOK)
	var me session
	decodeResult(t, rec, &me)
	if !me.Actor.IsAdmin() || me.User == nil || me.User.OpenID != "owner" {
		t.Fatalf("expected admin session got %+v", me)
	}
}

func upload(t *testing.T, handler http.Handler, token, name, content string, expectedStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.WriteField("description", "quarterly"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/files/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != expectedStatus {
		t.Fatalf("upload: expected status %d got %d body=%s", expectedStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func TestAPI_FileUploadDownloadAndDelete(t *testing.T) {
	f := setupAPI(t)

	upload(t, f.handler, "", "report.pdf", "data", http.StatusUnauthorized)
	rec := upload(t, f.handler, f.userToken, "report.pdf", "%PDF-1.4 body", http.StatusCreated)
	var record files.File
	decodeResult(t, rec, &record)
	if record.ID == uuid.Nil || record.Name != "report.pdf" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Description == nil || *record.Description != "quarterly" {
		t.Fatalf("expected description, got %v", record.Description)
	}

	rec = call(t, f.handler, f.userToken, "files.getDownloadUrl", map[string]any{"key": record.Key}, http.StatusOK)
	var link downloadURL
	decodeResult(t, rec, &link)
	if link.URL != "/files/"+record.ID.String() {
		t.Fatalf("unexpected download url %q", link.URL)
	}

	req := httptest.NewRequest(http.MethodGet, link.URL, nil)
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("download: expected 200 got %d", res.Code)
	}
	if res.Body.String() != "%PDF-1.4 body" {
		t.Fatalf("unexpected download body %q", res.Body.String())
	}
	if !strings.Contains(res.Header().Get("Content-Disposition"), "report.pdf") {
		t.Fatalf("expected filename in disposition, got %q", res.Header().Get("Content-Disposition"))
	}

	rec = call(t, f.handler, f.userToken, "files.list", map[string]any{"query": "quarter"}, http.StatusOK)
	var listed []files.File
	decodeResult(t, rec, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected filtered file, got %d", len(listed))
	}

	call(t, f.handler, f.userToken, "files.delete", map[string]any{"id": record.ID}, http.StatusOK)
	res = httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, link.URL, nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", res.Code)
	}

	if len(f.observed.uploads) != 1 || !f.observed.uploads[0] {
		t.Fatalf("expected one successful upload observation, got %v", f.observed.uploads)
	}
}

func TestAPI_UploadRejectsExtension(t *testing.T) {
	f := setupAPI(t)
	rec := upload(t, f.handler, f.userToken, "run.exe", "MZ", http.StatusBadRequest)
	if payload := decodeError(t, rec); payload.Error != "bad_request" {
		t.Fatalf("expected bad_request got %+v", payload)
	}
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	f := setupAPI(t)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Body.String() != "metrics" {
		t.Fatalf("expected metrics handler, got %q", rec.Body.String())
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry()
	proc := Query("x.y", AccessPublic, func(context.Context, none) (int, error) { return 1, nil })
	if err := registry.Register(proc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(proc); err == nil {
		t.Fatalf("expected duplicate error")
	}
	out, err := registry.Invoke(context.Background(), "x.y", rawInput(nil))
	if err != nil || out != 1 {
		t.Fatalf("unexpected invoke result %v %v", out, err)
	}
}

func TestAPI_OpenAPIDescribesProcedures(t *testing.T) {
	f := setupAPI(t)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var doc struct {
		Paths map[string]map[string]struct {
			Access   string           `json:"x-access"`
			Security []map[string]any `json:"security"`
		} `json:"paths"`
		Count int `json:"x-procedure-count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Count != len(doc.Paths) || doc.Count == 0 {
		t.Fatalf("expected procedure count to match paths, got %d and %d", doc.Count, len(doc.Paths))
	}
	tree, ok := doc.Paths["/api/manual.getTree"]
	if !ok {
		t.Fatal("expected getTree path")
	}
	if _, ok := tree["get"]; !ok {
		t.Fatal("expected GET for query")
	}
	create := doc.Paths["/api/manual.createCategory"]["post"]
	if create.Access != "admin" || len(create.Security) != 1 {
		t.Fatalf("expected admin mutation with bearer security, got %+v", create)
	}
}

func TestAPI_UnknownProceduresShareOneMetricsSeries(t *testing.T) {
	m := metrics.New()
	api := New(catalog.NewService(
		catalog.NewMemoryCategoryRepository(),
		catalog.NewMemoryItemRepository(),
		catalog.NewMemoryItemImageRepository(),
	), WithObserver(m))
	handler := api.Handler()

	for i := range 20 {
		call(t, handler, "", fmt.Sprintf("junk.%d", i), nil, http.StatusNotFound)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/%ff%fe", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for undecodable name, got %d", rec.Code)
	}
	call(t, handler, "", "manual.getCategories", nil, http.StatusOK)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(UnknownProcedure, http.StatusText(http.StatusNotFound))); got != 21 {
		t.Fatalf("expected 21 unknown calls, got %v", got)
	}
	if got := testutil.CollectAndCount(m.RequestsTotal); got != 2 {
		t.Fatalf("expected two request series, got %d", got)
	}
}

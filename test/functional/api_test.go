package functional_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/testserver"
	"github.com/stretchr/testify/require"
)

const pdfURI = "data:application/pdf;base64,JVBERi0xLjQK"

type projectJSON struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Tags       []string `json:"tags"`
	Active     bool     `json:"active"`
	QuoteID    string   `json:"quoteId"`
	ContractID string   `json:"contractId"`
}

type linkJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Missing bool   `json:"missing"`
}

type projectDetail struct {
	Project projectJSON `json:"project"`
	Links   struct {
		Quote    *linkJSON `json:"quote"`
		Contract *linkJSON `json:"contract"`
	} `json:"links"`
}

type recordJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	FileName  string `json:"fileName"`
}

func send(t *testing.T, ts *testserver.TestServer, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.Do(t, req)
}

func decode[T any](t *testing.T, resp *http.Response, status int) T {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != status {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d. Body: %s", status, resp.StatusCode, string(data))
	}
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "secret")

	resp, err := http.Get(ts.Server.URL + "/api/projects")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, ts, http.MethodGet, "/api/projects", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFunctional_QuoteLifecycle(t *testing.T) {
	ts := testserver.New(t, "secret")

	proj := decode[projectJSON](t, send(t, ts, http.MethodPost, "/api/projects", map[string]any{
		"name": "Acme site", "tags": []string{"web", "web", " urgent "},
	}), http.StatusCreated)
	require.Equal(t, []string{"web", "urgent"}, proj.Tags)
	require.True(t, proj.Active)

	quote := decode[recordJSON](t, send(t, ts, http.MethodPost, "/api/quotes", map[string]any{
		"name": "Q1", "projectId": proj.ID, "fileName": "q1.pdf", "fileContent": pdfURI,
	}), http.StatusCreated)
	require.Equal(t, proj.ID, quote.ProjectID)

	detail := decode[projectDetail](t, send(t, ts, http.MethodGet, "/api/projects/"+proj.ID, nil), http.StatusOK)
	require.Equal(t, quote.ID, detail.Project.QuoteID)
	require.NotNil(t, detail.Links.Quote)
	require.Equal(t, "Q1", detail.Links.Quote.Name)
	require.False(t, detail.Links.Quote.Missing)

	resp := send(t, ts, http.MethodGet, "/api/quotes/"+quote.ID+"/download", nil)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.Equal(t, "%PDF-1.4\n", string(data))

	resp = send(t, ts, http.MethodDelete, "/api/quotes/"+quote.ID, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	detail = decode[projectDetail](t, send(t, ts, http.MethodGet, "/api/projects/"+proj.ID, nil), http.StatusOK)
	require.Empty(t, detail.Project.QuoteID)
	require.Nil(t, detail.Links.Quote)
}

func TestFunctional_ProjectDeleteLeavesRecordsDangling(t *testing.T) {
	ts := testserver.New(t, "secret")

	proj := decode[projectJSON](t, send(t, ts, http.MethodPost, "/api/projects", map[string]any{"name": "Gone"}), http.StatusCreated)
	contract := decode[recordJSON](t, send(t, ts, http.MethodPost, "/api/contracts", map[string]any{
		"name": "C1", "projectId": proj.ID, "fileContent": pdfURI,
	}), http.StatusCreated)

	resp := send(t, ts, http.MethodDelete, "/api/projects/"+proj.ID, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	listings := decode[[]dependent.Listing](t, send(t, ts, http.MethodGet, "/api/contracts", nil), http.StatusOK)
	require.Len(t, listings, 1)
	require.Equal(t, contract.ID, string(listings[0].ID))
	require.Equal(t, dependent.NoProject, listings[0].ProjectName)
}

func TestFunctional_StrictLinking(t *testing.T) {
	ts := testserver.New(t, "secret", testserver.WithIntegrity(dependent.Options{StrictLinking: true}))

	proj := decode[projectJSON](t, send(t, ts, http.MethodPost, "/api/projects", map[string]any{"name": "Acme"}), http.StatusCreated)
	first := decode[recordJSON](t, send(t, ts, http.MethodPost, "/api/quotes", map[string]any{
		"name": "Q1", "projectId": proj.ID, "fileContent": pdfURI,
	}), http.StatusCreated)

	resp := send(t, ts, http.MethodPost, "/api/quotes", map[string]any{
		"name": "Q2", "projectId": proj.ID, "fileContent": pdfURI,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	detail := decode[projectDetail](t, send(t, ts, http.MethodGet, "/api/projects/"+proj.ID, nil), http.StatusOK)
	require.Equal(t, first.ID, detail.Project.QuoteID)
}

func TestFunctional_MultipartUpload(t *testing.T) {
	ts := testserver.New(t, "secret")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("name", "Signed"))
	part, err := form.CreateFormFile("file", "signed.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/contracts", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())

	rec := decode[recordJSON](t, ts.Do(t, req), http.StatusCreated)
	require.Equal(t, "signed.pdf", rec.FileName)
	require.Empty(t, rec.ProjectID)
}

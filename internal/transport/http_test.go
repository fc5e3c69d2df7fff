package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rpggio/officina/internal/attachment"
	"github.com/rpggio/officina/internal/domain/dashboard"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/domain/snippet"
	"github.com/rpggio/officina/internal/memstore"
	"github.com/rpggio/officina/internal/repository"
	"github.com/rpggio/officina/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServices(store repository.DocumentStore) Services {
	projects := project.NewService(store, nil)
	snippets := snippet.NewService(store, nil)
	return Services{
		Projects:  projects,
		Quotes:    dependent.NewService(dependent.Quotes, store, projects, dependent.Options{}, nil),
		Contracts: dependent.NewService(dependent.Contracts, store, projects, dependent.Options{}, nil),
		Snippets:  snippets,
		Dashboard: dashboard.NewService(projects, snippets),
	}
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = 1 << 20
	}
	server := httptest.NewServer(NewServer(newServices(store), opts))
	t.Cleanup(server.Close)
	return server, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createProject(t *testing.T, baseURL string, in project.Input) project.Project {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/projects", in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[project.Project](t, resp)
}

func TestHTTPServer_Health(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_ProjectsFilterAndTags(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	createProject(t, server.URL, project.Input{Name: "Acme Site", Client: "Acme Corp", Tags: []string{"web", "seo"}})
	createProject(t, server.URL, project.Input{Name: "Beta App", Client: "Beta LLC", Tags: []string{"mobile"}})

	resp := doJSON(t, http.MethodGet, server.URL+"/api/projects?q=acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[projectListResponse](t, resp)
	require.Len(t, list.Projects, 1)
	require.Equal(t, "Acme Site", list.Projects[0].Name)
	require.Equal(t, []string{"web", "seo", "mobile"}, list.Tags)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/projects?tag=mobile", nil)
	list = decodeBody[projectListResponse](t, resp)
	require.Len(t, list.Projects, 1)
	require.Equal(t, "Beta App", list.Projects[0].Name)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/projects?q=app&tag=web", nil)
	list = decodeBody[projectListResponse](t, resp)
	require.Empty(t, list.Projects)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/projects/tags/toggle", toggleTagRequest{Selected: []string{"web"}, Tag: "seo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"web", "seo"}, decodeBody[toggleTagResponse](t, resp).Selected)
}

func TestHTTPServer_ProjectLifecycle(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	proj := createProject(t, server.URL, project.Input{Name: "Acme Site"})

	resp := doJSON(t, http.MethodPut, server.URL+"/api/projects/"+string(proj.ID), project.Input{Name: "Acme Site v2", Notes: "rinnovo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Acme Site v2", decodeBody[project.Project](t, resp).Name)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/projects/"+string(proj.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[projectResponse](t, resp)
	require.Equal(t, "rinnovo", got.Project.Notes)
	require.Nil(t, got.Links.Quote)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/projects/"+string(proj.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/projects/"+string(proj.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Progetto non trovato", decodeBody[ErrorBody](t, resp).Error)
}

func TestHTTPServer_ProjectValidation(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/projects", project.Input{
		Name:           "Acme",
		URL:            "not a url",
		ContractPeriod: project.ContractPeriod{Start: "2024-03-01", End: "2024-01-01"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[ErrorBody](t, resp)
	require.Equal(t, msgInvalidInput, body.Error)
	require.Contains(t, body.Fields, "url")
	require.Contains(t, body.Fields, "contractPeriod.end")

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/projects", strings.NewReader("{"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	require.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestHTTPServer_Export(t *testing.T) {
	server, _ := newTestServer(t, Options{})
	createProject(t, server.URL, project.Input{Name: "Acme Site"})

	resp := doJSON(t, http.MethodGet, server.URL+"/api/projects/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `attachment; filename="projects.json"`, resp.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  {\n    \"id\"")
}

func TestHTTPServer_QuoteReferenceLifecycle(t *testing.T) {
	server, _ := newTestServer(t, Options{})
	proj := createProject(t, server.URL, project.Input{Name: "Acme Site"})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/quotes", dependent.CreateRequest{
		Name:        "Preventivo",
		ProjectID:   proj.ID,
		FileName:    "offerta.pdf",
		FileContent: attachment.Encode("application/pdf", []byte("%PDF")),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	quote := decodeBody[dependent.Record](t, resp)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/projects/"+string(proj.ID), nil)
	got := decodeBody[projectResponse](t, resp)
	require.Equal(t, string(quote.ID), got.Project.QuoteID)
	require.Equal(t, &dependent.Link{ID: quote.ID, Name: "Preventivo"}, got.Links.Quote)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/quotes", nil)
	listings := decodeBody[[]dependent.Listing](t, resp)
	require.Len(t, listings, 1)
	require.Equal(t, "Acme Site", listings[0].ProjectName)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/quotes/"+string(quote.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/projects/"+string(proj.ID), nil)
	require.Empty(t, decodeBody[projectResponse](t, resp).Project.QuoteID)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/quotes/"+string(quote.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Preventivo non trovato", decodeBody[ErrorBody](t, resp).Error)
}

func TestHTTPServer_ContractMultipartUploadAndDownload(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Contratto"))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="firmato.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7 signed"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post(server.URL+"/api/contracts", form.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	contract := decodeBody[dependent.Record](t, resp)
	require.Equal(t, "firmato.pdf", contract.FileName)
	require.True(t, strings.HasPrefix(contract.FileContent, "data:application/pdf;base64,"))

	dl, err := http.Get(server.URL + "/api/contracts/" + string(contract.ID) + "/download")
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	require.Equal(t, attachment.PDFContentType, dl.Header.Get("Content-Type"))
	require.Contains(t, dl.Header.Get("Content-Disposition"), "firmato.pdf")
	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7 signed", string(data))
}

func TestHTTPServer_MultipartWithoutFile(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Contratto"))
	require.NoError(t, form.Close())

	resp, err := http.Post(server.URL+"/api/contracts", form.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, decodeBody[ErrorBody](t, resp).Fields, "fileContent")
}

func TestHTTPServer_UploadTooLarge(t *testing.T) {
	server, _ := newTestServer(t, Options{MaxUploadBytes: 4})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Contratto"))
	part, err := form.CreateFormFile("file", "big.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post(server.URL+"/api/contracts", form.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

// countingReader records how many bytes the server pulled from the body.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestHTTPServer_MultipartBodyCappedBeforeParsing(t *testing.T) {
	const limit = 1 << 10
	handler := NewServer(newServices(memstore.New()), Options{MaxUploadBytes: limit})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Contratto"))
	part, err := form.CreateFormFile("file", "huge.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 4<<20))
	require.NoError(t, err)
	require.NoError(t, form.Close())
	total := int64(buf.Len())

	body := &countingReader{r: &buf}
	req := httptest.NewRequest(http.MethodPost, "/api/contracts", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.LessOrEqual(t, body.n, int64(limit+formOverhead+1))
	require.Less(t, body.n, total)
}

func TestHTTPServer_MalformedDownloadIsNoContent(t *testing.T) {
	server, store := newTestServer(t, Options{})

	id, err := store.Create(t.Context(), repository.CollectionQuotes, repository.Fields{"name": "Legacy", "fileContent": "garbage"})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/quotes/" + id + "/download")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp2, err := http.Get(server.URL + "/api/quotes/" + id + "/download")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusNoContent, resp2.StatusCode)
}

func TestHTTPServer_SnippetsAndDashboard(t *testing.T) {
	server, _ := newTestServer(t, Options{})
	createProject(t, server.URL, project.Input{Name: "Acme Site"})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/snippets", snippet.Input{Name: "hello", Code: "print(1)", Language: "python"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sn := decodeBody[snippet.Snippet](t, resp)

	resp = doJSON(t, http.MethodPut, server.URL+"/api/snippets/"+string(sn.ID), snippet.Input{Name: "hello", Code: "<p>", Language: "html"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, snippet.HTML, decodeBody[snippet.Snippet](t, resp).Language)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decodeBody[dashboard.Summary](t, resp)
	require.Equal(t, 1, summary.ProjectCount)
	require.Equal(t, 1, summary.SnippetCount)
	require.Len(t, summary.RecentProjects, 1)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/snippets/"+string(sn.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/snippets/"+string(sn.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Snippet non trovato", decodeBody[ErrorBody](t, resp).Error)
}

func TestHTTPServer_StoreUnavailable(t *testing.T) {
	store := &mocks.DocumentStore{}
	store.On("List", mock.Anything, mock.Anything).Return(nil, repository.ErrUnavailable)

	server := httptest.NewServer(NewServer(newServices(store), Options{}))
	t.Cleanup(server.Close)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/projects", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "Impossibile caricare i progetti. Riprova più tardi.", decodeBody[ErrorBody](t, resp).Error)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/contracts", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "Impossibile caricare i contratti. Riprova più tardi.", decodeBody[ErrorBody](t, resp).Error)
}

func TestHTTPServer_Auth(t *testing.T) {
	server, _ := newTestServer(t, Options{
		Auth: AuthMiddleware(NewStaticKeys(map[string]string{"studio": "token"})),
	})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/projects", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	require.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestHTTPServer_CORSPreflight(t *testing.T) {
	server, _ := newTestServer(t, Options{AllowedOrigins: []string{"https://studio.example"}})

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://studio.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "https://studio.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	handler := Recovery(slogDiscard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Riprova più tardi")
}

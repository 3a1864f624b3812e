package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/infra/httpclient"
	"github.com/ChaseRain/lessonslides/internal/infra/limiter"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/internal/service/export"
	"github.com/ChaseRain/lessonslides/internal/service/generator"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/internal/service/storage"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deckJSON = `[
 {"type":"title","title":"Fotossíntese","content":{"templateID":1,"templateContent":{"title":"Fotossíntese","subtitle":"6º ano"}}},
 {"type":"agenda","title":"Agenda","content":{"templateID":2,"templateContent":{"title":"Agenda","items":["Luz","Água"]}}},
 {"type":"content","title":"Luz","content":{"templateID":8},"question":{"statement":"Qual gás?","options":["O2","CO2"],"correct_answer":1}},
 {"type":"conclusion","title":"Fim","content":{}}
]`

const streamBody = `NEW_SLIDE:{"type":"title","title":"Fotossíntese","content":{}}|` +
	`NEW_SLIDE:{"type":"content","title":"Luz","content":{"templateID":8}}|` +
	`NEW_SLIDE:{"type":"agenda","title":"Agenda","content":{"templateID":2}}|` +
	`NEW_SLIDE:{"type":"conclusion","title":"Fim","content":{}}|`

type upstream struct {
	calls  atomic.Int32
	status atomic.Int32
	// body replaces streamBody when set
	body atomic.Pointer[string]
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	if status := int(u.status.Load()); status != 0 {
		w.WriteHeader(status)
		io.WriteString(w, `{"detail":"indisponível"}`)
		return
	}
	switch r.URL.Path {
	case "/slide":
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, deckJSON)
	case "/streaming":
		body := streamBody
		if b := u.body.Load(); b != nil {
			body = *b
		}
		for _, seg := range strings.SplitAfter(body, "|") {
			io.WriteString(w, seg)
			w.(http.Flusher).Flush()
		}
	default:
		http.NotFound(w, r)
	}
}

type testServer struct {
	router   *gin.Engine
	upstream *upstream
	decks    *deck.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	gen := generator.New(generator.Options{BaseURL: srv.URL, StreamingURL: srv.URL + "/streaming"},
		httpclient.New(httpclient.Options{}), log)

	dir := t.TempDir()
	store := storage.New(storage.NewLocalBackend(dir+"/decks"), dir, "/files", log)
	renderer, err := render.NewImageRenderer("", 0)
	require.NoError(t, err)

	decks := deck.NewStore(log)
	deps := Deps{
		Orchestrator: orchestrator.New(gen, store, limiter.New(4, 100), log),
		Decks:        decks,
		Renderer:     renderer,
		Exporter:     export.New(renderer, store, log),
		Snapshots:    store,
		Logger:       log,
	}
	return &testServer{
		router:   NewRouter(deps, RouterConfig{FilesDir: dir}),
		upstream: up,
		decks:    decks,
	}
}

func (s *testServer) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(values url.Values) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/", strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

func (s *testServer) postJSON(target string, v any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(v)
	return s.do(http.MethodPost, target, bytes.NewReader(b), "application/json")
}

func (s *testServer) createDeck(t *testing.T) PresentationResponse {
	t.Helper()
	w := s.postJSON("/v1/presentations", CreatePresentationRequest{Topic: "Fotossíntese", Grade: "6º ano", NSlides: 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp PresentationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestFormPage(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="topic"`)
	assert.Contains(t, w.Body.String(), `value="5"`)
}

func TestSubmitFormValidationMakesNoCall(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm(url.Values{"topic": {"   "}, "grade": {"6º ano"}, "n_slides": {"5"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), slides.MsgTopicRequired)

	w = s.postForm(url.Values{"topic": {"Água"}, "grade": {""}, "n_slides": {"5"}})
	assert.Contains(t, w.Body.String(), slides.MsgGradeRequired)

	w = s.postForm(url.Values{"topic": {"Água"}, "grade": {"7º"}, "n_slides": {"31"}})
	assert.Contains(t, w.Body.String(), slides.MsgSlidesRange)

	assert.Equal(t, int32(0), s.upstream.calls.Load())
	assert.Equal(t, 0, s.decks.Len())
}

func TestSubmitFormBlockingRedirects(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm(url.Values{"topic": {"Fotossíntese"}, "grade": {"6º ano"}, "n_slides": {"4"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	loc := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/presentation?id="))

	page := s.do(http.MethodGet, loc, nil, "")
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Equal(t, 4, strings.Count(body, `class="thumb"`))
	assert.Contains(t, body, "Qual gás?")
	assert.Contains(t, body, "scale(0.3)")
}

func TestSubmitFormStreamingRedirectsOnFirstChunk(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm(url.Values{"topic": {"Fotossíntese"}, "grade": {"6º ano"}, "n_slides": {"4"}, "stream": {"true"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/presentation?id="))

	id := strings.TrimPrefix(loc, "/presentation?id=")
	require.Eventually(t, func() bool {
		w := s.do(http.MethodGet, "/v1/presentations/"+id, nil, "")
		var resp PresentationResponse
		return json.Unmarshal(w.Body.Bytes(), &resp) == nil && resp.Status == StatusSucceeded
	}, 5*time.Second, 10*time.Millisecond)

	page := s.do(http.MethodGet, loc, nil, "")
	assert.Equal(t, 4, strings.Count(page.Body.String(), `class="thumb"`))
}

func TestSubmitFormUpstreamFailure(t *testing.T) {
	s := newTestServer(t)
	s.upstream.status.Store(http.StatusInternalServerError)

	w := s.postForm(url.Values{"topic": {"Fotossíntese"}, "grade": {"6º ano"}, "n_slides": {"4"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), orchestrator.FailureMessage)
}

func TestStreamFailingMidwayShowsFailureOnForm(t *testing.T) {
	s := newTestServer(t)
	body := `NEW_SLIDE:{"type":"title","title":"Fotossíntese","content":{}}|NEW_SLIDE:{broken|`
	s.upstream.body.Store(&body)

	w := s.postForm(url.Values{"topic": {"Fotossíntese"}, "grade": {"6º ano"}, "n_slides": {"4"}, "stream": {"true"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	loc := w.Header().Get("Location")
	id := strings.TrimPrefix(loc, "/presentation?id=")

	require.Eventually(t, func() bool {
		w := s.do(http.MethodGet, "/v1/presentations/"+id, nil, "")
		var resp PresentationResponse
		return json.Unmarshal(w.Body.Bytes(), &resp) == nil && resp.Status == StatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	page := s.do(http.MethodGet, loc, nil, "")
	require.Equal(t, http.StatusFound, page.Code)
	require.Equal(t, failedFormURL, page.Header().Get("Location"))

	form := s.do(http.MethodGet, page.Header().Get("Location"), nil, "")
	assert.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), orchestrator.FailureMessage)

	plain := s.do(http.MethodGet, "/", nil, "")
	assert.NotContains(t, plain.Body.String(), orchestrator.FailureMessage)
}

func TestPresentationWithoutDeckRedirectsHome(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/presentation", "/presentation?id=nope"} {
		w := s.do(http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusFound, w.Code, target)
		assert.Equal(t, "/", w.Header().Get("Location"))
	}
}

func TestCreatePresentationJSON(t *testing.T) {
	s := newTestServer(t)
	resp := s.createDeck(t)

	assert.Equal(t, StatusSucceeded, resp.Status)
	require.Len(t, resp.Slides, 4)
	assert.Equal(t, slides.TypeAgenda, resp.Slides[1].Type)
	require.NotNil(t, resp.Slides[2].Question)

	got := s.do(http.MethodGet, "/v1/presentations/"+resp.ID, nil, "")
	assert.Equal(t, http.StatusOK, got.Code)
}

func TestCreatePresentationValidation(t *testing.T) {
	s := newTestServer(t)
	w := s.postJSON("/v1/presentations", CreatePresentationRequest{Topic: "x", Grade: "y", NSlides: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), slides.MsgSlidesRange)
	assert.Equal(t, int32(0), s.upstream.calls.Load())
}

func TestCreatePresentationUpstreamError(t *testing.T) {
	s := newTestServer(t)
	s.upstream.status.Store(http.StatusServiceUnavailable)

	w := s.postJSON("/v1/presentations", CreatePresentationRequest{Topic: "x", Grade: "y", NSlides: 3})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp PresentationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Empty(t, resp.Slides)
	require.NotNil(t, resp.Error)
	assert.Equal(t, orchestrator.FailureMessage, resp.Error.Message)
}

func TestCreatePresentationStreamSSE(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON("/v1/presentations", CreatePresentationRequest{Topic: "x", Grade: "y", NSlides: 4, Stream: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event: navigate\n"))
	assert.Equal(t, 4, strings.Count(body, "event: slide\n"))
	assert.Contains(t, body, "event: complete\n")
	assert.Less(t, strings.Index(body, "event: start\n"), strings.Index(body, "event: navigate\n"))
	assert.Less(t, strings.Index(body, "event: navigate\n"), strings.Index(body, "event: complete\n"))
}

func TestEventsReplayFinishedSession(t *testing.T) {
	s := newTestServer(t)
	resp := s.createDeck(t)

	w := s.do(http.MethodGet, "/v1/presentations/"+resp.ID+"/events", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: complete\n")

	w = s.do(http.MethodGet, "/v1/presentations/unknown/events", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSlideEditing(t *testing.T) {
	s := newTestServer(t)
	resp := s.createDeck(t)
	base := "/v1/presentations/" + resp.ID

	b, _ := json.Marshal(UpdateSlideRequest{Fields: slides.Fields{"title": "Luz solar", "items": []string{"a"}}})
	w := s.do(http.MethodPut, base+"/slides/2", bytes.NewReader(b), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Luz solar")

	w = s.do(http.MethodPost, base+"/slides/2/promote", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var promoted PresentationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &promoted))
	require.Len(t, promoted.Slides, 5)
	assert.Equal(t, slides.QuestionTemplateID, promoted.Slides[3].Canvas.TemplateID)
	assert.Nil(t, promoted.Slides[2].Question)

	w = s.do(http.MethodPost, base+"/slides/2/promote", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, base+"/slides/0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var after PresentationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	require.Len(t, after.Slides, 4)
	for i, sl := range after.Slides {
		assert.Equal(t, i, sl.ID)
	}

	w = s.do(http.MethodDelete, base+"/slides/99", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, base+"/slides/x", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderEndpoints(t *testing.T) {
	s := newTestServer(t)
	resp := s.createDeck(t)
	base := "/v1/presentations/" + resp.ID + "/slides/0"

	w := s.do(http.MethodGet, base+"/render?preview=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scale(0.3)")

	w = s.do(http.MethodGet, base+"/render?width=460&height=400", nil, "")
	assert.Contains(t, w.Body.String(), "scale(0.5)")

	w = s.do(http.MethodGet, base+"/image.png?preview=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", w.Body.String()[:4])

	w = s.do(http.MethodGet, base+"/image.png?width=9200&height=5180", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	maxW, maxH := render.Size(render.MaxScale)
	assert.Equal(t, maxW, img.Bounds().Dx())
	assert.Equal(t, maxH, img.Bounds().Dy())
}

func TestExportAndServeFile(t *testing.T) {
	s := newTestServer(t)
	resp := s.createDeck(t)

	w := s.do(http.MethodPost, "/v1/presentations/"+resp.ID+"/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, strings.HasSuffix(out.URL, ".zip"))

	file := s.do(http.MethodGet, out.URL, nil, "")
	assert.Equal(t, http.StatusOK, file.Code)
	assert.Equal(t, "PK", file.Body.String()[:2])
}

func TestDeckRestoredFromSnapshot(t *testing.T) {
	s := newTestServer(t)
	resp := s.createDeck(t)

	// drop the live deck; the snapshot written at completion remains
	s.decks.Delete(resp.ID)
	w := s.do(http.MethodGet, "/presentation?id="+resp.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/v1/presentations/"+resp.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/v1/presentations/"+resp.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplatesAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/v1/templates", nil, "")
	var list []TemplateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, slides.MaxTemplateID-1)
	assert.Equal(t, "01", list[0].Key)

	w = s.do(http.MethodGet, "/v1/templates?all=1", nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, slides.MaxTemplateID)
	assert.True(t, list[len(list)-1].QuestionOnly)

	w = s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samcharles93/textgen/internal/inference"
	"github.com/samcharles93/textgen/internal/metrics"
	"github.com/samcharles93/textgen/internal/tokenizer"
	"github.com/samcharles93/textgen/internal/vocab"
)

// nextModel always predicts (id+1) mod size.
type nextModel struct{ size int }

func (nextModel) Reset() inference.State { return nil }

func (m nextModel) Step(state inference.State, id int) (inference.State, []float32, error) {
	probs := make([]float32, m.size)
	probs[(id+1)%m.size] = 1
	return state, probs, nil
}

func newTestEcho(t *testing.T) (*echo.Echo, *prometheus.Registry) {
	t.Helper()
	codec := tokenizer.New(vocab.BuildRanked(strings.Fields("the cat sat on the mat the end")))
	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	if err != nil {
		t.Fatal(err)
	}
	gen := &inference.Generator{
		Model:     nextModel{size: codec.Size()},
		Tokenizer: codec,
		Metrics:   rec,
	}
	steps := 3
	server := NewServer(Config{
		Codec:     codec,
		Generator: gen,
		Defaults:  inference.GenDefaults{Temperatures: []float64{0}, Steps: &steps},
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	e := echo.New()
	server.Register(e)
	return e, reg
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"tokens":["the","cat","end"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("encode status: got %d body=%s", rec.Code, rec.Body.String())
	}
	enc := decodeBody[EncodeResponse](t, rec)
	// the=0 (3x), then cat end mat on sat lexically.
	want := []int{0, 1, 2}
	for i := range want {
		if enc.IDs[i] != want[i] {
			t.Fatalf("ids = %v, want %v", enc.IDs, want)
		}
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/decode", `{"ids":[0,5,1]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("decode status: got %d body=%s", rec.Code, rec.Body.String())
	}
	dec := decodeBody[DecodeResponse](t, rec)
	if dec.Text != "the sat cat" {
		t.Fatalf("decode text = %q", dec.Text)
	}
}

func TestEncodeUnknownTokenIsBadRequest(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"tokens":["dog"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"code":"lookup_error"`) {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestDecodeOutOfRangeIsBadRequest(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/decode", `{"ids":[99]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "out of range") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"tokens":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGenerateLifecycle(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/generate", `{"seed":["the","cat"],"temperatures":[0,0]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status: got %d body=%s", rec.Code, rec.Body.String())
	}
	gen := decodeBody[GenerateResponse](t, rec)
	if gen.ID == "" || gen.Object != "generation" {
		t.Fatalf("unexpected envelope: %+v", gen)
	}
	if len(gen.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(gen.Results))
	}
	// cat=1 -> end=2 -> mat=3 -> on=4
	if got := gen.Results[0].Text; got != "the cat end mat on" {
		t.Fatalf("text = %q", got)
	}
	if gen.Results[0].Usage.PrimingSteps != 1 || gen.Results[0].Usage.GeneratedTokens != 3 {
		t.Fatalf("usage = %+v", gen.Results[0].Usage)
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/generations/"+gen.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/generations/"+gen.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	if rec := doJSON(t, e, http.MethodGet, "/v1/generations/"+gen.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestGenerateNotStored(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/generate", `{"seed":["the"],"store":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status: got %d body=%s", rec.Code, rec.Body.String())
	}
	gen := decodeBody[GenerateResponse](t, rec)
	if rec := doJSON(t, e, http.MethodGet, "/v1/generations/"+gen.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unstored generation, got %d", rec.Code)
	}
}

func TestGenerateValidationErrors(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	cases := []struct {
		body string
		want string
	}{
		{`{"seed":[]}`, "seed is required"},
		{`{"seed":["the"],"steps":-2}`, "steps must be >= 0"},
		{`{"seed":["the"],"steps":1000000000}`, "steps must be <= 100000"},
		{`{"seed":["the"],"steps":9223372036854775807}`, `"param":"steps"`},
		{`{"seed":["dog"]}`, "lookup"},
	}
	for _, tc := range cases {
		rec := doJSON(t, e, http.MethodPost, "/v1/generate", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", tc.body, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Fatalf("%s: unexpected error body: %s", tc.body, rec.Body.String())
		}
	}
}

func TestVocabularyInfo(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	rec := doJSON(t, e, http.MethodGet, "/v1/vocabulary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	info := decodeBody[VocabularyResponse](t, rec)
	if info.Mode != "rank-lexical" || info.Size != 6 || info.Sentinel != "" {
		t.Fatalf("unexpected vocabulary info: %+v", info)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	doJSON(t, e, http.MethodPost, "/v1/generate", `{"seed":["the","cat"]}`)
	rec := doJSON(t, e, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `textgen_generation_runs_total{outcome="ok"} 1`) {
		t.Fatalf("metrics body missing run counter:\n%s", rec.Body.String())
	}
}

func TestGenerateHonoursCancelledRequest(t *testing.T) {
	t.Parallel()
	e, _ := newTestEcho(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"seed":["the"]}`)).WithContext(ctx)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for cancelled request, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGenerationStoreEvicts(t *testing.T) {
	t.Parallel()
	s := NewGenerationStore(2)
	s.Put(GenerateResponse{ID: "a"})
	s.Put(GenerateResponse{ID: "b"})
	s.Put(GenerateResponse{ID: "c"})
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := s.Get("c"); !ok {
		t.Fatal("newest entry missing")
	}
}

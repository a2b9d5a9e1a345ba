package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"movie-pipeline/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status_message":"Invalid API key"}`))
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"page":1,"results":[{"id":550},{"id":13}]}`))
		default:
			w.Write([]byte(`{"page":9}`))
		}
	})
	mux.HandleFunc("/movie/550", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"title": "Fight Club",
			"id": 550,
			"adult": false,
			"homepage": null,
			"genres": [ {"id": 18, "name": "Drama"} ],
			"belongs_to_collection": {"id": 1}
		}`))
	})
	mux.HandleFunc("/movie/13", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_message":"The resource you requested could not be found."}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientListPage(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "movie/popular", "secret", 5*time.Second)

	ids, err := c.ListPage(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if strings.Join(ids, ",") != "550,13" {
		t.Errorf("ids: got %v", ids)
	}

	if _, err := c.ListPage(context.Background(), 2); err == nil {
		t.Error("expected error for response without results")
	}
}

func TestClientRejectsBadKey(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "/movie/popular", "wrong", 5*time.Second)

	_, err := c.ListPage(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected 401 error, got %v", err)
	}
}

func TestClientGetDetailKeepsKeyOrder(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "/movie/popular", "secret", 5*time.Second)

	rec, err := c.GetDetail(context.Background(), "550")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}

	want := []models.RawField{
		{Name: "title", Kind: models.KindString, Value: "Fight Club"},
		{Name: "id", Kind: models.KindNumber, Value: "550"},
		{Name: "adult", Kind: models.KindBool, Value: "false"},
		{Name: "homepage", Kind: models.KindNull, Value: ""},
		{Name: "genres", Kind: models.KindList, Value: `[{"id":18,"name":"Drama"}]`},
		{Name: "belongs_to_collection", Kind: models.KindObject, Value: `{"id":1}`},
	}
	if len(rec.Fields) != len(want) {
		t.Fatalf("fields: got %d, want %d (%+v)", len(rec.Fields), len(want), rec.Fields)
	}
	for i, f := range want {
		if rec.Fields[i] != f {
			t.Errorf("field %d: got %+v, want %+v", i, rec.Fields[i], f)
		}
	}
}

func TestClientGetDetailNotFound(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "/movie/popular", "secret", 5*time.Second)

	if _, err := c.GetDetail(context.Background(), "13"); err == nil {
		t.Error("expected error for 404 detail")
	}
}

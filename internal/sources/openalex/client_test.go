package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ismart/research-discovery-service/internal/sources"
)

// newTestClient points a client with fast retry timing at a stub server.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(Config{
		BaseURL:        baseURL,
		PerPage:        25,
		Timeout:        time.Second,
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
	}, sources.NewGovernor(time.Millisecond), nil, zerolog.Nop())
}

func workPage(works []Work, nextCursor string) SearchResponse {
	return SearchResponse{
		Meta:    Meta{Count: len(works), NextCursor: nextCursor},
		Results: works,
	}
}

func TestClient_FetchKeyword(t *testing.T) {
	t.Run("sends discovery query parameters", func(t *testing.T) {
		var captured map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			captured = map[string]string{
				"filter": q.Get("filter"),
				"sort":   q.Get("sort"),
				"cursor": q.Get("cursor"),
				"select": q.Get("select"),
				"mailto": q.Get("mailto"),
			}
			json.NewEncoder(w).Encode(workPage(nil, ""))
		}))
		defer srv.Close()

		c := New(Config{
			BaseURL:        srv.URL,
			Email:          "team@example.org",
			Timeout:        time.Second,
			InitialBackoff: time.Millisecond,
		}, sources.NewGovernor(time.Millisecond), nil, zerolog.Nop())
		c.FetchKeyword(context.Background(), "graphene  Graphene battery", 1)

		assert.Equal(t, "default.search:graphene battery,has_doi:true", captured["filter"])
		assert.Equal(t, "relevance_score:desc", captured["sort"])
		assert.Equal(t, "*", captured["cursor"])
		assert.Contains(t, captured["select"], "abstract_inverted_index")
		assert.Equal(t, "team@example.org", captured["mailto"])
	})

	t.Run("follows continuation cursor across pages", func(t *testing.T) {
		var cursors []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cursor := r.URL.Query().Get("cursor")
			cursors = append(cursors, cursor)
			switch cursor {
			case "*":
				json.NewEncoder(w).Encode(workPage([]Work{{ID: "W1", Title: "one"}}, "cursor-2"))
			case "cursor-2":
				json.NewEncoder(w).Encode(workPage([]Work{{ID: "W2", Title: "two"}}, "cursor-3"))
			default:
				json.NewEncoder(w).Encode(workPage(nil, ""))
			}
		}))
		defer srv.Close()

		works := newTestClient(t, srv.URL).FetchKeyword(context.Background(), "graphene", 4)

		require.Len(t, works, 2)
		assert.Equal(t, "W1", works[0].ID)
		assert.Equal(t, "W2", works[1].ID)
		// Third page returned no works, ending the walk within budget.
		assert.Equal(t, []string{"*", "cursor-2", "cursor-3"}, cursors)
	})

	t.Run("stops when page budget is exhausted", func(t *testing.T) {
		var pages int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pages++
			json.NewEncoder(w).Encode(workPage([]Work{{ID: fmt.Sprintf("W%d", pages)}}, fmt.Sprintf("cursor-%d", pages)))
		}))
		defer srv.Close()

		works := newTestClient(t, srv.URL).FetchKeyword(context.Background(), "graphene", 2)

		assert.Len(t, works, 2)
		assert.Equal(t, 2, pages)
	})

	t.Run("stops when cursor disappears", func(t *testing.T) {
		var pages int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pages++
			json.NewEncoder(w).Encode(workPage([]Work{{ID: "W1"}}, ""))
		}))
		defer srv.Close()

		works := newTestClient(t, srv.URL).FetchKeyword(context.Background(), "graphene", 4)

		assert.Len(t, works, 1)
		assert.Equal(t, 1, pages)
	})

	t.Run("keeps accumulated works when a later page fails", func(t *testing.T) {
		var pages int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pages++
			if pages == 1 {
				json.NewEncoder(w).Encode(workPage([]Work{{ID: "W1"}}, "cursor-2"))
				return
			}
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		works := newTestClient(t, srv.URL).FetchKeyword(context.Background(), "graphene", 4)

		assert.Len(t, works, 1)
		assert.Equal(t, "W1", works[0].ID)
	})

	t.Run("unreachable source yields empty result without error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		require.NotPanics(t, func() {
			works := newTestClient(t, srv.URL).FetchKeyword(context.Background(), "graphene", 1)
			assert.Empty(t, works)
		})
	})
}

func TestWork_AuthorNames(t *testing.T) {
	w := Work{Authorships: []Authorship{
		{Author: &Author{DisplayName: "Ada Lovelace"}},
		{Author: nil},
		{Author: &Author{DisplayName: ""}},
		{Author: &Author{DisplayName: "Alan Turing"}},
	}}

	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, w.AuthorNames())
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	t.Run("decodes list shape", func(t *testing.T) {
		var v HostVenue
		require.NoError(t, json.Unmarshal([]byte(`{"issn": ["1234-5678", "8765-4321"]}`), &v))
		assert.Equal(t, StringList{"1234-5678", "8765-4321"}, v.ISSN)
	})

	t.Run("decodes single string shape", func(t *testing.T) {
		var v HostVenue
		require.NoError(t, json.Unmarshal([]byte(`{"issn": "1234-5678"}`), &v))
		assert.Equal(t, StringList{"1234-5678"}, v.ISSN)
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		var v HostVenue
		assert.Error(t, json.Unmarshal([]byte(`{"issn": 42}`), &v))
	})
}

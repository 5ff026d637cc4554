package lottery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"date":"2026-08-21","numbers":[4,8,15,16,23,42],"bonus":7}`))
	}))
	defer srv.Close()

	d, err := NewClient(srv.URL, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-21", d.Date)
	assert.Equal(t, [6]int{4, 8, 15, 16, 23, 42}, d.Numbers)
	assert.Equal(t, 7, d.Bonus)
}

func TestClientFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClientFetchBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `balls`},
		{"wrong count", `{"date":"2026-08-21","numbers":[1,2,3],"bonus":7}`},
		{"out of range", `{"date":"2026-08-21","numbers":[0,8,15,16,23,42],"bonus":7}`},
		{"duplicate ball", `{"date":"2026-08-21","numbers":[8,8,15,16,23,42],"bonus":7}`},
		{"bad bonus", `{"date":"2026-08-21","numbers":[4,8,15,16,23,42],"bonus":50}`},
		{"no date", `{"numbers":[4,8,15,16,23,42],"bonus":7}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, nil).Fetch(context.Background())
			require.Error(t, err)
		})
	}
}

func TestClientFetchCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, nil).Fetch(ctx)
	require.Error(t, err)
}

package alternative

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freealert/freealert/internal/models"
)

const indexBody = `{"name":"Fear and Greed Index","data":[{"value":"22","value_classification":"Extreme Fear","timestamp":"1756512000"}],"metadata":{"error":null}}`

func TestClient_Latest(t *testing.T) {
	t.Run("parses the newest reading", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/fng/", r.URL.Path)
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			fmt.Fprint(w, indexBody)
		}))
		defer srv.Close()

		got, err := NewClient(srv.URL).Latest(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 22, got.Value)
		assert.Equal(t, "Extreme Fear", got.Classification)
	})

	t.Run("empty data is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[]}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Latest(context.Background())

		var upstream *models.UpstreamError
		assert.ErrorAs(t, err, &upstream)
	})

	t.Run("non-numeric value is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"value":"abc","value_classification":"Fear"}]}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Latest(context.Background())

		var upstream *models.UpstreamError
		assert.ErrorAs(t, err, &upstream)
	})

	t.Run("non-200 is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Latest(context.Background())

		var upstream *models.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, "alternative.me", upstream.Provider)
	})
}

func TestClient_Raw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, indexBody)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Raw(context.Background())
	require.NoError(t, err)

	// Passthrough keeps the payload byte for byte.
	assert.Equal(t, []byte(indexBody), got)
}

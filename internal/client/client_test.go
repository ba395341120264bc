package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credit-eval/cet-console/internal/model"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", time.Second)
}

func TestListCases(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cases", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"CAS001","customerName":"John Doe","status":"assigned","loanAmount":500000}]`))
	})

	cases, err := c.ListCases(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, model.StatusAssigned, cases[0].Status)
	assert.Equal(t, 500000.0, cases[0].LoanAmount)
}

func TestListCasesNullBodyIsEmpty(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	cases, err := c.ListCases(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cases)
	assert.Empty(t, cases)
}

func TestGetCaseNotFound(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cases/CAS404", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Case with ID CAS404 not found"}`))
	})

	_, err := c.GetCase(context.Background(), "CAS404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Contains(t, err.Error(), "Case with ID CAS404 not found")
}

func TestServerErrorIsFetchFailure(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetCase(context.Background(), "CAS001")
	assert.True(t, errors.Is(err, ErrFetch))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestMalformedBodyIsFetchFailure(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 12,`))
	})

	_, err := c.GetCase(context.Background(), "CAS001")
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestUnreachableIsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, 200*time.Millisecond).ListCases(context.Background())
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestCancelledContext(t *testing.T) {
	release := make(chan struct{})
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.ListCases(ctx)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, context.Canceled))
}

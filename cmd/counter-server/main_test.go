package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-counter-go/connectors/wehttp"
	"github.com/weegigs/wee-counter-go/counter"
)

func TestUnknownStore(t *testing.T) {
	_, _, err := service(context.Background(), options{store: "postgres"})
	assert.EqualError(t, err, `unknown store "postgres"`)
}

func TestUnknownExporter(t *testing.T) {
	_, err := exporter(context.Background(), "zipkin")
	assert.EqualError(t, err, `unknown trace exporter "zipkin"`)
}

func TestMemoryServer(t *testing.T) {
	svc, cleanup, err := service(context.Background(), options{store: "memory"})
	require.NoError(t, err)
	defer cleanup()

	server := httptest.NewServer(withLogging(wehttp.NewHandler[counter.State](svc)))
	defer server.Close()

	res, err := http.Post(server.URL+"/counter/a", "application/json", strings.NewReader(`{"type":"counter/INCREASE"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
}

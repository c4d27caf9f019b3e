package welambda

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/stores/memory"
)

func request(method string, key string, body string) events.APIGatewayV2HTTPRequest {
	event := events.APIGatewayV2HTTPRequest{
		PathParameters: map[string]string{"type": "counter", "key": key},
		Headers:        map[string]string{"content-type": "application/json"},
		Body:           body,
	}
	event.RequestContext.HTTP.Method = method

	return event
}

func TestHandler(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	handler := NewHandler(counter.NewCounterService(memory.NewActionLog()))

	res, err := handler(ctx, request(http.MethodPost, "lambda", `{"type": "counter/SET_DIFF", "payload": {"diff": 5}}`))
	assert.Nil(err)
	assert.Equal(http.StatusOK, res.StatusCode)

	encoded := request(http.MethodPost, "lambda", base64.StdEncoding.EncodeToString([]byte(`{"type": "counter/INCREASE"}`)))
	encoded.IsBase64Encoded = true
	res, err = handler(ctx, encoded)
	assert.Nil(err)
	assert.Equal(http.StatusOK, res.StatusCode)

	res, err = handler(ctx, request(http.MethodGet, "lambda", ""))
	assert.Nil(err)
	assert.Equal(http.StatusOK, res.StatusCode)

	var resource map[string]any
	assert.Nil(json.Unmarshal([]byte(res.Body), &resource))
	assert.Equal(float64(5), resource["number"])
	assert.Equal(float64(5), resource["diff"])
	assert.Equal("counter.lambda", resource["$id"])

	res, err = handler(ctx, request(http.MethodPost, "lambda", `{"type": "counter/SET_DIFF", "payload": {"diff": "x"}}`))
	assert.Nil(err)
	assert.Equal(http.StatusBadRequest, res.StatusCode)

	unsupported := request(http.MethodPost, "lambda", `{"type": "counter/INCREASE"}`)
	unsupported.Headers = map[string]string{"Content-Type": "text/plain"}
	res, err = handler(ctx, unsupported)
	assert.Nil(err)
	assert.Equal(http.StatusUnsupportedMediaType, res.StatusCode)

	res, err = handler(ctx, request(http.MethodDelete, "lambda", ""))
	assert.Nil(err)
	assert.Equal(http.StatusMethodNotAllowed, res.StatusCode)

	missing := request(http.MethodGet, "", "")
	res, err = handler(ctx, missing)
	assert.Nil(err)
	assert.Equal(http.StatusBadRequest, res.StatusCode)
}

package welambda

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/we"
)

type GatewayHandler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type HandlerOption func(options *handlerOptions)

type handlerOptions struct {
	log *zerolog.Logger
}

func Logger(log *zerolog.Logger) HandlerOption {
	return func(options *handlerOptions) {
		options.log = log
	}
}

type actionRequest struct {
	Type    we.ActionType   `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewHandler serves GET and POST on a route with {type} and {key} path
// parameters, mirroring the wehttp connector.
func NewHandler[S any](service we.SliceService[S], options ...HandlerOption) GatewayHandler {
	opts := handlerOptions{log: &log.Logger}
	for _, option := range options {
		option(&opts)
	}
	logger := opts.log

	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		id := we.SliceId{Type: event.PathParameters["type"], Key: event.PathParameters["key"]}
		if id.Type == "" || id.Key == "" {
			return failure(http.StatusBadRequest, "resource path not provided"), nil
		}

		switch event.RequestContext.HTTP.Method {
		case http.MethodGet:
			snapshot, err := service.Load(ctx, id)
			if err != nil {
				logger.Info().Err(err).Str("type", id.Type).Str("key", id.Key).Msg("failed to load resource")
				return failure(http.StatusInternalServerError, "failed to load resource"), nil
			}

			return respond(&snapshot)
		case http.MethodPost:
			action, status := parseAction(event)
			if status != http.StatusOK {
				return failure(status, http.StatusText(status)), nil
			}

			snapshot, err := service.Dispatch(ctx, id, action)
			if err != nil {
				var notDecoded *we.ActionNotDecodedError
				if errors.As(err, &notDecoded) {
					return failure(http.StatusBadRequest, "invalid action payload"), nil
				}

				logger.Info().Err(err).Str("type", id.Type).Str("key", id.Key).Msg("failed to dispatch action")
				return failure(http.StatusInternalServerError, "failed to dispatch action"), nil
			}

			return respond(&snapshot)
		default:
			return failure(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)), nil
		}
	}
}

func header(event events.APIGatewayV2HTTPRequest, name string) string {
	for key, value := range event.Headers {
		if http.CanonicalHeaderKey(key) == http.CanonicalHeaderKey(name) {
			return value
		}
	}

	return ""
}

func parseAction(event events.APIGatewayV2HTTPRequest) (we.RemoteAction, int) {
	mediaType, _, err := mime.ParseMediaType(header(event, "Content-Type"))
	if err != nil || mediaType != "application/json" {
		return we.RemoteAction{}, http.StatusUnsupportedMediaType
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		body, err = base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return we.RemoteAction{}, http.StatusBadRequest
		}
	}

	var request actionRequest
	if err := json.Unmarshal(body, &request); err != nil || request.Type == "" {
		return we.RemoteAction{}, http.StatusBadRequest
	}

	action := we.RemoteAction{Type: request.Type}
	if len(request.Payload) > 0 && string(request.Payload) != "null" {
		action.Payload = we.JsonData(request.Payload)
	}

	return action, http.StatusOK
}

func respond[S any](snapshot *we.Snapshot[S]) (events.APIGatewayV2HTTPResponse, error) {
	resource, err := we.Resource(snapshot, nil)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	body, err := json.Marshal(resource)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

func failure(status int, message string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       message,
	}
}

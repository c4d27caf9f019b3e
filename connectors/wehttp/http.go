package wehttp

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/we"
)

type HandlerOption[S any] func(service *httpService[S])

func Logger[S any](log *zerolog.Logger) HandlerOption[S] {
	return func(service *httpService[S]) {
		service.log = log
	}
}

func Serializer[S any](serialize we.SnapshotSerializer[S]) HandlerOption[S] {
	return func(service *httpService[S]) {
		service.serialize = serialize
	}
}

// NewHandler exposes a slice service over http:
//
//	GET  /{type}/{key}  renders the instance
//	POST /{type}/{key}  dispatches {"type": "...", "payload": {...}} to it
func NewHandler[S any](service we.SliceService[S], options ...HandlerOption[S]) http.Handler {
	h := &httpService[S]{service: service}
	for _, option := range options {
		option(h)
	}
	if h.log == nil {
		h.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Method("GET", "/{type}/{key}", h.getResource())
	r.Method("POST", "/{type}/{key}", h.dispatchAction())

	return WithTelemetry(r, "we-http")
}

type httpService[S any] struct {
	log       *zerolog.Logger
	service   we.SliceService[S]
	serialize we.SnapshotSerializer[S]
}

type actionRequest struct {
	Type    we.ActionType   `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (r actionRequest) remote() we.RemoteAction {
	action := we.RemoteAction{Type: r.Type}
	if len(r.Payload) > 0 && string(r.Payload) != "null" {
		action.Payload = we.JsonData(r.Payload)
	}

	return action
}

func sliceId(r *http.Request) we.SliceId {
	return we.SliceId{Type: chi.URLParam(r, "type"), Key: chi.URLParam(r, "key")}
}

func (h *httpService[S]) getResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sliceId(r)

		snapshot, err := h.service.Load(r.Context(), id)
		if err != nil {
			h.log.Info().Err(err).Str("type", id.Type).Str("key", id.Key).Msg("failed to load resource")
			http.Error(w, "failed to load resource", http.StatusInternalServerError)
			return
		}

		h.encode(w, r, &snapshot)
	}
}

func (h *httpService[S]) dispatchAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sliceId(r)

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		var request actionRequest
		if err := json.Unmarshal(body, &request); err != nil || request.Type == "" {
			h.log.Info().Err(err).Msg("failed to unmarshal action")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		snapshot, err := h.service.Dispatch(r.Context(), id, request.remote())
		if err != nil {
			var notDecoded *we.ActionNotDecodedError
			if errors.As(err, &notDecoded) {
				h.log.Info().Err(err).Str("action", request.Type.String()).Msg("failed to decode action")
				http.Error(w, "invalid action payload", http.StatusBadRequest)
				return
			}

			h.log.Info().Err(err).Str("type", id.Type).Str("key", id.Key).Msg("failed to dispatch action")
			http.Error(w, "failed to dispatch action", http.StatusInternalServerError)
			return
		}

		h.encode(w, r, &snapshot)
	}
}

func (h *httpService[S]) encode(w http.ResponseWriter, r *http.Request, snapshot *we.Snapshot[S]) {
	resource, err := we.Resource(snapshot, h.serialize)
	if err != nil {
		h.log.Info().Err(err).Msg("failed to serialize resource")
		http.Error(w, "failed to serialize resource", http.StatusInternalServerError)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resource)
}

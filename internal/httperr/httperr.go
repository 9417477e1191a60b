// Package httperr turns docstore errors into JSON error responses.
package httperr

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/internal/docstore"
	"github.com/balt0r/entrega-backend/pkg/kit"
)

// Write maps the error kind to a status code. Server side failures are
// logged and reported without internals.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := Status(err)

	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("store operation failed",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		msg := "server error"
		if status == http.StatusGatewayTimeout {
			msg = "timeout"
		}
		kit.WriteError(w, r, status, msg, nil)
		return
	}

	kit.WriteError(w, r, status, docstore.Message(err), nil)
}

func Status(err error) int {
	switch docstore.KindOf(err) {
	case docstore.KindValidation:
		return http.StatusBadRequest
	case docstore.KindNotFound:
		return http.StatusNotFound
	case docstore.KindStorageTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

package messages

import (
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

//TransactionAwareLogger logs each inbound request with a unique transaction
//ID alongside the method and path
func TransactionAwareLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		log.WithFields(log.Fields{
			"transaction_id": uuid.New().String(),
			"method":         request.Method,
			"path":           request.URL.Path,
		}).Debug("handling request")
		h.ServeHTTP(writer, request)
	})
}

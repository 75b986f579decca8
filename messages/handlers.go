package messages

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/scott-ace-newton/messages-rw-sql/auth"
	"github.com/scott-ace-newton/messages-rw-sql/persistence"
	"github.com/scott-ace-newton/messages-rw-sql/timestamp"
	"github.com/scott-ace-newton/messages-rw-sql/weather"
)

const (
	msgTemplate = "{\"message\": \"%s\"}"
	//AuthRealm is the HTTP Basic realm protecting the feed endpoint
	AuthRealm = "info"
)

type MessagesHandler struct {
	sqlClient     persistence.Clienter
	weatherClient weather.Lookuper
}

func NewMessagesHandler(sqlClient persistence.Clienter, weatherClient weather.Lookuper) MessagesHandler {
	return MessagesHandler{
		sqlClient:     sqlClient,
		weatherClient: weatherClient,
	}
}

func (h *MessagesHandler) RegisterHandlers(router *mux.Router) {
	log.Info("registering handlers")
	registrationHandler := handlers.MethodHandler{
		"POST": http.HandlerFunc(h.RegisterUser),
	}
	feedHandler := handlers.MethodHandler{
		"POST": http.HandlerFunc(h.PostMessage),
		"GET":  http.HandlerFunc(h.GetMessages),
	}
	healthHandler := handlers.MethodHandler{
		"GET": http.HandlerFunc(h.IsHealthy),
	}

	router.Handle("/registration", registrationHandler)
	router.Handle("/info", auth.Basic(h.sqlClient, AuthRealm, feedHandler))
	router.Handle("/__health", healthHandler)
}

//RegisterUser creates a new user account from the request body
func (h *MessagesHandler) RegisterUser(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Add("Content-Type", "application/json")
	if !checkContentType(writer, request) {
		return
	}

	ur := persistence.UserRecord{}
	if err := json.NewDecoder(request.Body).Decode(&ur); err != nil {
		log.WithError(err).Error("could not decode registration request body")
		writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "could not decode request body"))
		return
	}

	if ur.Username == "" || ur.Password == "" {
		log.Info("registration request is missing a username or password")
		writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "username or password is missing"))
		return
	}
	if ur.Nickname == "" {
		//users with no public display name fall back to their username
		ur.Nickname = ur.Username
	}

	switch h.sqlClient.CreateUser(ur) {
	case persistence.CREATED:
		writer.WriteHeader(http.StatusOK)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "registration was successful"))
	case persistence.ALREADY_EXISTS:
		writer.WriteHeader(http.StatusConflict)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, fmt.Sprintf("user with username: %s already exists in DB!", ur.Username)))
	default:
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "could not add user to DB"))
	}
}

//PostMessage appends a new location message to the feed on behalf of the
//authenticated user
func (h *MessagesHandler) PostMessage(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Add("Content-Type", "application/json")
	if !checkContentType(writer, request) {
		return
	}

	mr := persistence.MessageRecord{}
	if err := json.NewDecoder(request.Body).Decode(&mr); err != nil {
		log.WithError(err).Error("could not decode message request body")
		writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "could not decode request body"))
		return
	}

	if missing := missingFields(mr); len(missing) != 0 {
		log.Errorf("message is missing required fields: %s", strings.Join(missing, ", "))
		writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "message is missing required fields: "+strings.Join(missing, ", ")))
		return
	}
	if _, err := timestamp.ToMillis(mr.OriginalPostingTime); err != nil {
		log.WithError(err).Errorf("message has a malformed posting time: %s", mr.OriginalPostingTime)
		writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "originalPostingTime is malformed"))
		return
	}
	if !mr.HasCoordinates() {
		//coordinates travel as a pair; a lone latitude or longitude is dropped
		mr.Latitude = nil
		mr.Longitude = nil
	}

	switch h.sqlClient.CreateMessage(mr, auth.Username(request.Context())) {
	case persistence.CREATED:
		writer.WriteHeader(http.StatusOK)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "message was posted"))
	case persistence.NOT_FOUND:
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "could not attribute message to a registered user"))
	default:
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "could not add message to DB"))
	}
}

//GetMessages returns every stored message, attaching the current weather to
//messages that carry coordinates. A failed weather lookup never fails the
//request; the affected message is simply returned without weather.
func (h *MessagesHandler) GetMessages(writer http.ResponseWriter, request *http.Request) {
	msgs, status := h.sqlClient.RetrieveMessages()
	switch status {
	case persistence.OK:
		for i := range msgs {
			msgs[i].Weather = ""
			if !msgs[i].HasCoordinates() {
				continue
			}
			temperature, err := h.weatherClient.CurrentTemperature(*msgs[i].Latitude, *msgs[i].Longitude)
			if err != nil {
				log.WithError(err).Info("weather lookup failed; returning message without weather")
				continue
			}
			msgs[i].Weather = temperature
		}
		writer.Header().Add("Content-Type", "application/json")
		writer.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(writer).Encode(msgs); err != nil {
			log.WithError(err).Error("could not encode returned payload")
		}
	case persistence.NO_CONTENT:
		writer.WriteHeader(http.StatusNoContent)
	default:
		writer.Header().Add("Content-Type", "application/json")
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "messages could not be fetched"))
	}
}

//IsHealthy reports whether the service can reach its database
func (h *MessagesHandler) IsHealthy(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Add("Content-Type", "application/json")
	if h.sqlClient.ActiveConnection() {
		writer.WriteHeader(http.StatusOK)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "app is healthy"))
		return
	}
	writer.WriteHeader(http.StatusServiceUnavailable)
	fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "app is unhealthy"))
}

//checkContentType ensures the request declares a JSON body. It writes the
//error response itself and reports whether handling should continue.
func checkContentType(writer http.ResponseWriter, request *http.Request) bool {
	contentType := request.Header.Get("Content-Type")
	if contentType == "" {
		writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "Content-Type missing"))
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, "application/json") {
		writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(writer, fmt.Sprintf(msgTemplate, "Content type must be application/json"))
		return false
	}
	return true
}

func missingFields(mr persistence.MessageRecord) []string {
	var missing []string
	required := []struct {
		field string
		value string
	}{
		{"locationName", mr.LocationName},
		{"locationDescription", mr.LocationDescription},
		{"locationCity", mr.LocationCity},
		{"locationCountry", mr.LocationCountry},
		{"locationStreetAddress", mr.LocationStreetAddress},
		{"originalPostingTime", mr.OriginalPostingTime},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.field)
		}
	}
	return missing
}

package handlers

import (
	"net/http"
)

// EchoResponse echoes the query value back; message is null when value is absent
// swagger:model EchoResponse
type EchoResponse struct {
	Message *string `json:"message"`
}

// NewRootHandler returns a liveness handler.
// @Summary Liveness probe
// @Tags service
// @Produce json
// @Success 200 {object} handlers.MessageResponse "Server is active"
// @Router / [get]
func NewRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Server is active"})
	}
}

// NewEchoHandler returns a handler answering with the value query parameter.
// @Summary Echo a value
// @Tags service
// @Produce json
// @Param value query string false "Value to echo"
// @Success 200 {object} handlers.EchoResponse
// @Router /echo/ [get]
func NewEchoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := EchoResponse{}
		if values, ok := r.URL.Query()["value"]; ok && len(values) > 0 {
			resp.Message = &values[0]
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

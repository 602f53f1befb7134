// internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jason-s-yu/bussfix/internal/middleware"
	"github.com/jason-s-yu/bussfix/internal/room"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts the HTTP endpoints and the websocket behind the request
// logger.
func NewRouter(logger logrus.FieldLogger, reg *room.Registry, originPatterns []string) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LogMiddleware(logger))

	r.HandleFunc("/", StatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms", ListRoomsHandler(reg)).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomID}", GetRoomHandler(reg)).Methods(http.MethodGet)
	r.HandleFunc("/ws", RoomWSHandler(logger, reg, originPatterns))
	return r
}

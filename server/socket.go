package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
)

func NewSocketAcceptor(registry *PlayerRegistry, hub *ConnectionHub, config *Config, pipeline *Pipeline, stats *Stats, logger *Logger) func(http.ResponseWriter, *http.Request) {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {

		playerID, err := uuid.FromString(mux.Vars(r)["player_id"])
		if err != nil {
			http.Error(w, "Invalid player id", http.StatusBadRequest)
			return
		}

		//Only known players can open a socket. The connection still has to
		//authenticate in-band before it receives any game state.
		if _, ok := registry.Get(playerID); !ok {
			http.Error(w, "Unknown player", http.StatusNotFound)
			return
		}

		clientAddr := ""
		clientIP := ""
		if ips := r.Header.Get("x-forwarded-for"); len(ips) > 0 {
			clientAddr = strings.Split(ips, ",")[0]
		} else {
			clientAddr = r.RemoteAddr
		}

		clientAddr = strings.TrimSpace(clientAddr)
		if host, _, err := net.SplitHostPort(clientAddr); err == nil {
			clientIP = host
		} else if addrErr, ok := err.(*net.AddrError); ok && addrErr.Err == "missing port in address" {
			clientIP = clientAddr
		} else {
			logger.Warnw("Could not extract client address from request.", "error", errors.WithStack(err))
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorw("Websocket upgrade was failed", "error", errors.WithStack(err))
			return
		}

		s := NewSession(playerID, clientIP, conn, config, hub, stats, logger)

		logger.Infow("New socket connection was established", "id", s.ID().String(), "player", playerID.String())

		hub.Attach(playerID, s)

		//Incoming frames are consumed here and passed to the pipeline, the
		//session detaches itself from the hub when the loop ends
		s.Consume(pipeline.handleSocketMessage)

	}
}

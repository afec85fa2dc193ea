package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/satori/go.uuid"
)

type Server struct {
	httpServer *http.Server
	logger     *Logger
}

type apiHandler struct {
	config     *Config
	registry   *PlayerRegistry
	hub        *ConnectionHub
	matchmaker *Matchmaker
	gameMaster *GameMaster
	pubsub     *PubSub
	stats      *Stats
	logger     *Logger
}

type registerRequest struct {
	Name  string     `json:"name"`
	Token *uuid.UUID `json:"token"`
}

type registerResponse struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Token    uuid.UUID `json:"token"`
}

type newGameRequest struct {
	Ships Placement `json:"ships"`
}

type turnRequest struct {
	Cell CellIndex `json:"cell"`
}

type testMessage struct {
	Message string `json:"message"`
}

type genericResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func StartServer(config *Config, registry *PlayerRegistry, hub *ConnectionHub, matchmaker *Matchmaker, gameMaster *GameMaster, pubsub *PubSub, pipeline *Pipeline, stats *Stats, logger *Logger) *Server {

	api := &apiHandler{
		config:     config,
		registry:   registry,
		hub:        hub,
		matchmaker: matchmaker,
		gameMaster: gameMaster,
		pubsub:     pubsub,
		stats:      stats,
		logger:     logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/health", api.healthHandler).Methods("GET")
	router.HandleFunc("/api/register", api.registerHandler).Methods("POST")
	router.HandleFunc("/api/deregister/{player_id}", api.deregisterHandler).Methods("POST")
	router.HandleFunc("/api/game", api.newGameHandler).Methods("POST")
	router.HandleFunc("/api/game/{game_id}/turn", api.turnHandler).Methods("POST")
	router.HandleFunc("/api/game/{game_id}/state", api.stateQueryHandler).Methods("POST")
	router.HandleFunc("/api/publish", api.publishHandler).Methods("POST")
	router.Handle("/metrics", stats.prometheusExporter).Methods("GET")
	// No compression or body limit on the socket route, it is hijacked right away.
	router.HandleFunc("/ws/{player_id}", NewSocketAcceptor(registry, hub, config, pipeline, stats, logger)).Methods("GET")

	CORSHeaders := handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "User-Agent"})
	CORSOrigins := handlers.AllowedOrigins([]string{"*"})
	CORSMethods := handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "DELETE"})
	handlerWithCORS := handlers.CORS(CORSHeaders, CORSOrigins, CORSMethods)(router)

	s := &Server{
		logger: logger,
		httpServer: &http.Server{
			MaxHeaderBytes: 5120,
			Handler:        handlerWithCORS,
		},
	}

	logger.Infof("Starting gateway server for HTTP requests on port %d", config.Port)
	go func() {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", config.Port))
		if err != nil {
			logger.Fatalw("Error while creating listener for gateway server", "error", err)
		}
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Error while serving gateway server", "error", err)
		}
	}()

	return s

}

func (s *Server) Stop() {
	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		s.logger.Errorw("Couldn't shutdown gateway server", "error", err)
	}
}

func (api *apiHandler) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (api *apiHandler) registerHandler(w http.ResponseWriter, r *http.Request) {
	api.stats.IncrRequest()

	request := &registerRequest{}
	if !api.decodeBody(w, r, request) {
		return
	}

	record, err := api.registry.Register(request.Token, request.Name)
	if err != nil {
		api.writeError(w, err)
		return
	}

	api.writeJSON(w, &registerResponse{
		PlayerID: record.ID,
		Name:     record.Name,
		Token:    record.Token,
	})
}

func (api *apiHandler) deregisterHandler(w http.ResponseWriter, r *http.Request) {
	api.stats.IncrRequest()

	playerID, err := uuid.FromString(mux.Vars(r)["player_id"])
	if err != nil {
		api.writeError(w, &InvalidArgumentError{Reason: "malformed player id"})
		return
	}

	if err := api.registry.Deregister(playerID); err != nil {
		api.writeError(w, err)
		return
	}

	api.writeJSON(w, &genericResponse{Success: true})
}

func (api *apiHandler) newGameHandler(w http.ResponseWriter, r *http.Request) {
	api.stats.IncrRequest()

	playerID, err := api.authenticatedPlayer(r)
	if err != nil {
		api.writeError(w, err)
		return
	}

	request := &newGameRequest{}
	if !api.decodeBody(w, r, request) {
		return
	}

	pairing := api.matchmaker.EnqueueOrPair(playerID, request.Ships)
	if pairing != nil {
		if _, err := api.gameMaster.StartGame(r.Context(), pairing.Player1ID, pairing.Player1Ships, pairing.Player2ID, pairing.Player2Ships); err != nil {
			api.writeError(w, err)
			return
		}
	}

	api.writeJSON(w, &genericResponse{Success: true})
}

func (api *apiHandler) turnHandler(w http.ResponseWriter, r *http.Request) {
	api.stats.IncrRequest()

	playerID, err := api.authenticatedPlayer(r)
	if err != nil {
		api.writeError(w, err)
		return
	}

	gameID, err := uuid.FromString(mux.Vars(r)["game_id"])
	if err != nil {
		api.writeError(w, &InvalidArgumentError{Reason: "malformed game id"})
		return
	}

	request := &turnRequest{}
	if !api.decodeBody(w, r, request) {
		return
	}

	if err := api.gameMaster.SubmitTurn(r.Context(), gameID, playerID, request.Cell); err != nil {
		api.writeError(w, err)
		return
	}

	api.writeJSON(w, &genericResponse{Success: true})
}

func (api *apiHandler) stateQueryHandler(w http.ResponseWriter, r *http.Request) {
	api.stats.IncrRequest()

	playerID, err := api.authenticatedPlayer(r)
	if err != nil {
		api.writeError(w, err)
		return
	}

	gameID, err := uuid.FromString(mux.Vars(r)["game_id"])
	if err != nil {
		api.writeError(w, &InvalidArgumentError{Reason: "malformed game id"})
		return
	}

	if err := api.gameMaster.QueryStatus(r.Context(), gameID, playerID); err != nil {
		api.writeError(w, err)
		return
	}

	api.writeJSON(w, &genericResponse{Success: true})
}

func (api *apiHandler) publishHandler(w http.ResponseWriter, r *http.Request) {
	api.stats.IncrRequest()

	request := &testMessage{}
	if !api.decodeBody(w, r, request) {
		return
	}

	if err := api.pubsub.Broadcast(request.Message); err != nil {
		api.writeError(w, err)
		return
	}

	api.writeJSON(w, &genericResponse{Success: true})
}

// authenticatedPlayer resolves the bearer token from the authorization header
// to a registered player.
func (api *apiHandler) authenticatedPlayer(r *http.Request) (uuid.UUID, error) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return uuid.UUID{}, &NotFoundError{Resource: "token", ID: ""}
	}

	token, err := uuid.FromString(strings.TrimSpace(auth[len(prefix):]))
	if err != nil {
		return uuid.UUID{}, &NotFoundError{Resource: "token", ID: ""}
	}

	return api.registry.LookupToken(token)
}

func (api *apiHandler) decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, api.config.MaxRequestBodySize)
	if err := jsonCodec.NewDecoder(body).Decode(target); err != nil {
		api.writeError(w, &InvalidArgumentError{Reason: "malformed request body"})
		return false
	}
	return true
}

func (api *apiHandler) writeJSON(w http.ResponseWriter, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsonCodec.NewEncoder(w).Encode(response); err != nil {
		api.logger.Errorw("Error while encoding response", "error", err)
	}
}

func (api *apiHandler) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	message := "Internal Server Error"

	switch {
	case IsNotFound(err):
		code = http.StatusNotFound
		message = err.Error()
	case IsInvalidArgument(err):
		code = http.StatusBadRequest
		message = err.Error()
	default:
		api.logger.Errorw("Unhandled application error", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := jsonCodec.NewEncoder(w).Encode(&errorResponse{Message: message}); err != nil {
		api.logger.Errorw("Error while encoding error response", "error", err)
	}
}

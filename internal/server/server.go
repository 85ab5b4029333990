package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/database"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/service"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Port          int
	PublicBaseURL string
	CORSOrigins   []string
	Services      *service.Services
	DB            database.Service
	Hub           *realtime.Hub
	Log           *zap.Logger
}

type Server struct {
	port          int
	publicBaseURL string
	corsOrigins   []string
	services      *service.Services
	db            database.Service
	hub           *realtime.Hub
	log           *zap.Logger
	upgrader      websocket.Upgrader
}

func NewServer(deps Deps) *http.Server {
	if deps.Port == 0 {
		deps.Port = 8080
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.PublicBaseURL == "" {
		deps.PublicBaseURL = fmt.Sprintf("http://localhost:%d", deps.Port)
	}

	appServer := &Server{
		port:          deps.Port,
		publicBaseURL: deps.PublicBaseURL,
		corsOrigins:   deps.CORSOrigins,
		services:      deps.Services,
		db:            deps.DB,
		hub:           deps.Hub,
		log:           deps.Log.Named("http"),
	}
	appServer.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     appServer.allowedOrigin,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

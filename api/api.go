// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the governance engine over a JSON REST API
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const DefaultListenAddress = ":8080"

type Config struct {
	ListenAddress string
}

// Server is the governance REST API server
type Server struct {
	config     Config
	logger     *slog.Logger
	node       GovernanceNode
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
}

func New(
	cfg Config,
	node GovernanceNode,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Server{
		config: cfg,
		logger: logger,
		node:   node,
	}
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v0/dao", s.handleDao)
	mux.HandleFunc("GET /api/v0/proposals", s.handleListProposals)
	mux.HandleFunc("POST /api/v0/proposals", s.handleCreateProposal)
	mux.HandleFunc("GET /api/v0/proposals/{id}", s.handleGetProposal)
	mux.HandleFunc("GET /api/v0/proposals/{id}/votes", s.handleGetVotes)
	mux.HandleFunc("POST /api/v0/proposals/{id}/votes", s.handleVote)
	mux.HandleFunc(
		"GET /api/v0/proposals/{id}/history",
		s.handleVoteHistory,
	)
	mux.HandleFunc(
		"GET /api/v0/proposals/{id}/voters/{address}",
		s.handleHaveVoted,
	)
	mux.HandleFunc(
		"POST /api/v0/proposals/{id}/execute",
		s.handleExecute,
	)
	mux.HandleFunc(
		"POST /api/v0/proposals/{id}/restore",
		s.handleRestore,
	)
	return mux
}

// Start starts the HTTP server in a background goroutine. The server shuts
// down when ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	if err := s.startServer(server); err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}

	s.logger.Info(
		"API listener started",
		"address", s.Addr(),
	)

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()

	return nil
}

// Addr returns the address the server is listening on, or an empty string
// if it is not running
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}

// startServer binds the listening socket first so port conflicts are
// reported immediately, then serves in a background goroutine
func (s *Server) startServer(server *http.Server) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}

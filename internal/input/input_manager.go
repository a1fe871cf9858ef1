/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package input

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"chatd/internal/handler"
	"chatd/internal/nlog"
	"chatd/internal/realtime"
	"chatd/internal/service"
	"chatd/internal/token"

	"github.com/gorilla/mux"
)

type IptConfig struct {
	ServerPort   uint16
	ReadTimeout  int64
	WriteTimeout int64
}

type InputManager struct { // Manages the HTTP and websocket input of the server
	running atomic.Bool
	paused  atomic.Bool

	logger nlog.Logger
	server *http.Server

	stopFromOutsideChan chan struct{}
	doneFromInsideChan  chan struct{}

	tokens         *token.Manager
	authService    service.AuthService
	chatService    service.ChatService
	messageService service.MessageService
	callService    service.CallService
	userService    service.UserService
	socketHandler  *realtime.SocketHandler
}

func NewInputManager() *InputManager {
	return &InputManager{
		running:             atomic.Bool{},
		paused:              atomic.Bool{},
		stopFromOutsideChan: make(chan struct{}),
		doneFromInsideChan:  make(chan struct{}),
	}
}

func (i *InputManager) IsReady() bool {
	return i.logger != nil && i.tokens != nil && i.authService != nil &&
		i.chatService != nil && i.messageService != nil &&
		i.callService != nil && i.userService != nil && i.socketHandler != nil
}

func (i *InputManager) IsRunning() bool {
	return i.running.Load()
}

func (i *InputManager) SetLogger(l nlog.Logger) {
	i.logger = l
}

func (i *InputManager) SetTokenManager(t *token.Manager) {
	i.tokens = t
}

func (i *InputManager) SetAuthService(as service.AuthService) {
	i.authService = as
}

func (i *InputManager) SetChatService(cs service.ChatService) {
	i.chatService = cs
}

func (i *InputManager) SetMessageService(ms service.MessageService) {
	i.messageService = ms
}

func (i *InputManager) SetCallService(cs service.CallService) {
	i.callService = cs
}

func (i *InputManager) SetUserService(us service.UserService) {
	i.userService = us
}

func (i *InputManager) SetSocketHandler(sh *realtime.SocketHandler) {
	i.socketHandler = sh
}

func (i *InputManager) Logf(format string, a ...any) {
	i.logger.Logf(format, a...)
}

func (i *InputManager) SetPause(paused bool) {
	i.paused.Store(paused)
}

func (i *InputManager) IsPaused() bool {
	return i.paused.Load()
}

// Middleware answering 503 to everything while the manager is paused
func (i *InputManager) PauseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i.paused.Load() {
			http.Error(w, "The server is paused", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (i *InputManager) Run(ctx context.Context, cfg *IptConfig) error {
	i.Logf("Input service started...")

	if !i.IsReady() {
		return fmt.Errorf("The Input manager is not ready... Missing components")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(i.authService)
	chatHandler := handler.NewChatHandler(i.chatService, i.messageService, i.callService)
	deviceHandler := handler.NewDeviceHandler(i.userService)

	// Router
	r := mux.NewRouter()
	r.Use(i.PauseMiddleware)

	// Authentication routes
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Socket routes, they authenticate with the token in the query string
	r.HandleFunc("/ws/chat/{uuid}", i.socketHandler.ServeChat).Methods("GET")
	r.HandleFunc("/ws/call/{uuid}", i.socketHandler.ServeCall).Methods("GET")

	// Everything else wants a bearer token
	api := r.NewRoute().Subrouter()
	api.Use(handler.AuthMiddleware(i.tokens))
	api.HandleFunc("/chats", chatHandler.Create).Methods("POST")
	api.HandleFunc("/chats", chatHandler.List).Methods("GET")
	api.HandleFunc("/chats/{uuid}", chatHandler.Get).Methods("GET")
	api.HandleFunc("/chats/{uuid}", chatHandler.Delete).Methods("DELETE")
	api.HandleFunc("/chats/{uuid}/messages", chatHandler.Messages).Methods("GET")
	api.HandleFunc("/chats/{uuid}/calls", chatHandler.Calls).Methods("GET")
	api.HandleFunc("/devices", deviceHandler.Register).Methods("PUT")
	api.HandleFunc("/me", deviceHandler.DeleteAccount).Methods("DELETE")

	i.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:        r,
		ReadTimeout:    time.Duration(cfg.ReadTimeout * int64(time.Second)),
		WriteTimeout:   time.Duration(cfg.WriteTimeout * int64(time.Second)),
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		select {
		case <-ctx.Done():
			i.Logf("Received stop signal. Shutting down...")
		case <-i.stopFromOutsideChan:
			i.Logf("Server was asked to stop. Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := i.server.Shutdown(shutdownCtx); err != nil {
			i.Logf("Error during shutdown... %v\n", err)
		}
		close(i.doneFromInsideChan)
	}()

	i.Logf("Http server starting on port {%d}", cfg.ServerPort)
	i.running.Store(true)

	if err := i.server.ListenAndServe(); err != http.ErrServerClosed {
		i.Logf("FATAL: HTTP Server error{%v}\n", err)
		return err
	}

	return nil
}

func (i *InputManager) Stop() {
	close(i.stopFromOutsideChan)
	<-i.doneFromInsideChan
	i.running.Store(false)
}

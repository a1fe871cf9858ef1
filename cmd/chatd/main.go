/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatd/internal/config"
	"chatd/internal/entity"
	"chatd/internal/input"
	"chatd/internal/nlog"
	"chatd/internal/notify"
	"chatd/internal/realtime"
	"chatd/internal/repository"
	"chatd/internal/service"
	"chatd/internal/token"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logging, one file per subsystem
	serverLogger, err := nlog.NewServerLogger(cfg.LogDirectory, cfg.EnableLogging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not set up logging: %v\n", err)
		os.Exit(1)
	}
	go serverLogger.Run(ctx)

	httpLogger := mustSubsystem(serverLogger, "http")
	hubLogger := mustSubsystem(serverLogger, "hub")
	callLogger := mustSubsystem(serverLogger, "calls")
	storageLogger := mustSubsystem(serverLogger, "storage")
	pushLogger := mustSubsystem(serverLogger, "push")

	// Storage
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open the database: %v\n", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&entity.User{}, &entity.UserSecret{}, &entity.PushToken{},
		&entity.Chat{}, &entity.Message{},
		&entity.Call{}, &entity.CallParticipant{},
	); err != nil {
		fmt.Fprintf(os.Stderr, "Could not migrate the database: %v\n", err)
		os.Exit(1)
	}

	userRepo := repository.NewSQLiteUserRepository(db)
	chatRepo := repository.NewSQLiteChatRepository(db)
	messageRepo := repository.NewSQLiteMessageRepository(db)
	callRepo := repository.NewSQLiteCallRepository(db)

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// Realtime fabric, optionally bridged to peer processes
	var backend realtime.Backend
	if cfg.BusBind != "" {
		b, err := realtime.NewZMQBackend(uuid.NewString(), cfg.BusBind, cfg.BusPeers, hubLogger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not start the bus backend: %v\n", err)
			os.Exit(1)
		}
		defer b.Close()
		backend = b
	}

	hub := realtime.NewHub(backend, hubLogger)
	go hub.Run(ctx)
	registry := realtime.NewRegistry()

	// Services
	dispatcher := notify.NewDispatcher(userRepo, &notify.LogSender{Logger: pushLogger}, pushLogger)
	directory := service.NewDirectory(userRepo, chatRepo)
	authService := service.NewAuthService(userRepo, tokens, httpLogger)
	userService := service.NewUserService(userRepo, storageLogger)
	chatService := service.NewChatService(chatRepo, userRepo, storageLogger)
	messageService := service.NewMessageService(messageRepo, chatRepo, storageLogger)
	callService := service.NewCallService(callRepo, chatRepo, hub, directory, dispatcher, callLogger)

	socketDispatcher := service.NewSocketDispatcher(messageService, callService, hub, hubLogger)
	socketHandler := realtime.NewSocketHandler(tokens, directory, hub, registry, socketDispatcher,
		cfg.OutboundQueueSize, httpLogger)

	// Unanswered calls get swept to missed in the background
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.CallSweepInterval) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				callService.SweepStale(time.Duration(cfg.CallRingTimeout) * time.Second)
			}
		}
	}()

	im := input.NewInputManager()
	im.SetLogger(httpLogger)
	im.SetTokenManager(tokens)
	im.SetAuthService(authService)
	im.SetChatService(chatService)
	im.SetMessageService(messageService)
	im.SetCallService(callService)
	im.SetUserService(userService)
	im.SetSocketHandler(socketHandler)

	if err := im.Run(ctx, &input.IptConfig{
		ServerPort:   cfg.HTTPPort,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Shutting off...\n")
}

func mustSubsystem(s *nlog.ServerLogger, name string) nlog.Logger {
	l, err := s.RegisterSubsystem(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not register the %s log: %v\n", name, err)
		os.Exit(1)
	}
	return l
}

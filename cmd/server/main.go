package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/chat"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/config"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/httpserver"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/llm"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/persona"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/tts"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	catalog, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		log.Fatalf("load persona catalog: %v", err)
	}

	client := llm.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)

	var speech chat.Speech
	switch cfg.TTSProvider {
	case "elevenlabs":
		speech = tts.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
	default:
		speech = tts.NewOpenAISpeech(cfg.OpenAIKey, cfg.OpenAITTSModel, cfg.OpenAIBaseURL)
	}

	e := httpserver.New()
	httpserver.NewHandlers(catalog, client, speech, client).Register(e)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}

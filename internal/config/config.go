package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	TTSProvider       string // "openai" or "elevenlabs"
	OpenAITTSModel    string
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	PersonaFile string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - chat and TTS will not work")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	provider := os.Getenv("TTS_PROVIDER")
	if provider == "" {
		provider = "openai"
	}
	ttsModel := os.Getenv("OPENAI_TTS_MODEL")
	if ttsModel == "" {
		ttsModel = "tts-1"
	}

	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	if provider == "elevenlabs" && elevenKey == "" {
		log.Println("Warning: ELEVENLABS_API_KEY not set - TTS will not work")
	}

	log.Printf("config: HTTP_ADDRESS=%s OPENAI_MODEL=%s TTS_PROVIDER=%s", addr, model, provider)
	return Config{
		HTTPAddress:       addr,
		OpenAIKey:         openAIKey,
		OpenAIModel:       model,
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		TTSProvider:       provider,
		OpenAITTSModel:    ttsModel,
		ElevenLabsKey:     elevenKey,
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		PersonaFile:       os.Getenv("PERSONA_FILE"),
	}
}

package config

import "os"

type Config struct {
	SocketPath string // ipc control socket
	BusURL     string // host UI websocket, empty = headless
	ProxyAddr  string // socks proxy for outbound calls, empty = direct

	WhisperModel string
	CatalogPath  string // empty = built-in demo catalog
	ConsentPath  string // consent persistence file
	ChimePath    string // listening chime, empty = no chime

	PaymentURL   string
	ProsodyModel string // model used for consented tone analysis
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load builds the config from env vars. Flags on the daemon may
// override individual fields afterwards.
func Load() *Config {
	return &Config{
		SocketPath: getEnv("SHOPVOICE_SOCKET", "/tmp/shopvoice.sock"),
		BusURL:     getEnv("SHOPVOICE_BUS_URL", ""),
		ProxyAddr:  getEnv("SHOPVOICE_PROXY", ""),

		WhisperModel: getEnv("SHOPVOICE_WHISPER_MODEL", "third_party/whisper.cpp/models/ggml-base.en.bin"),
		CatalogPath:  getEnv("SHOPVOICE_CATALOG", ""),
		ConsentPath:  getEnv("SHOPVOICE_CONSENT", "consent.json"),
		ChimePath:    getEnv("SHOPVOICE_CHIME", ""),

		PaymentURL:   getEnv("SHOPVOICE_PAYMENT_URL", "http://localhost:8091/charge"),
		ProsodyModel: getEnv("SHOPVOICE_PROSODY_MODEL", "gpt-4o-audio-preview"),
	}
}

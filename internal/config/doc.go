// Package config loads and validates configuration for the Tarnished
// Tactics API.
//
// Values are layered: Defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables.
//
//	cfg, err := config.Load()
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Environment Variables
//
//	PORT                 - HTTP port (default: 5000)
//	SERVER_ENV           - development, production or test
//	CORS_ALLOWED_ORIGINS - comma separated origins (default: *)
//	RATE_LIMIT_*         - ENABLED, RATE, WINDOW, BURST, TRUST_PROXY
//	DB_URL               - full SurrealDB endpoint; overrides DB_HOST/DB_PORT
//	DB_HOST, DB_PORT     - SurrealDB host and port (default: localhost:8000)
//	DB_NAMESPACE         - namespace (default: tarnished)
//	DB_DATABASE          - database (default: tactics)
//	DB_USER, DB_PASSWORD - root credentials
//	DB_QUERY_TIMEOUT     - per-query bound (default: 10s)
//	DB_MIGRATE           - apply migrations at startup (default: true)
//	LLM_PROVIDER         - openai or gemini (default: openai)
//	LLM_API_KEY          - provider key; OPENAI_API_KEY / GEMINI_API_KEY also work
//	LLM_MODEL            - model name; empty uses the provider default
//	LLM_TIMEOUT          - completion timeout (default: 60s)
//	LOG_LEVEL            - debug, info, warn or error
//
// # YAML File
//
//	server:
//	  port: "5000"
//	  allowed_origins: ["https://tactics.example"]
//	database:
//	  url: wss://db.example/rpc
//	llm:
//	  provider: gemini
//	  timeout: 45s
package config

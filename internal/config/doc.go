// Package config handles configuration loading for the todochat server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion
// and duration parsing.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TODOCHAT_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	llm:
//	  timeout: "30s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server and storage:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	database:
//	  path: "/var/lib/todochat/todochat.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${TODOCHAT_JWT_SECRET}"
//
// Generation backend:
//
//	llm:
//	  provider: "openai"   # openai, stub
//	  base_url: ""         # optional OpenAI-compatible endpoint
//	  api_key: "${OPENAI_API_KEY}"
//	  model: "gpt-4o-mini"
//	  timeout: "30s"
//
// Chat pipeline:
//
//	chat:
//	  history_limit: 20
//	  max_message_chars: 10000
//	  rate_per_minute: 30
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/todochat/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

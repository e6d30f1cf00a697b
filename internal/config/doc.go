// Package config handles configuration loading for panelctl.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion, or assembled purely from environment variables. The package
// provides validation and sensible defaults; every credential the client
// needs (OAuth client secret, first-party signing secret) is checked here at
// startup so nothing downstream has to handle a missing secret.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from the -config flag
//  2. Path from the PANELCTL_CONFIG environment variable
//  3. ~/.config/panelctl/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	first_party:
//	  secret: "${FIRST_PARTY_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Backend endpoints:
//
//	api:
//	  base_url: "https://panel.example.com/api"
//	  auth_base_url: "https://auth.example.com"
//	  timeout: "30s"
//
// OAuth password-grant client:
//
//	oauth:
//	  client_id: "1"
//	  client_secret: "${OAUTH_CLIENT_SECRET}"
//	  scope: "admin"
//
// First-party request signing:
//
//	first_party:
//	  id: "${FIRST_PARTY_ID}"
//	  secret: "${FIRST_PARTY_SECRET}"
//
// Local state database (bearer token persistence):
//
//	storage:
//	  path: "~/.local/state/panelctl/state.db"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Environment-Only Mode
//
// LoadFromEnv() builds the same Config from API_BASE_URL, AUTH_BASE_URL,
// OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET, OAUTH_SCOPE, FIRST_PARTY_ID and
// FIRST_PARTY_SECRET, for deployments without a config file.
package config

// Package config loads and validates the configuration of a repository
// stack.
//
// Values come from a YAML file (config.yml), then a .env file, then the
// process environment. Every key can be overridden by an environment
// variable named after its path with the COREAPI_ prefix:
//
//	api.host              -> COREAPI_API_HOST
//	token_store.ttl       -> COREAPI_TOKEN_STORE_TTL
//	connectivity.interval -> COREAPI_CONNECTIVITY_INTERVAL
//
// # Usage
//
//	cfg, err := config.Load("my-app")
package config

// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key protecting the
// control surface, and the deployment mode. Development mode additionally
// serves the Swagger UI.
package server

/* models.go
 * Contains the server configuration and the request and response bodies of the HTTP API
 * Authors: Zachary Bower
 */

package web

import (
	"log/slog"
	"tournament-importer/api/api"
	"tournament-importer/api/shared"
)

// Config holds the configuration for the web server
type Config struct {
	Addr   string
	API    *api.API
	Logger *slog.Logger
}

// Server is the HTTP server that exposes the importer
type Server struct {
	api    *api.API
	logger *slog.Logger
}

// importURLRequest is the body of POST /imports/url
type importURLRequest struct {
	URL         string `json:"url"`
	SheetFilter string `json:"sheetFilter"`
}

// errorResponse is the body of every error answer. Diagnostics are set when the workbook was read but could not be
// imported
type errorResponse struct {
	Error       string              `json:"error"`
	Diagnostics []shared.Diagnostic `json:"diagnostics,omitempty"`
}

/* models.go
 * This file contain the structs that are used by api consumers
 * Authors: Zachary Bower
 */

package api

import "tournament-importer/api/shared"

// ImportResult is the outcome of one import
type ImportResult struct {
	Record      shared.TournamentRecord `json:"record"`
	Diagnostics []shared.Diagnostic     `json:"diagnostics"`
	// Cached is set when the record was served from the cache
	Cached bool   `json:"cached"`
	Digest string `json:"digest"`
}

// ProfileInfo describes one registered organization
type ProfileInfo struct {
	Organization          string   `json:"organization"`
	ProviderID            string   `json:"providerId,omitempty"`
	Supported             bool     `json:"supported"`
	SheetNamePatterns     []string `json:"sheetNamePatterns,omitempty"`
	MustContainSheetNames []string `json:"mustContainSheetNames,omitempty"`
}

package types

// SongsResponse wraps the list of songs returned by GET /songs.
type SongsResponse struct {
	// Songs matching the query.
	Songs []Song `json:"songs"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid query
	Error string `json:"error" example:"invalid query"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Number of clients with both channels connected.
	// example: 3
	ConnectedClients int `json:"connected_clients" example:"3"`
	// Number of songs in the library database.
	// example: 1200
	LibrarySongs int `json:"library_songs" example:"1200"`
	// TCP port accepting communication connections.
	// example: 9191
	CommunicationPort int `json:"communication_port" example:"9191"`
	// TCP port accepting streaming connections.
	// example: 9090
	StreamingPort int `json:"streaming_port" example:"9090"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

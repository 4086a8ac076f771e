package types

// Song is the wire shape of a catalog entry. It is what the communication
// channel and the HTTP API serialize to clients.
type Song struct {
	// Stable identifier of the song in the library database.
	// example: 42
	ID int64 `json:"id" example:"42"`
	// Song title.
	// example: Xenogenesis
	Name string `json:"name" example:"Xenogenesis"`
	// Performing artist.
	// example: TheFatRat
	Artist string `json:"artist" example:"TheFatRat"`
	// Duration in whole seconds.
	// example: 233
	Duration int `json:"duration" example:"233"`
	// Duration rendered as MM:SS.
	// example: 03:53
	DurationString string `json:"duration_string" example:"03:53"`
	// Cover art bytes, base64 in JSON. Omitted when the image is missing.
	Image []byte `json:"image,omitempty"`
}

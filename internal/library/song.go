package library

import "fmt"

// Record is one row of the songs table. SongFile and ImageFile are file names
// relative to the configured songs and images directories.
type Record struct {
	ID        int64
	Name      string
	Artist    string
	Duration  int
	SongFile  string
	ImageFile string
}

// formatDuration renders whole seconds as MM:SS (e.g. 60 -> "01:00").
// Minutes are not capped, so 3600 renders as "60:00".
func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

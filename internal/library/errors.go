package library

import "strconv"

// songNotFoundError signals a song id that is not present in the database.
type songNotFoundError struct{ id int64 }

func (e songNotFoundError) Error() string { return "song not found: " + strconv.FormatInt(e.id, 10) }

// ErrSongNotFound constructs a songNotFoundError.
func ErrSongNotFound(id int64) error { return songNotFoundError{id: id} }

// IsSongNotFound reports whether the error indicates a missing song id.
func IsSongNotFound(err error) bool {
	_, ok := err.(songNotFoundError)
	return ok
}

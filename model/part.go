package model

// PartSection is one instrument role's slice of a song.
type PartSection struct {
	Name  string
	Notes []Note
	Meta  map[string]string
}

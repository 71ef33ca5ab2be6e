package storage

import (
	"errors"
	"path"
)

// ErrNotFound is returned by Retrieve when the named object does not exist
var ErrNotFound = errors.New("object not found")

// StorageInterface is a flat blob namespace shared by the state store, run
// reports and render archiving
type StorageInterface interface {
	Store(name string, data []byte) error
	Retrieve(name string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(name string) error
}

var contentTypes = map[string]string{
	".json": "application/json",
	".webm": "video/webm",
	".mp4":  "video/mp4",
	".png":  "image/png",
}

// ContentTypeFor maps the object names this engine writes to a MIME type
func ContentTypeFor(name string) string {
	if t, ok := contentTypes[path.Ext(name)]; ok {
		return t
	}
	return "application/octet-stream"
}

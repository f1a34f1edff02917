package storage

import "io"

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Storage persists uploaded media. FilePath exposes the absolute path of a
// stored file so the pipeline's ffmpeg-based stages can read it directly.
type Storage interface {
	SaveFile(file io.Reader, info FileInfo) (string, error)
	OpenFile(name string) (io.ReadSeekCloser, error)
	FilePath(name string) string
	DeleteFile(name string) error
}

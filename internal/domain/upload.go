package domain

import "io"

// File is an image handed to the upload gate.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type UploadResult struct {
	DownloadURL      string `json:"download_url"`
	OriginalFileName string `json:"original_file_name"`
	ContentType      string `json:"content_type"`
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/tixflow/listing-service/internal/application/upload"
	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/transport/http/response"
)

// room for the multipart envelope around the file itself
const multipartOverhead = 1 << 20

type UploadHandler struct {
	gate     *upload.Gate
	maxBytes int64
}

func NewUploadHandler(gate *upload.Gate, maxBytes int64) *UploadHandler {
	return &UploadHandler{gate: gate, maxBytes: maxBytes}
}

// Upload takes the multipart field "file" through the upload gate.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	file, hdr, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		response.Err(w, r, domain.ErrValidation(domain.MsgFileMissing))
		return
	case err != nil:
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.Err(w, r, domain.ErrValidation(domain.MsgFileTooLarge))
			return
		}
		response.Err(w, r, &domain.AppError{Code: domain.CodeValidation, Message: domain.MsgInvalidRequest, Err: err})
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	res, err := h.gate.Upload(r.Context(), domain.File{
		Name:        hdr.Filename,
		Size:        hdr.Size,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, res)
}

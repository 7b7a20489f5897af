package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/files"
)

const multipartMemory = 8 << 20

func (api *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := api.requestLogger(r)
	actorID, ok := auth.ActorID(r.Context())
	if !ok {
		writeError(w, auth.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, api.maxUpload+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		api.observeUpload(false, 0)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, files.ErrFileTooLarge)
			return
		}
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		api.observeUpload(false, 0)
		writeError(w, fmt.Errorf("%w: file field required", errBadRequest))
		return
	}
	defer part.Close()

	input := files.UploadInput{
		Name:       header.Filename,
		UploadedBy: actorID,
		Body:       part,
	}
	if contentType := strings.TrimSpace(header.Header.Get("Content-Type")); contentType != "" {
		input.MimeType = &contentType
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		input.Description = &description
	}

	record, err := api.files.Upload(r.Context(), input)
	if err != nil {
		api.observeUpload(false, 0)
		if status, _ := mapError(err); status >= http.StatusInternalServerError {
			logger.Error("http.upload.failed", "name", header.Filename, "error", err)
		}
		writeError(w, err)
		return
	}
	var size int64
	if record.Size != nil {
		size = *record.Size
	}
	api.observeUpload(true, size)
	writeJSON(w, http.StatusCreated, resultResponse{Result: record})
}

func (api *API) observeUpload(ok bool, size int64) {
	if api.uploads != nil {
		api.uploads.ObserveUpload(ok, size)
	}
}

func (api *API) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid file id", errBadRequest))
		return
	}
	download, err := api.files.Open(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer download.Body.Close()

	record := download.File
	contentType := "application/octet-stream"
	if record.MimeType != nil && strings.TrimSpace(*record.MimeType) != "" {
		contentType = *record.MimeType
	}
	w.Header().Set("Content-Type", contentType)
	if disposition := mime.FormatMediaType("inline", map[string]string{"filename": record.Name}); disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	if record.Size != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*record.Size, 10))
	}
	if record.Checksum != "" {
		w.Header().Set("ETag", strconv.Quote(record.Checksum))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, download.Body); err != nil {
		api.requestLogger(r).Warn("http.download.interrupted", "file_id", id, "error", err)
	}
}

package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/blob"
)

const maxPhotoSize = 5 << 20 // 5 MiB

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadPhoto stores one photo in the blob store and returns its public
// URL. The caller attaches the URL to a property separately.
func UploadPhoto(store blob.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "multipart form expected"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "file is required"))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !allowedPhotoTypes[contentType] {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "only JPEG, PNG and WebP are allowed"))
			return
		}
		if header.Size > maxPhotoSize {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "file exceeds the 5MB limit"))
			return
		}
		body, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if len(body) > maxPhotoSize {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "file exceeds the 5MB limit"))
			return
		}

		key := blob.PhotoKey(p.ID, header.Filename)
		url, err := store.Put(r.Context(), key, contentType, body)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{
			"url":  url,
			"name": header.Filename,
			"size": len(body),
			"type": contentType,
		})
	}
}

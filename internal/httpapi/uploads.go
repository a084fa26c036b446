package httpapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const maxUploadBytes = 10 << 20

var errFileTooLarge = errors.New("file exceeds the 10 MB upload limit")

// stageFile copies the named multipart form file to a temp file and returns
// its path for the media client. Returns "" without error when the field is
// absent; callers decide whether the attachment is required. The media
// client removes the staged file after its upload attempt.
func stageFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	tmp, err := os.CreateTemp("", "peopledesk-upload-*"+ext)
	if err != nil {
		return "", err
	}
	// Read one byte past the limit so an oversize file fails instead of
	// being stored truncated.
	n, err := io.Copy(tmp, io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if n > maxUploadBytes {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errFileTooLarge
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

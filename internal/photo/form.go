package photo

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bitelog/bite/internal/validation"
)

var (
	ErrNoPhoto       = errors.New("no photo provided")
	ErrPhotoTooLarge = errors.New("photo too large")
)

// multipartOverhead allows for boundaries and the other form fields on top of the photo itself.
const multipartOverhead = 1 << 20

// Form is the parsed analysis request.
type Form struct {
	Filename    string
	ContentType string // As declared by the client, may be empty
	Data        []byte
	Date        string // Raw caller value, validated later
}

// ParseForm reads the multipart body. The photo part is required and must be
// non-empty; date is optional and passed through unchanged.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Form, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrPhotoTooLarge
		}
		return nil, ErrNoPhoto
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return nil, ErrNoPhoto
	}
	defer func() { _ = file.Close() }()

	err = validation.ValidateFile(header, validation.PhotoConstraints(maxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPhotoTooLarge, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoPhoto
	}

	return &Form{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Date:        r.FormValue("date"),
	}, nil
}

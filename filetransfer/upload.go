// Package filetransfer builds multipart upload bodies and delivers downloaded
// payloads to a save-as target through short-lived, revocable objects.
package filetransfer

import (
	"errors"
	"io"
	"mime/multipart"
	"sync/atomic"
)

// Multipart field names expected by the upload handler.
const (
	FieldFile     = "file"
	FieldPolicy   = "policy"
	FieldPassword = "password"
)

var ErrBodyConsumed = errors.New("filetransfer: upload body already consumed")

// Upload describes one file upload. Password is optional and the field is
// left out of the body when it is empty.
type Upload struct {
	File     io.Reader
	FileName string
	Policy   string
	Password string
}

// UploadBody streams an Upload as multipart/form-data. It can be read once.
type UploadBody struct {
	upload   Upload
	boundary string
	consumed atomic.Bool
}

func NewUploadBody(u Upload) (*UploadBody, error) {
	if u.File == nil {
		return nil, errors.New("filetransfer: upload requires a file")
	}
	if u.FileName == "" {
		u.FileName = "blob"
	}

	return &UploadBody{
		upload:   u,
		boundary: multipart.NewWriter(io.Discard).Boundary(),
	}, nil
}

func (b *UploadBody) ContentType() string {
	return "multipart/form-data; boundary=" + b.boundary
}

// Reader starts encoding the body. The file is copied as the transport
// consumes the returned reader.
func (b *UploadBody) Reader() (io.Reader, error) {
	if !b.consumed.CompareAndSwap(false, true) {
		return nil, ErrBodyConsumed
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(b.write(pw))
	}()

	return pr, nil
}

func (b *UploadBody) write(w io.Writer) error {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(b.boundary); err != nil {
		return err
	}

	part, err := mw.CreateFormFile(FieldFile, b.upload.FileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, b.upload.File); err != nil {
		return err
	}

	if err := mw.WriteField(FieldPolicy, b.upload.Policy); err != nil {
		return err
	}

	if b.upload.Password != "" {
		if err := mw.WriteField(FieldPassword, b.upload.Password); err != nil {
			return err
		}
	}

	return mw.Close()
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/liviudnicoara/attrshare"
	"github.com/liviudnicoara/attrshare/filetransfer"
)

func (c *Client) ListOwnFiles(ctx context.Context) (*FilesEnvelope, error) {
	return attrshare.Get[[]FileInfo](c.re, "/user/userMessage").Do(ctx)
}

func (c *Client) ListAllFiles(ctx context.Context) (*FilesEnvelope, error) {
	return attrshare.Get[[]FileInfo](c.re, "/user/allMessage").Do(ctx)
}

// DeleteFile posts with an empty body and the name as a query parameter.
func (c *Client) DeleteFile(ctx context.Context, fileName string) (*Ack, error) {
	return attrshare.Post[json.RawMessage](c.re, "/user/deleteMessage", nil).
		WithQueryParameters(map[string]string{"fileName": fileName}).
		Do(ctx)
}

// UploadFile sends file as multipart/form-data with the access policy and,
// when password is not empty, a password field. It runs under the upload
// timeout rather than the default one.
func (c *Client) UploadFile(ctx context.Context, file io.Reader, fileName, policy, password string) (*Ack, error) {
	body, err := filetransfer.NewUploadBody(filetransfer.Upload{
		File:     file,
		FileName: fileName,
		Policy:   policy,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	return attrshare.Post[json.RawMessage](c.re, "/user/uploadFile", body).
		WithTimeout(c.transferTimeout).
		Do(ctx)
}

// FetchFile downloads the raw bytes of fileName without saving them. Like
// uploads, it runs under the transfer timeout.
func (c *Client) FetchFile(ctx context.Context, fileName string) ([]byte, error) {
	return c.re.Fetch(ctx, attrshare.Descriptor{
		Method:  http.MethodGet,
		Path:    "/user/downloadFile",
		Query:   map[string]string{"fileName": fileName},
		Timeout: c.transferTimeout,
	})
}

// DownloadFile fetches fileName and saves it under the same name through the
// configured saver. The transient object holding the payload is released
// before DownloadFile returns.
func (c *Client) DownloadFile(ctx context.Context, fileName string) error {
	data, err := c.FetchFile(ctx, fileName)
	if err != nil {
		return err
	}

	return filetransfer.Deliver(ctx, c.objects, c.saver, fileName, data)
}

package filetransfer_test

import (
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/liviudnicoara/attrshare/filetransfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readParts(t *testing.T, body *filetransfer.UploadBody) map[string]string {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(body.ContentType())
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	r, err := body.Reader()
	require.NoError(t, err)

	fields := map[string]string{}
	mr := multipart.NewReader(r, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		data, err := io.ReadAll(part)
		require.NoError(t, err)

		key := part.FormName()
		if part.FileName() != "" {
			key += ":" + part.FileName()
		}
		fields[key] = string(data)
	}
	return fields
}

func Test_UploadBody(t *testing.T) {
	t.Run("WithoutPassword", func(t *testing.T) {
		// arrange
		body, err := filetransfer.NewUploadBody(filetransfer.Upload{
			File:     strings.NewReader("quarterly numbers"),
			FileName: "report.pdf",
			Policy:   "dept:finance",
		})
		require.NoError(t, err)

		// act
		fields := readParts(t, body)

		// assert
		assert.Equal(t, map[string]string{
			"file:report.pdf": "quarterly numbers",
			"policy":          "dept:finance",
		}, fields)
	})

	t.Run("WithPassword", func(t *testing.T) {
		// arrange
		body, err := filetransfer.NewUploadBody(filetransfer.Upload{
			File:     strings.NewReader("x"),
			FileName: "a.txt",
			Policy:   "p",
			Password: "secret",
		})
		require.NoError(t, err)

		// act
		fields := readParts(t, body)

		// assert
		assert.Equal(t, "secret", fields["password"])
		assert.Len(t, fields, 3)
	})

	t.Run("DefaultFileName", func(t *testing.T) {
		body, err := filetransfer.NewUploadBody(filetransfer.Upload{File: strings.NewReader("x")})
		require.NoError(t, err)

		fields := readParts(t, body)

		assert.Contains(t, fields, "file:blob")
	})

	t.Run("ReadOnce", func(t *testing.T) {
		// arrange
		body, err := filetransfer.NewUploadBody(filetransfer.Upload{File: strings.NewReader("x")})
		require.NoError(t, err)
		r, err := body.Reader()
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, r)

		// act
		_, err = body.Reader()

		// assert
		assert.ErrorIs(t, err, filetransfer.ErrBodyConsumed)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := filetransfer.NewUploadBody(filetransfer.Upload{Policy: "p"})

		assert.Error(t, err)
	})
}

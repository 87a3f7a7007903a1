package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/MKhiriev/farmlink/internal/app"
	"github.com/MKhiriev/farmlink/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

const defaultMaxUploadSize = 10 << 20

var defaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
}

type multipartBody struct {
	fileName    string
	contentType string
	data        []byte
	fields      map[string]string
}

func (m *multipartBody) apply(r *resty.Request) {
	r.SetMultipartField(multipartFileField, m.fileName, m.contentType, bytes.NewReader(m.data))
	if len(m.fields) > 0 {
		r.SetMultipartFormData(m.fields)
	}
}

// Upload validates file locally and POSTs it to path as multipart/form-data
// under the "file" field, with fields as extra form values. A file that is
// too large or of a type outside the allow-list fails with the invalid-upload
// kind before any network call. A missing ContentType is detected from the
// content.
//
// The file is read fully into memory so that retries can resend it.
func (d *Dispatcher) Upload(ctx context.Context, path string, file models.UploadFile, fields map[string]string) (*models.Response, error) {
	body, err := d.readUpload(file)
	if err != nil {
		d.logger.Debug().Err(err).Str("file", file.Name).Msg("upload rejected")
		return nil, err
	}
	body.fields = fields

	return d.execute(ctx, call{
		req:       models.Request{Method: http.MethodPost, Path: path},
		requestID: d.requestID(ctx),
		multipart: body,
	})
}

func (d *Dispatcher) readUpload(file models.UploadFile) (*multipartBody, error) {
	maxSize := d.upload.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxUploadSize
	}

	if file.Reader == nil {
		return nil, app.Wrap(app.KindInvalidUpload, app.MsgInvalidUpload, fmt.Errorf("no file content"))
	}
	if file.Size > maxSize {
		return nil, tooLarge(file.Size, maxSize)
	}

	contentType := baseMediaType(file.ContentType)
	if contentType != "" && !d.typeAllowed(contentType) {
		return nil, typeNotAllowed(contentType)
	}

	data, err := io.ReadAll(io.LimitReader(file.Reader, maxSize+1))
	if err != nil {
		return nil, app.Wrap(app.KindInvalidUpload, app.MsgInvalidUpload, fmt.Errorf("read file: %w", err))
	}
	if int64(len(data)) > maxSize {
		return nil, tooLarge(int64(len(data)), maxSize)
	}

	if contentType == "" {
		contentType = baseMediaType(mimetype.Detect(data).String())
		if !d.typeAllowed(contentType) {
			return nil, typeNotAllowed(contentType)
		}
	}

	return &multipartBody{fileName: file.Name, contentType: contentType, data: data}, nil
}

func (d *Dispatcher) typeAllowed(contentType string) bool {
	allowed := d.upload.AllowedTypes
	if len(allowed) == 0 {
		allowed = defaultAllowedTypes
	}
	return slices.ContainsFunc(allowed, func(t string) bool {
		return strings.EqualFold(strings.TrimSpace(t), contentType)
	})
}

func baseMediaType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func tooLarge(size, limit int64) error {
	return app.Wrap(app.KindInvalidUpload, app.MsgFileTooLarge, fmt.Errorf("%d bytes exceeds the %d byte limit", size, limit))
}

func typeNotAllowed(contentType string) error {
	return app.Wrap(app.KindInvalidUpload, app.MsgFileTypeNotAllowed, fmt.Errorf("type %q", contentType))
}

package dispatcher

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/MKhiriev/farmlink/internal/app"
	"github.com/MKhiriev/farmlink/internal/utils"
	"github.com/MKhiriev/farmlink/models"
	"github.com/go-resty/resty/v2"
)

// decode turns a completed round trip into a Response or an *app.Error.
func (d *Dispatcher) decode(resp *resty.Response, c call) (*models.Response, error) {
	status := resp.StatusCode()
	body := resp.Body()

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		err := statusError(status, utils.ErrorMessage(body, status))
		d.logger.Debug().
			Str("request_id", c.requestID).
			Int("status", status).
			Str("kind", string(app.KindOf(err))).
			Msg("request failed")
		return nil, err
	}

	out := &models.Response{
		Status: status,
		Header: resp.Header(),
		Body:   body,
	}
	if len(body) == 0 {
		return out, nil
	}

	if !isJSON(resp.Header().Get(headerContentType)) {
		out.Data = string(body)
		return out, nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, app.Wrap(app.KindRequestFailed, app.MsgUnexpectedResponse, err)
	}
	out.Data = data

	if c.req.Result != nil {
		if err := json.Unmarshal(body, c.req.Result); err != nil {
			return nil, app.Wrap(app.KindRequestFailed, app.MsgUnexpectedResponse, err)
		}
	}
	return out, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

// statusError maps an error status to its kind. msg comes from the response
// body when the backend sent one.
func statusError(status int, msg string) *app.Error {
	kind, fallback := app.KindRequestFailed, app.MsgRequestFailed

	switch {
	case status == http.StatusBadRequest:
		kind, fallback = app.KindBadRequest, app.MsgBadRequest
	case status == http.StatusUnauthorized:
		kind, fallback = app.KindAuthenticationRequired, app.MsgAuthenticationRequired
	case status == http.StatusForbidden:
		kind, fallback = app.KindAuthorizationDenied, app.MsgAuthorizationDenied
	case status == http.StatusNotFound:
		kind, fallback = app.KindNotFound, app.MsgNotFound
	case status == http.StatusConflict:
		kind, fallback = app.KindConflict, app.MsgConflict
	case status == http.StatusTooManyRequests:
		kind, fallback = app.KindRateLimited, app.MsgRateLimited
	case status >= http.StatusInternalServerError:
		kind, fallback = app.KindServerError, app.MsgServerError
	}

	if msg == "" || msg == http.StatusText(status) {
		msg = fallback
	}
	return &app.Error{Kind: kind, Message: msg, Status: status}
}

package server

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"dojo/internal/middleware"
	"dojo/internal/models"
	"dojo/internal/serializer"
	"dojo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns "id" into "ID" and "postId" into "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(prefix) + " ID"
	}
	return param
}

// statusFor maps an AppError code to its HTTP status. Anything else is a 500.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status its code maps to. Server errors are
// logged and their cause kept out of the body.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// currentUserID returns the user id stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// readData decodes the request payload into dest: the JSON document of the
// multipart "data" field for multipart requests, the raw body otherwise.
func readData(c *fiber.Ctx, dest any) error {
	if isMultipart(c) {
		return serializer.DecodeData(c.FormValue(serializer.DataField), dest)
	}
	return serializer.DecodeBody(c.Body(), dest)
}

// formFile opens the multipart file part named field. A request without that
// part yields a nil input. The returned closer must be called once the
// service is done with the file.
func formFile(c *fiber.Ctx, field string) (*service.FileInput, io.Closer, error) {
	if !isMultipart(c) {
		return nil, nopCloser{}, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nopCloser{}, models.NewValidationError("Invalid multipart body")
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nopCloser{}, nil
	}

	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return nil, nopCloser{}, models.NewInternalError(err)
	}
	return &service.FileInput{
		Filename:    fh.Filename,
		ContentType: partContentType(fh),
		Size:        fh.Size,
		Reader:      f,
	}, f, nil
}

func partContentType(fh *multipart.FileHeader) string {
	return fh.Header.Get(fiber.HeaderContentType)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/logger"
	"github.com/orbtao/connectify/backend/pkg/storage"
)

const maxUploadFiles = 10

// ErrorHandler renders every error as {"error": message}. Application errors
// keep their own message; anything else is reported generically.
func ErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	log = log.WithComponent("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Something went wrong"

		var he *echo.HTTPError
		var ae *apperrors.Error
		switch {
		case errors.As(err, &ae):
			status = apperrors.HTTPStatus(err)
			message = ae.Message
		case errors.As(err, &he):
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(he.Code)
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "status", status, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"error": message})
		}
		if err != nil {
			log.Warn("error response not written", "error", err)
		}
	}
}

// success writes {"success": true} merged with fields.
func success(c echo.Context, status int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}

func withPage(fields echo.Map, p actions.Page) echo.Map {
	fields["pagination"] = p
	return fields
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	return nil
}

func pageParam(c echo.Context) int {
	p, _ := strconv.Atoi(c.QueryParam("page"))
	return p
}

func readPart(fh *multipart.FileHeader) (storage.File, error) {
	src, err := fh.Open()
	if err != nil {
		return storage.File{}, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return storage.File{}, err
	}
	return storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

// formFiles reads every upload under field. Requests that are not multipart
// have none.
func formFiles(c echo.Context, field string) ([]storage.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	headers := form.File[field]
	if len(headers) > maxUploadFiles {
		return nil, apperrors.Validation("Too many files")
	}
	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			return nil, apperrors.Validation("Invalid file upload")
		}
		files = append(files, f)
	}
	return files, nil
}

// formFile reads a single optional upload.
func formFile(c echo.Context, field string) (*storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := readPart(fh)
	if err != nil {
		return nil, apperrors.Validation("Invalid file upload")
	}
	return &f, nil
}

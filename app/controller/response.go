package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"garment-studio/customization"
	"garment-studio/models"
	"garment-studio/repository"
	"garment-studio/service"
	"garment-studio/svgcolor"
	"garment-studio/utils"
)

// maxBodyBytes bounds JSON request bodies; inline SVG designs are the largest payloads
const maxBodyBytes = 2 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a JSON body into v and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// writeJSON sets content type and status and encodes v
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("❌ Failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors to HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, customization.ErrSessionNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrDesignNotFound),
		errors.Is(err, service.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, customization.ErrNoPlacement),
		errors.Is(err, customization.ErrNotDragging):
		status = http.StatusConflict
	case errors.Is(err, customization.ErrInvalidTransform),
		errors.Is(err, customization.ErrInvalidSide),
		errors.Is(err, customization.ErrInvalidDesign),
		errors.Is(err, svgcolor.ErrInvalidColor),
		errors.Is(err, utils.ErrUnknownLabel),
		errors.Is(err, service.ErrInvalidThumbnailSize),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrCaptureFailed),
		errors.Is(err, service.ErrCartRejected):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("❌ Request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// sideParam reads a required side from the query string
func sideParam(r *http.Request) (models.Side, error) {
	raw := r.URL.Query().Get("side")
	if raw == "" {
		return "", badRequest("side query parameter is required")
	}
	return parseSide(raw)
}

func parseSide(raw string) (models.Side, error) {
	side, err := models.ParseSide(raw)
	if err != nil {
		return "", badRequest("%v", err)
	}
	return side, nil
}

package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/futig/survey-assistant/internal/entity"
)

// JSON writes data as a JSON body with the given status
func JSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// Error writes the standard error body: the status text plus a human-readable message
func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func Success(w http.ResponseWriter, data any) error {
	return JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) error {
	return JSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Attachment sends file as a download
func Attachment(w http.ResponseWriter, file *entity.ExportedFile) error {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(file.Data)
	return err
}

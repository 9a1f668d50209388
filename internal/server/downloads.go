package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/mmynk/eventsplit/internal/export"
	"github.com/mmynk/eventsplit/internal/settle"
	"github.com/mmynk/eventsplit/internal/storage"
)

// httpStatus maps core errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case settle.IsValidation(err), errors.Is(err, storage.ErrInvalidID), errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, settle.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Download failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

// handleExport serves GET /export/{event}?format=csv|xlsx|pdf.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("event")

	st, err := s.core.Settle(r.Context(), eventID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, filename, contentType, err := s.exporter.Export(r.URL.Query().Get("format"), st)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Write(data)
}

// handleReceipt streams GET /receipts/{event}/{expense}/{name}.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("event")
	name := r.PathValue("name")

	rc, err := s.core.OpenReceipt(r.Context(), eventID, storage.ReceiptRef(r.PathValue("expense"), name))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("Receipt stream interrupted", "event_id", eventID, "name", name, "error", err)
	}
}

func contentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, "settlement"+path.Ext(filename), url.PathEscape(filename))
}

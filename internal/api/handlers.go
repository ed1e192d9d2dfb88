package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/starford/aquatrack/internal/loader"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/render"
	"github.com/starford/aquatrack/internal/viewer"
)

const maxUploadBytes = 16 << 20

// Handler holds the route handlers.
type Handler struct {
	svc  *viewer.Service
	opts Options
}

// NewHandler returns a Handler over svc.
func NewHandler(svc *viewer.Service, opts Options) *Handler {
	return &Handler{svc: svc, opts: opts}
}

func (h *Handler) meta(r *http.Request) render.PageMeta {
	upload := "/api/documents"
	if base := r.URL.Query(); base.Has(viewer.ParamBase) {
		upload += "?" + url.Values{viewer.ParamBase: {base.Get(viewer.ParamBase)}}.Encode()
	}
	return render.PageMeta{Title: h.opts.Title, LiveReload: h.opts.LiveReload && h.opts.Events != nil, UploadURL: upload}
}

// pageLocation is the page that shows the remembered document with the
// same photo base as r.
func pageLocation(r *http.Request) string {
	q := r.URL.Query()
	if !q.Has(viewer.ParamBase) {
		return "/"
	}
	return "/?" + url.Values{viewer.ParamBase: {q.Get(viewer.ParamBase)}}.Encode()
}

// Page handles GET /.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.svc.WritePage(r.Context(), &buf, r.URL, h.meta(r)); err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeCached(w, r, contentTypeHTML, buf.Bytes())
}

// Upload handles POST /api/documents (multipart/form-data, field "file").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("exactly one 'file' is required"))
		return
	}
	header := files[0]
	f, err := header.Open()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("cannot read uploaded file"))
		return
	}
	defer f.Close()
	body, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("cannot read uploaded file"))
		return
	}

	res, err := h.svc.Upload(r.Context(), loader.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	}, r.URL)
	if err != nil {
		status := uploadStatus(err)
		if wantsHTML(r) {
			h.failurePage(w, r, status, res.Status)
			return
		}
		writeJSON(w, status, errorBody(statusMessage(res.Status, err)))
		return
	}

	loc := pageLocation(r)
	if wantsHTML(r) {
		http.Redirect(w, r, loc, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{DocumentResponse: documentResponse(res), Location: loc})
}

func statusMessage(status []models.Status, err error) string {
	if len(status) > 0 {
		return status[len(status)-1].Message
	}
	return err.Error()
}

// failurePage re-renders the current document with the upload error shown.
func (h *Handler) failurePage(w http.ResponseWriter, r *http.Request, code int, status []models.Status) {
	page, _ := url.Parse(pageLocation(r))
	v := h.svc.Render(h.svc.Current(r.Context()), page, h.meta(r), status...)
	var buf bytes.Buffer
	if err := v.Page.Write(&buf); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, code, buf.Bytes())
}

// GetDocument handles GET /api/document.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	body, err := json.Marshal(documentResponse(h.svc.Current(r.Context())))
	if err != nil {
		slog.Error("encode document failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeCached(w, r, contentTypeJSON, append(body, '\n'))
}

// ListDocuments handles GET /api/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, _ *http.Request) {
	docs, err := h.svc.Documents()
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs})
}

// ListLoads handles GET /api/loads.
func (h *Handler) ListLoads(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	loads, err := h.svc.Loads(limit)
	if err != nil {
		slog.Error("list loads failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, LoadListResponse{Loads: loads})
}

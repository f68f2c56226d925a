package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"praktijkkas/internal/importer"
	"praktijkkas/internal/logger"
	"praktijkkas/internal/models"
)

// 10 MB is far beyond any realistic statement export.
const maxUploadBytes = 10 << 20

// parseUpload reads the multipart upload, sniffs the encoding and dialect
// and validates the rows, without touching the store.
func (h *Handler) parseUpload(r *http.Request) (models.ImportResult, string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return models.ImportResult{}, "", nil, fmt.Errorf("parse upload: %w", err)
	}
	kind, err := importer.ParseKind(r.FormValue("kind"))
	if err != nil {
		return models.ImportResult{}, "", nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return models.ImportResult{}, "", nil, fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return models.ImportResult{}, "", nil, fmt.Errorf("read upload: %w", err)
	}

	content, err := importer.Decode(raw)
	if err != nil {
		return models.ImportResult{}, "", nil, err
	}

	declared := ';'
	if d := r.FormValue("delimiter"); d != "" {
		declared = []rune(d)[0]
	}
	rows, err := importer.ParseDelimited(content, declared)
	if err != nil {
		return models.ImportResult{}, "", nil, err
	}

	result, err := importer.ValidateRows(rows, kind, h.maxImportMessages)
	if err != nil {
		return models.ImportResult{}, "", nil, err
	}
	return result, header.Filename, raw, nil
}

// ImportPreview parses an upload and returns the summary and normalized
// records without persisting anything.
func (h *Handler) ImportPreview(w http.ResponseWriter, r *http.Request) {
	result, _, _, err := h.parseUpload(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ImportExecute parses an upload, persists the valid records and keeps the
// raw file for audit.
func (h *Handler) ImportExecute(w http.ResponseWriter, r *http.Request) {
	result, filename, raw, err := h.parseUpload(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	l := logger.FromContext(r.Context())

	stored, err := h.files.Save(filename, bytes.NewReader(raw))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	for _, e := range result.Entries {
		if _, err := h.db.CreateLedgerEntry(e); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	for _, m := range result.Movements {
		if _, err := h.db.CreateBankMovement(m); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	l.Info("import_executed",
		"file", stored,
		"total", result.Summary.Total,
		"valid", result.Summary.Valid,
		"invalid", result.Summary.Invalid,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":     result.Summary,
		"stored_file": stored,
	})
}

// ImportPaste ingests spreadsheet-pasted reference lists. The target
// decides the expected line shape; a successful paste replaces the whole
// list.
func (h *Handler) ImportPaste(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target string `json:"target"`
		Text   string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}

	switch req.Target {
	case "insurer-terms":
		terms, summary := importer.ParseInsurerTermPaste(req.Text, h.maxImportMessages)
		if err := h.db.ReplaceInsurerTerms(terms); err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"summary": summary, "terms": terms})
	case "creditors":
		creditors, summary := importer.ParseCreditorPaste(req.Text, h.maxImportMessages)
		if err := h.db.ReplaceCreditors(creditors); err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"summary": summary, "creditors": creditors})
	default:
		h.badRequest(w, "target must be insurer-terms or creditors")
	}
}

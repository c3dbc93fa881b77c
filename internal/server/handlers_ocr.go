package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kwame/agrimarket/internal/export"
	"github.com/kwame/agrimarket/internal/importer"
	"github.com/kwame/agrimarket/internal/llm"
	"github.com/kwame/agrimarket/internal/types"
)

// handleExtractDocument runs OCR extraction over an uploaded document and
// holds the result for CSV export. The attempt is logged to import history
// either way; when the collaborator's response cannot be parsed, the
// response carries the raw model text in place of structured records.
func (s *Server) handleExtractDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(importer.MaxFileSize); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "A 'file' form field is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if err := llm.CheckDocument(header.Filename, mimeType, header.Size); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, importer.MaxFileSize+1))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read upload: "+err.Error())
		return
	}

	records, extractErr := s.extractor.ExtractRecords(r.Context(), mimeType, data)
	var rawText string
	if extractErr != nil {
		if r.Context().Err() != nil {
			return
		}
		s.logf("document extraction failed: %v", extractErr)
		records = nil
		var parseFailure *llm.ExtractionParseFailure
		if errors.As(extractErr, &parseFailure) {
			rawText = parseFailure.RawText
		}
	}

	entry := types.ImportHistoryEntry{
		FileName:    header.Filename,
		Kind:        "ocr",
		Status:      "success",
		RecordCount: len(records),
		CreatedAt:   time.Now().UTC(),
	}
	if s.db != nil {
		if err := s.db.LogImport(r.Context(), entry); err != nil {
			s.logf("failed to log extraction history: %v", err)
		}
	}

	s.importMu.Lock()
	s.lastExtracted = records
	s.importMu.Unlock()

	resp := map[string]any{
		"records": records,
		"count":   len(records),
	}
	if rawText != "" {
		resp["raw_text"] = rawText
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleExportExtractedCSV downloads the latest extraction batch as CSV
func (s *Server) handleExportExtractedCSV(w http.ResponseWriter, r *http.Request) {
	s.importMu.Lock()
	records := s.lastExtracted
	s.importMu.Unlock()

	if records == nil {
		s.errorResponse(w, http.StatusNotFound, "No extracted records to export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="extracted_farmers.csv"`)
	if err := export.WriteRecords(w, records); err != nil {
		s.logf("csv export failed: %v", err)
	}
}

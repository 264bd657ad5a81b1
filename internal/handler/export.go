package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/propnest/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"kind", "id", "name", "email", "phone", "budget", "property_id", "message", "created_at",
}

// LeadExportRow is the JSON shape of one exported lead.
type LeadExportRow struct {
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Budget     string    `json:"budget,omitempty"`
	PropertyID string    `json:"property_id,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExportLeads handles GET /api/admin/export/leads.
// It returns every quote and contact as a flat table, newest first.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportLeads(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !queryParam(w, r, "format", &format) {
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, exportRowToResponse))
}

// writeCSV encodes rows as an attachment.
func writeCSV(w http.ResponseWriter, rows []domain.LeadExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func exportRowToResponse(r domain.LeadExportRow) LeadExportRow {
	return LeadExportRow{
		Kind:       string(r.Kind),
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Budget:     r.Budget,
		PropertyID: r.PropertyID,
		Message:    r.Message,
		CreatedAt:  r.CreatedAt,
	}
}

// exportRowToCSVRecord flattens a row in csvHeaders order.
func exportRowToCSVRecord(r domain.LeadExportRow) []string {
	return []string{
		string(r.Kind),
		r.ID,
		r.Name,
		r.Email,
		r.Phone,
		r.Budget,
		r.PropertyID,
		r.Message,
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

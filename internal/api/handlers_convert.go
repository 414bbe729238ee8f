package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/docx2dita/internal/convert"
	"github.com/dgallion1/docx2dita/internal/dita"
	"github.com/dgallion1/docx2dita/internal/pipeline"
	"github.com/dgallion1/docx2dita/internal/report"
	"github.com/dgallion1/docx2dita/internal/styles"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts, err := s.conversionOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(uuid.NewString(), filename, data, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/convert/%s/status", job.ID),
	})
}

// conversionOptions merges request form values over the settings-file
// defaults. Any form value for a concern replaces that concern's default
// wholesale.
func (s *Server) conversionOptions(r *http.Request) (convert.Options, error) {
	opts := convert.Options{
		ExcludedStyles: s.settings.ExcludedStyles,
		ColorRules:     s.settings.Colors,
		Metadata: dita.Metadata{
			Title:          s.settings.Metadata.Title,
			Code:           s.settings.Metadata.Code,
			Reference:      s.settings.Metadata.Reference,
			RevisionDate:   s.settings.Metadata.RevisionDate,
			RevisionNumber: s.settings.Metadata.RevisionNumber,
		},
	}
	if len(s.settings.StyleOverrides) > 0 {
		opts.StyleOverrides = make(map[string]int, len(s.settings.StyleOverrides))
		for k, v := range s.settings.StyleOverrides {
			opts.StyleOverrides[k] = v
		}
	}

	if v := r.FormValue("title"); v != "" {
		opts.Metadata.Title = v
	}
	if v := r.FormValue("code"); v != "" {
		opts.Metadata.Code = v
	}
	if v := r.FormValue("reference"); v != "" {
		opts.Metadata.Reference = v
	}
	if v := r.FormValue("revision_date"); v != "" {
		opts.Metadata.RevisionDate = v
	}
	if v := r.FormValue("revision_number"); v != "" {
		opts.Metadata.RevisionNumber = v
	}

	if excludes := r.Form["exclude_style"]; len(excludes) > 0 {
		opts.ExcludedStyles = excludes
	}
	for _, ov := range r.Form["style_override"] {
		name, levelStr, ok := strings.Cut(ov, "=")
		if !ok {
			return opts, fmt.Errorf("style_override %q: want name=level", ov)
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 1 || level > styles.MaxDepth {
			return opts, fmt.Errorf("style_override %q: level must be 1..%d", ov, styles.MaxDepth)
		}
		if opts.StyleOverrides == nil {
			opts.StyleOverrides = make(map[string]int)
		}
		opts.StyleOverrides[name] = level
	}

	return opts, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleGetStyles(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.finishedConversion(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conv.Snapshot())
}

func (s *Server) handleUpdateStyles(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	var req struct {
		ExcludedStyles []string `json:"excluded_styles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := job.UpdateExclusions(req.ExcludedStyles); err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}

	conv := job.Conversion()
	res, _ := conv.Output()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": job.ID,
		"topics": len(res.Topics),
		"styles": conv.Snapshot(),
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	zipBytes := job.ArchiveBytes()
	if zipBytes == nil {
		jsonError(w, "conversion not finished", http.StatusConflict)
		return
	}

	base := strings.TrimSuffix(job.Filename, filepath.Ext(job.Filename))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".zip"))
	w.Write(zipBytes)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.finishedConversion(w, r)
	if !ok {
		return
	}
	html, err := report.HTML(conv.Report())
	if err != nil {
		jsonError(w, "render report: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) finishedConversion(w http.ResponseWriter, r *http.Request) (*convert.Conversion, bool) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, false
	}
	conv := job.Conversion()
	if conv == nil {
		jsonError(w, "conversion not finished", http.StatusConflict)
		return nil, false
	}
	return conv, true
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

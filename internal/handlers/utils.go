package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/akolanti/ragchain/internal/adapter"
	"github.com/akolanti/ragchain/internal/adapter/utils"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

var logUtil = logger_i.NewLogger("handlers")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logUtil.Error("Error encoding response", "error", err)
	}
}

func (h *JobHandler) validateContext(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		h.logRH.Warn("context error", "error", err, "traceId", traceId(ctx))
		return false
	}
	return true
}

func traceId(ctx context.Context) string {
	id, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return id
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func (h *JobHandler) processNewJobData(w http.ResponseWriter, request *http.Request, newJob newJobData) {
	newJob.id = utils.NewID()
	newJob.traceId = traceId(request.Context())

	if !newJob.isDocumentIngest && newJob.chatId == "" {
		newJob.chatId = utils.NewID()
		newJob.isNewChat = true
		h.logRH.Debug("New Chat request", "chatID", newJob.chatId)
	}

	if err := h.CreateNewJob(request.Context(), newJob); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, newJob.id, "Could not create job")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, newJob.chatId))
}

// allowedSource accepts http(s) URLs and paths that resolve inside the
// upload directory.
func (h *JobHandler) allowedSource(source string) bool {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return true
	}
	dir, err := filepath.Abs(h.uploadDir)
	if err != nil {
		return false
	}
	path, err := filepath.Abs(source)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

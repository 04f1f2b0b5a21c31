package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/ragchain/internal/adapter"
	"github.com/akolanti/ragchain/internal/adapter/utils"
	"github.com/akolanti/ragchain/internal/api"
)

type newJobData struct {
	id               string
	chatId           string
	message          string
	isNewChat        bool
	traceId          string
	isDocumentIngest bool
	documentName     string
	documentSource   string
}

const maxUploadSize = 32 << 20 //32mb

func (h *JobHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ChatHandler queues a conversational RAG turn. An empty chat_id starts a
// new chat; an unknown one is rejected.
func (h *JobHandler) ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !h.validateContext(request.Context()) {
		h.logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer request.Body.Close()
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !h.ValidateChatRequest(request.Context(), requestData) {
		h.logRH.Warn("Bad Chat Request", "error", err, "chatId", requestData.ChatID)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}

	h.processNewJobData(w, request, newJobData{
		chatId:  requestData.ChatID,
		message: requestData.Message,
	})
}

func (h *JobHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r.Context()) {
		return
	}
	idString := utils.URLParam(r, "id")
	if !utils.IsJobID(idString) {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	result, isFound := h.GetJobStatus(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler queues an ingestion job. A JSON body names a URL or a
// file already in the upload directory; a multipart form uploads the file
// itself under "document".
func (h *JobHandler) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r.Context()) {
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.ingestUpload(w, r)
		return
	}

	var req api.IngestDocumentRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Source) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "source is required")
		return
	}
	if !h.allowedSource(req.Source) {
		h.logRH.Warn("Rejected ingest source", "source", req.Source, "traceId", traceId(r.Context()))
		WriteErrorResponse(w, http.StatusBadRequest, req.DocumentName, "source must be an http(s) URL or a file in the upload directory")
		return
	}
	h.processNewJobData(w, r, newJobData{
		isDocumentIngest: true,
		documentName:     req.DocumentName,
		documentSource:   req.Source,
	})
}

func (h *JobHandler) ingestUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")
	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if err := os.MkdirAll(h.uploadDir, 0750); err != nil {
		h.logRH.Error("Couldn't create upload directory", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
	tempFilePath := filepath.Join(h.uploadDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}
	if docName == "" {
		docName = fileMetadata.Filename
	}

	h.processNewJobData(w, r, newJobData{
		isDocumentIngest: true,
		documentName:     docName,
		documentSource:   tempFilePath,
	})
}

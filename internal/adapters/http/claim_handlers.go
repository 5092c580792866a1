package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kirillkom/claimsense/internal/core/domain"
	"github.com/kirillkom/claimsense/internal/core/usecase"
)

func (rt *Router) handleExtract(w http.ResponseWriter, r *http.Request, session domain.Session) {
	maxUpload := rt.cfg.ExtractionMaxUploadBytes
	if maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload+multipartOverhead)
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, payloadTooLarge(maxUpload))
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if maxUpload > 0 && header.Size > maxUpload {
		respondError(w, r, payloadTooLarge(maxUpload))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !usecase.IsImageUpload(header.Filename, contentType) {
		writeError(w, r, http.StatusBadRequest, "please upload an image of the hospital bill")
		return
	}

	assessment, err := rt.claims.ProcessDocument(r.Context(), session, header.Filename, contentType, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordVerification(string(assessment.Verification.Stage))
		if assessment.Decision != nil {
			rt.metrics.RecordDecision(string(assessment.Decision.RiskTier), assessment.Decision.Eligible)
		}
	}
	writeJSON(w, http.StatusOK, assessment)
}

func payloadTooLarge(limit int64) error {
	return &domain.ExtractionError{
		Failure:    domain.ExtractionFailurePayloadTooLarge,
		StatusCode: http.StatusRequestEntityTooLarge,
		Detail:     fmt.Sprintf("upload exceeds %d bytes", limit),
		Err:        domain.ErrPayloadTooLarge,
	}
}

type verifyIdentityRequest struct {
	NationalID string `json:"nationalId"`
}

func (rt *Router) handleVerifyIdentity(w http.ResponseWriter, r *http.Request, session domain.Session) {
	var req verifyIdentityRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	check, err := rt.claims.VerifyNationalID(r.Context(), session, req.NationalID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (rt *Router) handleEvaluate(w http.ResponseWriter, r *http.Request, session domain.Session) {
	var submission domain.ClaimSubmission
	if err := decodeJSONBody(w, r, &submission); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	decision, err := rt.claims.Evaluate(r.Context(), session, submission)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDecision(string(decision.RiskTier), decision.Eligible)
	}
	writeJSON(w, http.StatusOK, decision)
}

func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request, session domain.Session) {
	var submission domain.ClaimSubmission
	if err := decodeJSONBody(w, r, &submission); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	entry, err := rt.claims.Submit(r.Context(), session, submission)
	if rt.metrics != nil && !domain.IsKind(err, domain.ErrNotFound) {
		rt.metrics.RecordLedgerAppend(err)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type claimListResponse struct {
	Claims []domain.ClaimLedgerEntry `json:"claims"`
}

func (rt *Router) handleListClaims(w http.ResponseWriter, r *http.Request, session domain.Session) {
	claims, err := rt.claims.ListClaims(r.Context(), session)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if claims == nil {
		claims = []domain.ClaimLedgerEntry{}
	}
	writeJSON(w, http.StatusOK, claimListResponse{Claims: claims})
}

func (rt *Router) handleExportClaims(w http.ResponseWriter, r *http.Request, session domain.Session) {
	if rt.exporter == nil {
		writeError(w, r, http.StatusNotFound, "export is not enabled")
		return
	}
	claims, err := rt.claims.ListClaims(r.Context(), session)
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, err := rt.exporter.Export(claims)
	if err != nil {
		respondError(w, r, err)
		return
	}

	filename := "claims-" + session.Profile.MobileNumber + ".xlsx"
	w.Header().Set("Content-Type", rt.exporter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

package bookings

import (
	"net/http"

	"github.com/sahyadri-motors/dealerdesk/api/responses"
	"github.com/sahyadri-motors/dealerdesk/api/validators"
	"github.com/sahyadri-motors/dealerdesk/internal/documents"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
)

type claimDocumentsRequest struct {
	Documents []claimDocumentRequest `json:"documents" validate:"required,min=1,max=6,dive"`
}

type claimDocumentRequest struct {
	FileName    string `json:"file_name" validate:"required,min=1,max=128"`
	ContentType string `json:"content_type" validate:"required"`
}

// ClaimDocuments issues signed upload URLs for claim evidence files.
func ClaimDocuments(uploader documents.ClaimUploader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uploader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claim uploader unavailable"))
			return
		}

		bookingID, err := parseBookingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload claimDocumentsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requests := make([]documents.ClaimUploadRequest, 0, len(payload.Documents))
		for _, doc := range payload.Documents {
			requests = append(requests, documents.ClaimUploadRequest{
				FileName:    doc.FileName,
				ContentType: doc.ContentType,
			})
		}

		urls, err := uploader.PresignClaimDocuments(r.Context(), bookingID, requests)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, urls)
	}
}

// DocumentStatuses reports KYC, finance letter, and insurance status for a
// booking.
func DocumentStatuses(lookup documents.StatusLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lookup == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "status lookup unavailable"))
			return
		}

		bookingID, err := parseBookingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		statuses, err := lookup.Statuses(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, statuses)
	}
}

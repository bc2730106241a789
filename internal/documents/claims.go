package documents

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

// urlSigner is the slice of the storage client claim uploads need.
type urlSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	DefaultBucket() string
}

// ClaimUploadRequest names one attachment the caller wants to upload.
type ClaimUploadRequest struct {
	FileName    string `json:"file_name" validate:"required,min=1,max=128"`
	ContentType string `json:"content_type" validate:"required"`
}

// ClaimUploadURL pairs the object path stored on the claim with the signed
// URL the client uploads against.
type ClaimUploadURL struct {
	ObjectPath string    `json:"object_path"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ClaimUploader issues signed upload URLs for claim attachments.
type ClaimUploader interface {
	PresignClaimDocuments(ctx context.Context, bookingID uuid.UUID, requests []ClaimUploadRequest) ([]ClaimUploadURL, error)
}

type claimUploader struct {
	signer urlSigner
	expiry time.Duration
}

// NewClaimUploader builds the claim attachment presigner.
func NewClaimUploader(signer urlSigner, expiry time.Duration) (ClaimUploader, error) {
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &claimUploader{signer: signer, expiry: expiry}, nil
}

var allowedClaimContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

func (u *claimUploader) PresignClaimDocuments(ctx context.Context, bookingID uuid.UUID, requests []ClaimUploadRequest) ([]ClaimUploadURL, error) {
	if len(requests) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one document is required")
	}
	if len(requests) > types.MaxClaimDocuments {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("a claim carries at most %d documents", types.MaxClaimDocuments))
	}

	urls := make([]ClaimUploadURL, 0, len(requests))
	now := time.Now()
	for _, req := range requests {
		ext, ok := allowedClaimContentTypes[strings.ToLower(strings.TrimSpace(req.ContentType))]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unsupported content type %q", req.ContentType))
		}

		object := path.Join("claims", bookingID.String(), uuid.NewString()+ext)
		signed, err := u.signer.SignedURL(u.signer.DefaultBucket(), object, req.ContentType, u.expiry)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
		}
		urls = append(urls, ClaimUploadURL{
			ObjectPath: object,
			UploadURL:  signed,
			ExpiresAt:  now.Add(u.expiry),
		})
	}
	return urls, nil
}

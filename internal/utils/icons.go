package utils

import (
	"merithub/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// IconResolver turns the catalog's badge icon public ids into delivery
// URLs. Badge art is uploaded to Cloudinary by the design pipeline; this
// service only resolves, never uploads.
type IconResolver struct {
	client *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewIconResolver creates an icon resolver. Missing credentials are not
// an error: Resolve then returns the raw public id and clients fall back
// to bundled art.
func NewIconResolver(cfg *config.CloudinaryConfig, logger *zap.Logger) *IconResolver {
	r := &IconResolver{logger: logger}
	if cfg.CloudName == "" {
		logger.Info("Cloudinary not configured, badge icons resolve to public ids")
		return r
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		logger.Warn("Cloudinary initialization failed, badge icons resolve to public ids",
			zap.Error(err))
		return r
	}
	r.client = cld
	return r
}

// Resolve maps a badge icon public id to its delivery URL.
func (r *IconResolver) Resolve(publicID string) string {
	if r.client == nil || publicID == "" {
		return publicID
	}
	asset, err := r.client.Image(publicID)
	if err != nil {
		r.logger.Debug("Failed to build icon asset", zap.String("public_id", publicID), zap.Error(err))
		return publicID
	}
	url, err := asset.String()
	if err != nil {
		r.logger.Debug("Failed to resolve icon URL", zap.String("public_id", publicID), zap.Error(err))
		return publicID
	}
	return url
}

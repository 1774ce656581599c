// Package cloudinary stores assignment files in Cloudinary.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Storage keeps submission, feedback and staging files as raw Cloudinary assets.
type Storage struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary backed Storage.
func New(cfg Config, logger zerolog.Logger) (*Storage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Storage{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores the file under name and returns its secure URL. Names are unique
// per file area and item, so uploading the same name again replaces the asset.
func (s *Storage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	folder, publicID := Location(s.folder, name)

	result, err := s.client.Upload.Upload(ctx, reader, uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		ResourceType:   "raw",
		Overwrite:      api.Bool(true),
		UniqueFilename: api.Bool(false),
		Tags:           []string{"assign"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload %s: %s", name, result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")
	return result.SecureURL, nil
}

// Location splits a storage name of the form <context>-<area>-<item>-<file>
// into the folder of its area and a public id. Raw assets keep their extension
// in the public id.
func Location(base, name string) (string, string) {
	parts := strings.SplitN(name, "-", 4)
	if len(parts) < 4 {
		return base, sanitize(name)
	}
	folder := path.Join(base, parts[1], parts[0])
	return folder, sanitize(parts[2] + "-" + parts[3])
}

func sanitize(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	out = strings.Trim(out, "-.")
	if out == "" {
		return "upload"
	}
	return out
}

package artifact

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"proofline/internal/config"
)

// GoogleStore persists proof documents as Google Docs. Visibility is a fixed
// policy: every document is granted anyone-with-link read access.
type GoogleStore struct {
	docs   *docs.Service
	drive  *drive.Service
	parent string
	logger *logrus.Logger
}

// NewGoogleStore authenticates with the service-account credentials from the
// run configuration. A malformed credential blob is a startup failure, not a
// per-task one.
func NewGoogleStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*GoogleStore, error) {
	jwt, err := google.JWTConfigFromJSON([]byte(cfg.GoogleCredentialsJSON), docs.DocumentsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("artifact: parse service account credentials: %w", err)
	}
	if cfg.Impersonate != "" {
		jwt.Subject = cfg.Impersonate
	}
	client := jwt.Client(ctx)

	docsSvc, err := docs.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("artifact: init docs service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("artifact: init drive service: %w", err)
	}
	return newGoogleStore(docsSvc, driveSvc, cfg.DriveParentFolderID, logger), nil
}

func newGoogleStore(docsSvc *docs.Service, driveSvc *drive.Service, parent string, logger *logrus.Logger) *GoogleStore {
	return &GoogleStore{docs: docsSvc, drive: driveSvc, parent: parent, logger: logger}
}

// Create runs the full creation sequence: new document, text insertion,
// optional move into the configured collection, public-read grant, link.
// Any failing step aborts the whole creation; no handle is returned.
func (s *GoogleStore) Create(ctx context.Context, title, text string) (Doc, error) {
	doc, err := s.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return Doc{}, fmt.Errorf("artifact: create document: %w", err)
	}

	if text != "" {
		update := &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{
				{
					InsertText: &docs.InsertTextRequest{
						Location: &docs.Location{Index: 1},
						Text:     text,
					},
				},
			},
		}
		if _, err := s.docs.Documents.BatchUpdate(doc.DocumentId, update).Context(ctx).Do(); err != nil {
			return Doc{}, fmt.Errorf("artifact: insert text into %s: %w", doc.DocumentId, err)
		}
	}

	if s.parent != "" {
		_, err := s.drive.Files.Update(doc.DocumentId, &drive.File{}).
			AddParents(s.parent).
			Fields("id", "parents").
			Context(ctx).Do()
		if err != nil {
			return Doc{}, fmt.Errorf("artifact: move %s into collection: %w", doc.DocumentId, err)
		}
	}

	permission := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := s.drive.Permissions.Create(doc.DocumentId, permission).Fields("id").Context(ctx).Do(); err != nil {
		return Doc{}, fmt.Errorf("artifact: grant public read on %s: %w", doc.DocumentId, err)
	}

	s.logger.WithField("doc", doc.DocumentId).Debug("proof document created")
	return Doc{
		ID:  doc.DocumentId,
		URL: "https://docs.google.com/document/d/" + doc.DocumentId + "/edit",
	}, nil
}

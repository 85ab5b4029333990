package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/storage"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultURLTTL         = time.Hour
	maxFileNameLength     = 120
)

// Upload is a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type SignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// File is an opened attachment ready to be streamed to a client.
type File struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
	ModTime     time.Time
}

// AttachmentOptions configures AttachmentService.
type AttachmentOptions struct {
	MaxUploadBytes int64
	URLTTL         time.Duration
}

// AttachmentService stores card attachments in the object store and keeps
// their metadata in the database.
type AttachmentService interface {
	UploadAttachment(ctx context.Context, userID, cardID uint, upload Upload) (*AttachmentResponse, error)
	AttachmentURL(ctx context.Context, userID, attachmentID uint) (*SignedURLResponse, error)
	DeleteAttachment(ctx context.Context, userID, attachmentID uint) error
	// OpenSigned resolves a download token from a signed URL.
	OpenSigned(ctx context.Context, token string) (*File, error)
}

type attachmentService struct {
	base
	opts AttachmentOptions
}

func NewAttachmentService(repos *repository.Repositories, store storage.ObjectStore, notifier Notifier, log *zap.Logger, opts AttachmentOptions) AttachmentService {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.URLTTL <= 0 {
		opts.URLTTL = DefaultURLTTL
	}
	svc := &attachmentService{
		base: newBase(repos, notifier, log.Named("attachments")),
		opts: opts,
	}
	svc.store = store
	return svc
}

// safeFileName reduces a client-supplied name to a single path element made
// of characters that are safe in URLs and on every filesystem.
func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		out = "file"
	}
	if len(out) > maxFileNameLength {
		out = out[len(out)-maxFileNameLength:]
	}
	return out
}

func (s *attachmentService) UploadAttachment(ctx context.Context, userID, cardID uint, upload Upload) (*AttachmentResponse, error) {
	card, _, err := s.accessCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if upload.Body == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	displayName := strings.TrimSpace(path.Base(strings.ReplaceAll(upload.FileName, "\\", "/")))
	if displayName == "" || displayName == "." || displayName == "/" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	key := fmt.Sprintf("cards/%d/%s-%s", card.ID, uuid.NewString(), safeFileName(displayName))
	written, err := s.store.Put(ctx, key, io.LimitReader(upload.Body, s.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, s.internal(err, "store attachment", zap.Uint("card_id", cardID))
	}
	if written > s.opts.MaxUploadBytes {
		s.removeObjects(key)
		return nil, fmt.Errorf("%w: file exceeds the %d byte limit", ErrInvalidInput, s.opts.MaxUploadBytes)
	}

	attachment := &domain.Attachment{
		CardID:      card.ID,
		FileName:    displayName,
		FilePath:    key,
		FileSize:    written,
		ContentType: upload.ContentType,
		UploadedBy:  userID,
	}
	if err := s.repos.Attachments.Create(ctx, attachment); err != nil {
		s.removeObjects(key)
		return nil, s.internal(err, "save attachment", zap.Uint("card_id", cardID))
	}

	boardID := card.Column.BoardID
	s.record(ctx, boardID, uintPtr(card.ID), userID, domain.ActionAttachmentAdded, displayName)
	s.publish("attachments", realtime.EventInsert, boardID, attachment.ID, userID)

	resp := toAttachmentResponse(*attachment)
	return &resp, nil
}

func (s *attachmentService) load(ctx context.Context, userID, attachmentID uint) (*domain.Attachment, *domain.Card, error) {
	attachment, err := s.repos.Attachments.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, nil, s.lookup(err, "attachment", attachmentID)
	}
	card, _, err := s.accessCard(ctx, userID, attachment.CardID)
	if err != nil {
		return nil, nil, err
	}
	return attachment, card, nil
}

func (s *attachmentService) AttachmentURL(ctx context.Context, userID, attachmentID uint) (*SignedURLResponse, error) {
	attachment, _, err := s.load(ctx, userID, attachmentID)
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.opts.URLTTL)
	u, err := s.store.SignedURL(attachment.FilePath, s.opts.URLTTL)
	if err != nil {
		return nil, s.internal(err, "sign attachment url", zap.Uint("attachment_id", attachmentID))
	}
	return &SignedURLResponse{URL: u, ExpiresAt: formatTime(expiresAt)}, nil
}

func (s *attachmentService) DeleteAttachment(ctx context.Context, userID, attachmentID uint) error {
	attachment, card, err := s.load(ctx, userID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.repos.Attachments.Delete(ctx, attachmentID); err != nil {
		return s.lookup(err, "attachment", attachmentID)
	}
	s.removeObjects(attachment.FilePath)
	s.publish("attachments", realtime.EventDelete, card.Column.BoardID, attachmentID, userID)
	return nil
}

func (s *attachmentService) OpenSigned(ctx context.Context, token string) (*File, error) {
	key, err := s.store.VerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired download link", ErrUnauthorized)
	}
	attachment, err := s.repos.Attachments.FindByPath(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: file not found", ErrNotFound)
		}
		return nil, s.internal(err, "load attachment", zap.String("key", key))
	}
	body, err := s.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: file not found", ErrNotFound)
		}
		return nil, s.internal(err, "open attachment", zap.String("key", key))
	}
	return &File{
		Body:        body,
		FileName:    attachment.FileName,
		ContentType: attachment.ContentType,
		Size:        attachment.FileSize,
		ModTime:     attachment.CreatedAt,
	}, nil
}

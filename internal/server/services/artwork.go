package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/logging"
	sc "github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/models"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	timeNow = time.Now
)

// ArtworkService hands out presigned object-storage URLs so clients move
// artwork bytes without going through the server.
type ArtworkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewArtworkService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, logger logging.Logger) *ArtworkService {
	return &ArtworkService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      logger.With("module", "artwork"),
	}
}

// ArtworkStorageKey returns a fresh object key under the film's prefix.
func ArtworkStorageKey(filmID string) string {
	return fmt.Sprintf("films/%s/%v", filmID, uuid.New())
}

func (s *ArtworkService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL points the film at a new storage key and returns a presigned
// PUT URL for it.
func (s *ArtworkService) UploadURL(ctx context.Context, filmID string) (*models.ArtworkURL, error) {
	if err := checkID(filmID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Films(s.db)
	if _, err := repo.GetByID(ctx, filmID); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := ArtworkStorageKey(filmID)
	expires := timeNow().Add(s.config.ArtworkURLTTL)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ArtworkURLTTL))
	if err != nil {
		return nil, err
	}

	if err := repo.SetArtworkKey(ctx, filmID, key); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "artwork upload url issued", "film_id", filmID, "key", key)
	return &models.ArtworkURL{FilmID: filmID, Method: http.MethodPut, URL: req.URL, ExpiresAt: expires}, nil
}

// DownloadURL returns a presigned GET URL for the film's artwork.
// common.ErrorNotFound means the film or its artwork is missing.
func (s *ArtworkService) DownloadURL(ctx context.Context, filmID string) (*models.ArtworkURL, error) {
	if err := checkID(filmID); err != nil {
		return nil, err
	}

	film, err := s.repomanager.Films(s.db).GetByID(ctx, filmID)
	if err != nil {
		return nil, err
	}
	if film.ArtworkKey == "" {
		return nil, fmt.Errorf("artwork: %w", common.ErrorNotFound)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := film.ArtworkKey
	expires := timeNow().Add(s.config.ArtworkURLTTL)

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ArtworkURLTTL))
	if err != nil {
		return nil, err
	}

	return &models.ArtworkURL{FilmID: filmID, Method: http.MethodGet, URL: req.URL, ExpiresAt: expires}, nil
}

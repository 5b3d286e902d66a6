package repository

import (
	"errors"

	"site_cms/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Repository groups every store the CMS talks to over one pool.
type Repository struct {
	db *pgxpool.Pool

	Galleries *GalleryRepo
	Images    *GalleryImageRepo

	AboutText         *SingletonRepo[models.AboutText]
	PiedavajumsHeader *SingletonRepo[models.PiedavajumsHeader]

	Partners     *ContentRepo[models.Partner]
	Piedavajumi  *ContentRepo[models.Piedavajums]
	TeamMembers  *ContentRepo[models.TeamMember]
	Testimonials *ContentRepo[models.Testimonial]
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:                db,
		Galleries:         NewGalleryRepo(db),
		Images:            NewGalleryImageRepo(db),
		AboutText:         NewSingletonRepo(db, AboutTextsTable),
		PiedavajumsHeader: NewSingletonRepo(db, PiedavajumiHeadersTable),
		Partners:          NewContentRepo(db, PartnersTable),
		Piedavajumi:       NewContentRepo(db, PiedavajumiTable),
		TeamMembers:       NewContentRepo(db, TeamMembersTable),
		Testimonials:      NewContentRepo(db, TestimonialsTable),
	}
}

func newBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

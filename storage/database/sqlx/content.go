package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/content"
)

type contentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sql.DB, driverName string) content.Repository {
	return &contentRepository{db: sqlx.NewDb(db, driverName)}
}

type (
	contentRow struct {
		CourseID     string         `db:"course_id"`
		Type         string         `db:"type"`
		OwnerID      string         `db:"owner_id"`
		IsPublic     bool           `db:"is_public"`
		Version      int            `db:"version"`
		SessionURL   sql.NullString `db:"session_url"`
		EmbedURL     sql.NullString `db:"embed_url"`
		ScheduledAt  sql.NullTime   `db:"scheduled_at"`
		PasscodeHash []byte         `db:"passcode_hash"`
		CreatedAt    time.Time      `db:"created_at"`
		UpdatedAt    time.Time      `db:"updated_at"`
	}

	chapterRow struct {
		ID            string         `db:"id"`
		CourseID      string         `db:"course_id"`
		Title         string         `db:"title"`
		Description   string         `db:"description"`
		Order         int            `db:"chapter_order"`
		IsLocked      bool           `db:"is_locked"`
		VideoURL      sql.NullString `db:"video_url"`
		VideoFilename sql.NullString `db:"video_filename"`
		VideoSize     sql.NullInt64  `db:"video_size"`
		VideoType     sql.NullString `db:"video_type"`
	}
)

func toContentRow(rec content.ContentRecord) contentRow {
	row := contentRow{
		CourseID:  rec.CourseID,
		Type:      string(rec.Type),
		OwnerID:   rec.OwnerID,
		IsPublic:  rec.IsPublic,
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Live != nil {
		row.SessionURL = sql.NullString{String: rec.Live.SessionURL, Valid: true}
		row.EmbedURL = sql.NullString{String: rec.Live.EmbedURL, Valid: true}
		row.ScheduledAt = sql.NullTime{Time: rec.Live.ScheduledAt, Valid: true}
		row.PasscodeHash = rec.Live.PasscodeHash
	}
	return row
}

func (row contentRow) toRecord() content.ContentRecord {
	rec := content.ContentRecord{
		CourseID:  row.CourseID,
		Type:      content.Type(row.Type),
		OwnerID:   row.OwnerID,
		IsPublic:  row.IsPublic,
		Version:   row.Version,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if rec.Type == content.TypeLive {
		rec.Live = &content.LiveSession{
			SessionURL:   row.SessionURL.String,
			EmbedURL:     row.EmbedURL.String,
			ScheduledAt:  row.ScheduledAt.Time.UTC(),
			PasscodeHash: row.PasscodeHash,
		}
	}
	return rec
}

func toChapterRow(courseID string, ch content.Chapter) chapterRow {
	row := chapterRow{
		ID:          ch.ID,
		CourseID:    courseID,
		Title:       ch.Title,
		Description: ch.Description,
		Order:       ch.Order,
		IsLocked:    ch.IsLocked,
	}
	if ch.Video != nil {
		row.VideoURL = sql.NullString{String: ch.Video.URL, Valid: true}
		row.VideoFilename = sql.NullString{String: ch.Video.Filename, Valid: true}
		row.VideoSize = sql.NullInt64{Int64: ch.Video.Size, Valid: true}
		row.VideoType = sql.NullString{String: ch.Video.ContentType, Valid: true}
	}
	return row
}

func (row chapterRow) toChapter() content.Chapter {
	ch := content.Chapter{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Order:       row.Order,
		IsLocked:    row.IsLocked,
	}
	if row.VideoURL.Valid {
		ch.Video = &content.VideoRef{
			URL:         row.VideoURL.String,
			Filename:    row.VideoFilename.String,
			Size:        row.VideoSize.Int64,
			ContentType: row.VideoType.String,
		}
	}
	return ch
}

func (repo *contentRepository) CreateContent(ctx context.Context, rec content.ContentRecord) (content.ContentRecord, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err = tx.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM content WHERE course_id = $1)", rec.CourseID); err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "checking content")
	}
	if exists {
		return content.ContentRecord{}, content.ErrContentExists
	}

	rec.Version = 1
	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO content (course_id, type, owner_id, is_public, version,
			session_url, embed_url, scheduled_at, passcode_hash, created_at, updated_at)
		VALUES (:course_id, :type, :owner_id, :is_public, :version,
			:session_url, :embed_url, :scheduled_at, :passcode_hash, :created_at, :updated_at)`,
		toContentRow(rec)); err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "inserting content")
	}

	if err = insertChapters(ctx, tx, rec); err != nil {
		return content.ContentRecord{}, err
	}
	if err = tx.Commit(); err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "committing tx")
	}
	return rec, nil
}

func (repo *contentRepository) GetContent(ctx context.Context, courseID string) (content.ContentRecord, error) {
	var row contentRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM content WHERE course_id = $1", courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return content.ContentRecord{}, content.ErrNotFound
		}
		return content.ContentRecord{}, errors.Wrap(err, "getting content")
	}

	rec := row.toRecord()
	if rec.Type == content.TypeRecorded {
		if rec.Chapters, err = repo.queryChapters(ctx, courseID); err != nil {
			return content.ContentRecord{}, err
		}
	}
	return rec, nil
}

func (repo *contentRepository) QueryAllContent(ctx context.Context) ([]content.ContentRecord, error) {
	var rows []contentRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM content ORDER BY course_id"); err != nil {
		return nil, errors.Wrap(err, "querying content")
	}

	recs := make([]content.ContentRecord, 0, len(rows))
	for _, row := range rows {
		rec := row.toRecord()
		if rec.Type == content.TypeRecorded {
			var err error
			if rec.Chapters, err = repo.queryChapters(ctx, row.CourseID); err != nil {
				return nil, err
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (repo *contentRepository) UpdateContent(ctx context.Context, rec content.ContentRecord) (content.ContentRecord, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExecContext(ctx, `
		UPDATE content
		SET type = :type, owner_id = :owner_id, is_public = :is_public, version = version + 1,
			session_url = :session_url, embed_url = :embed_url, scheduled_at = :scheduled_at,
			passcode_hash = :passcode_hash, updated_at = :updated_at
		WHERE course_id = :course_id AND version = :version`,
		toContentRow(rec))
	if err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "updating content")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "updating content")
	}
	if n == 0 {
		var exists bool
		if err = tx.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM content WHERE course_id = $1)", rec.CourseID); err != nil {
			return content.ContentRecord{}, errors.Wrap(err, "checking content")
		}
		if exists {
			return content.ContentRecord{}, content.ErrStaleVersion
		}
		return content.ContentRecord{}, content.ErrNotFound
	}

	// chapters are few per course; rewriting them beats diffing them
	if _, err = tx.ExecContext(ctx, "DELETE FROM chapter WHERE course_id = $1", rec.CourseID); err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "clearing chapters")
	}
	if err = insertChapters(ctx, tx, rec); err != nil {
		return content.ContentRecord{}, err
	}
	if err = tx.Commit(); err != nil {
		return content.ContentRecord{}, errors.Wrap(err, "committing tx")
	}

	rec.Version++
	return rec, nil
}

func (repo *contentRepository) DeleteContentByCourseID(ctx context.Context, courseIDs ...string) error {
	if len(courseIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM content WHERE course_id IN (?)", courseIDs)
	if err != nil {
		return errors.Wrap(err, "deleting content")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting content")
	}
	return nil
}

func (repo *contentRepository) queryChapters(ctx context.Context, courseID string) ([]content.Chapter, error) {
	var rows []chapterRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM chapter WHERE course_id = $1 ORDER BY chapter_order", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying chapters")
	}
	chapters := make([]content.Chapter, 0, len(rows))
	for _, row := range rows {
		chapters = append(chapters, row.toChapter())
	}
	return chapters, nil
}

func insertChapters(ctx context.Context, tx *sqlx.Tx, rec content.ContentRecord) error {
	for _, ch := range rec.Chapters {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO chapter (id, course_id, title, description, chapter_order, is_locked,
				video_url, video_filename, video_size, video_type)
			VALUES (:id, :course_id, :title, :description, :chapter_order, :is_locked,
				:video_url, :video_filename, :video_size, :video_type)`,
			toChapterRow(rec.CourseID, ch)); err != nil {
			return errors.Wrap(err, "inserting chapter")
		}
	}
	return nil
}

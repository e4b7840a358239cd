package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

const leadColumns = `id, username, instagram_id, full_name, profile_url, profile_pic_url, is_verified, bio,
	followers_count, following_count, status, date_added, last_updated, notes, tags,
	messages_sent, last_message_at`

// Status is always written as a literal: ingestion never chooses the initial stage.
const insertLeadQuery = `
	INSERT INTO instagram_leads (
		username, instagram_id, full_name, profile_url, profile_pic_url,
		is_verified, bio, followers_count, following_count, tags, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'warm_lead')
	RETURNING id, status, date_added, last_updated, messages_sent
`

const (
	listLeadsNewestFirst = `SELECT ` + leadColumns + `
		FROM instagram_leads
		WHERE ($1::text IS NULL OR status = $1::text)
		ORDER BY date_added DESC, id DESC
		LIMIT $2`

	listLeadsOldestFirst = `SELECT ` + leadColumns + `
		FROM instagram_leads
		WHERE ($1::text IS NULL OR status = $1::text)
		ORDER BY date_added ASC, id ASC
		LIMIT $2`
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner, extra ...any) (*entity.Lead, error) {
	var (
		lead                                        entity.Lead
		instagramID, fullName, profileURL, pic, bio sql.NullString
		notes, tags                                 sql.NullString
		lastMessageAt                               sql.NullTime
	)

	dest := append(extra,
		&lead.ID,
		&lead.Username,
		&instagramID,
		&fullName,
		&profileURL,
		&pic,
		&lead.IsVerified,
		&bio,
		&lead.Followers,
		&lead.Following,
		&lead.Status,
		&lead.DateAdded,
		&lead.LastUpdated,
		&notes,
		&tags,
		&lead.MessagesSent,
		&lastMessageAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	lead.InstagramID = instagramID.String
	lead.FullName = fullName.String
	lead.ProfileURL = profileURL.String
	lead.ProfilePicURL = pic.String
	lead.Bio = bio.String
	lead.Tags = entity.ParseTags(tags.String)
	if notes.Valid {
		n := notes.String
		lead.Notes = &n
	}
	if lastMessageAt.Valid {
		t := lastMessageAt.Time
		lead.LastMessageAt = &t
	}
	return &lead, nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query := listLeadsNewestFirst
	if filter.Order == entity.SortOldestFirst {
		query = listLeadsOldestFirst
	}

	var status sql.NullString
	if filter.Status != nil {
		status = sql.NullString{String: string(*filter.Status), Valid: true}
	}
	var limit sql.NullInt64
	if filter.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(filter.Limit), Valid: true}
	}

	rows, err := r.DB.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, eris.Wrap(err, "lead repository: list")
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "lead repository: scan lead")
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "lead repository: list rows")
	}
	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM instagram_leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "lead repository: find %d", id)
	}
	return lead, nil
}

func (r *LeadRepository) NextWarm(ctx context.Context) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + `
		FROM instagram_leads
		WHERE status = 'warm_lead'
		ORDER BY date_added ASC, id ASC
		LIMIT 1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "lead repository: next warm lead")
	}
	return lead, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertLead(ctx context.Context, q queryRower, lead *entity.Lead) error {
	return q.QueryRowContext(
		ctx,
		insertLeadQuery,
		lead.Username,
		nullString(lead.InstagramID),
		nullString(lead.FullName),
		nullString(lead.ProfileURL),
		nullString(lead.ProfilePicURL),
		lead.IsVerified,
		nullString(lead.Bio),
		lead.Followers,
		lead.Following,
		nullString(entity.JoinTags(lead.Tags)),
	).Scan(
		&lead.ID,
		&lead.Status,
		&lead.DateAdded,
		&lead.LastUpdated,
		&lead.MessagesSent,
	)
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if err := insertLead(ctx, r.DB, lead); err != nil {
		return eris.Wrapf(err, "lead repository: create %q", lead.Username)
	}
	if lead.Tags == nil {
		lead.Tags = []string{}
	}
	return nil
}

// CreateBatch inserts every lead or none of them.
func (r *LeadRepository) CreateBatch(ctx context.Context, leads []*entity.Lead) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "lead repository: begin batch")
	}
	defer tx.Rollback()

	for _, lead := range leads {
		if err := insertLead(ctx, tx, lead); err != nil {
			return eris.Wrapf(err, "lead repository: batch create %q", lead.Username)
		}
		if lead.Tags == nil {
			lead.Tags = []string{}
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "lead repository: commit batch")
	}
	return nil
}

// UpdateStatus moves a lead to status `to` in one statement. The row is only
// touched when its current status is an allowed source for `to`; the counter
// increment rides on the same UPDATE. Returns the updated lead and the status
// it had before.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, to entity.LeadStatus, notes *string) (*entity.Lead, entity.LeadStatus, error) {
	query := `
		UPDATE instagram_leads AS l
		SET status = $2,
			notes = CASE WHEN $3 THEN $4 ELSE l.notes END,
			messages_sent = l.messages_sent + $5,
			last_message_at = CASE WHEN $5 > 0 THEN NOW() ELSE l.last_message_at END,
			last_updated = NOW()
		FROM (SELECT id, status FROM instagram_leads WHERE id = $1 FOR UPDATE) AS prev
		WHERE l.id = prev.id AND prev.status = ANY($6)
		RETURNING prev.status, ` + qualified("l", leadColumns)

	sources := make([]string, 0, 2)
	for _, s := range entity.AllowedSources(to) {
		sources = append(sources, string(s))
	}

	increment := 0
	if to.CountsAsMessage() {
		increment = 1
	}

	var noteValue sql.NullString
	if notes != nil {
		noteValue = nullString(*notes)
	}

	var previous entity.LeadStatus
	lead, err := scanLead(
		r.DB.QueryRowContext(ctx, query, id, string(to), notes != nil, noteValue, increment, pq.Array(sources)),
		&previous,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", r.classifyMiss(ctx, id, to)
	}
	if err != nil {
		return nil, "", eris.Wrapf(err, "lead repository: update status %d", id)
	}
	return lead, previous, nil
}

// classifyMiss tells an unknown id apart from a rejected transition.
func (r *LeadRepository) classifyMiss(ctx context.Context, id int64, to entity.LeadStatus) error {
	var current string
	err := r.DB.QueryRowContext(ctx, `SELECT status FROM instagram_leads WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	if err != nil {
		return eris.Wrapf(err, "lead repository: read status %d", id)
	}
	return &entity.TransitionError{LeadID: id, From: entity.LeadStatus(current), To: to}
}

func (r *LeadRepository) UpdateNotes(ctx context.Context, id int64, notes string) (*entity.Lead, error) {
	query := `
		UPDATE instagram_leads
		SET notes = $2, last_updated = NOW()
		WHERE id = $1
		RETURNING ` + leadColumns

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, nullString(notes)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "lead repository: update notes %d", id)
	}
	return lead, nil
}

func (r *LeadRepository) CountsByStatus(ctx context.Context) (*entity.LeadCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'warm_lead'),
			COUNT(*) FILTER (WHERE status = 'message_sent'),
			COUNT(*) FILTER (WHERE status = 'sale_closed'),
			COUNT(*),
			COALESCE(SUM(messages_sent), 0)
		FROM instagram_leads
	`

	var c entity.LeadCounts
	err := r.DB.QueryRowContext(ctx, query).Scan(
		&c.WarmLead,
		&c.MessageSent,
		&c.SaleClosed,
		&c.Total,
		&c.MessagesSent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "lead repository: counts")
	}
	return &c, nil
}

func (r *LeadRepository) CountMessagedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM instagram_leads WHERE last_message_at >= $1`, since,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "lead repository: count messaged")
	}
	return n, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM instagram_leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "lead repository: delete %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "lead repository: delete %d", id)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func qualified(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

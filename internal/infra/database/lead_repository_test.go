package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

var leadRowColumns = []string{
	"id", "username", "instagram_id", "full_name", "profile_url", "profile_pic_url", "is_verified", "bio",
	"followers_count", "following_count", "status", "date_added", "last_updated", "notes", "tags",
	"messages_sent", "last_message_at",
}

func newMockRepo(t *testing.T) (*LeadRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewLeadRepository(db), mock
}

func leadRow(id int64, username string, status entity.LeadStatus, added time.Time) []driver.Value {
	return []driver.Value{
		id, username, "ig-" + username, "Full " + username, "https://www.instagram.com/" + username + "/", nil, false, nil,
		1200, 300, string(status), added, added, nil, "fitness,coach",
		0, nil,
	}
}

func TestLeadRepository_CreateForcesWarmLead(t *testing.T) {
	repo, mock := newMockRepo(t)
	added := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO instagram_leads").
		WithArgs("jane.fit", "123", "Jane", sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg(), 5400, 210, "fitness,coach").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "date_added", "last_updated", "messages_sent"}).
			AddRow(int64(7), "warm_lead", added, added, 0))

	lead := &entity.Lead{
		Username:    "jane.fit",
		InstagramID: "123",
		FullName:    "Jane",
		IsVerified:  true,
		Followers:   5400,
		Following:   210,
		Tags:        []string{"fitness", "coach"},
		Status:      entity.StatusSaleClosed,
	}

	require.NoError(t, repo.Create(context.Background(), lead))
	assert.Equal(t, int64(7), lead.ID)
	assert.Equal(t, entity.StatusWarmLead, lead.Status)
	assert.Equal(t, added, lead.DateAdded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_CreateBatchRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO instagram_leads").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "date_added", "last_updated", "messages_sent"}).
			AddRow(int64(1), "warm_lead", now, now, 0))
	mock.ExpectQuery("INSERT INTO instagram_leads").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []*entity.Lead{{Username: "a"}, {Username: "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch create")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_CreateBatchCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	for i := 1; i <= 2; i++ {
		mock.ExpectQuery("INSERT INTO instagram_leads").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status", "date_added", "last_updated", "messages_sent"}).
				AddRow(int64(i), "warm_lead", now, now, 0))
	}
	mock.ExpectCommit()

	leads := []*entity.Lead{{Username: "a"}, {Username: "b"}}
	require.NoError(t, repo.CreateBatch(context.Background(), leads))
	assert.Equal(t, int64(1), leads[0].ID)
	assert.Equal(t, int64(2), leads[1].ID)
	assert.Equal(t, []string{}, leads[1].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_ListFiltersAndCaps(t *testing.T) {
	repo, mock := newMockRepo(t)
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	status := entity.StatusWarmLead
	mock.ExpectQuery(`ORDER BY date_added ASC`).
		WithArgs("warm_lead", int64(2)).
		WillReturnRows(sqlmock.NewRows(leadRowColumns).
			AddRow(leadRow(1, "first", entity.StatusWarmLead, t1)...).
			AddRow(leadRow(2, "second", entity.StatusWarmLead, t2)...))

	leads, err := repo.List(context.Background(), entity.LeadFilter{Status: &status, Limit: 2, Order: entity.SortOldestFirst})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "first", leads[0].Username)
	assert.Equal(t, []string{"fitness", "coach"}, leads[0].Tags)
	assert.Nil(t, leads[0].Notes)
	assert.Empty(t, leads[0].ProfilePicURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_ListWithoutFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`ORDER BY date_added DESC`).
		WithArgs(nil, nil).
		WillReturnRows(sqlmock.NewRows(leadRowColumns))

	leads, err := repo.List(context.Background(), entity.LeadFilter{})
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.NotNil(t, leads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_NextWarmEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("WHERE status = 'warm_lead'").
		WillReturnRows(sqlmock.NewRows(leadRowColumns))

	_, err := repo.NextWarm(context.Background())
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadRepository_UpdateStatusToMessageSent(t *testing.T) {
	repo, mock := newMockRepo(t)
	added := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	row := append([]driver.Value{"warm_lead"}, leadRow(3, "coach.mike", entity.StatusMessageSent, added)...)
	row[16] = 1 // messages_sent
	mock.ExpectQuery("UPDATE instagram_leads AS l").
		WithArgs(int64(3), "message_sent", true, "sent DM", 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(append([]string{"status"}, leadRowColumns...)).AddRow(row...))

	notes := "sent DM"
	lead, previous, err := repo.UpdateStatus(context.Background(), 3, entity.StatusMessageSent, &notes)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWarmLead, previous)
	assert.Equal(t, entity.StatusMessageSent, lead.Status)
	assert.Equal(t, 1, lead.MessagesSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_UpdateStatusWithoutNotesDoesNotCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	added := time.Now()

	row := append([]driver.Value{"message_sent"}, leadRow(4, "x", entity.StatusSaleClosed, added)...)
	mock.ExpectQuery("UPDATE instagram_leads AS l").
		WithArgs(int64(4), "sale_closed", false, nil, 0, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(append([]string{"status"}, leadRowColumns...)).AddRow(row...))

	_, previous, err := repo.UpdateStatus(context.Background(), 4, entity.StatusSaleClosed, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusMessageSent, previous)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_UpdateStatusUnknownID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE instagram_leads AS l").
		WillReturnRows(sqlmock.NewRows(append([]string{"status"}, leadRowColumns...)))
	mock.ExpectQuery("SELECT status FROM instagram_leads").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, _, err := repo.UpdateStatus(context.Background(), 99, entity.StatusMessageSent, nil)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_UpdateStatusRejectedTransition(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE instagram_leads AS l").
		WillReturnRows(sqlmock.NewRows(append([]string{"status"}, leadRowColumns...)))
	mock.ExpectQuery("SELECT status FROM instagram_leads").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("warm_lead"))

	_, _, err := repo.UpdateStatus(context.Background(), 5, entity.StatusSaleClosed, nil)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	var te *entity.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, entity.StatusWarmLead, te.From)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_UpdateNotes(t *testing.T) {
	repo, mock := newMockRepo(t)
	added := time.Now()

	row := leadRow(6, "n", entity.StatusWarmLead, added)
	row[13] = "call back friday"
	mock.ExpectQuery("SET notes = \\$2").
		WithArgs(int64(6), "call back friday").
		WillReturnRows(sqlmock.NewRows(leadRowColumns).AddRow(row...))

	lead, err := repo.UpdateNotes(context.Background(), 6, "call back friday")
	require.NoError(t, err)
	require.NotNil(t, lead.Notes)
	assert.Equal(t, "call back friday", *lead.Notes)
	assert.Equal(t, entity.StatusWarmLead, lead.Status)
}

func TestLeadRepository_CountsByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("COUNT\\(\\*\\) FILTER").
		WillReturnRows(sqlmock.NewRows([]string{"warm", "sent", "closed", "total", "messages"}).
			AddRow(2, 1, 0, 3, 1))

	counts, err := repo.CountsByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.LeadCounts{WarmLead: 2, MessageSent: 1, SaleClosed: 0, Total: 3, MessagesSent: 1}, *counts)
	assert.Equal(t, counts.Total, counts.WarmLead+counts.MessageSent+counts.SaleClosed)
}

func TestLeadRepository_CountMessagedSince(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("last_message_at >= \\$1").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.CountMessagedSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestLeadRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM instagram_leads").
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM instagram_leads").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 8))
	assert.ErrorIs(t, repo.Delete(context.Background(), 9), entity.ErrLeadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQualified(t *testing.T) {
	assert.Equal(t, "l.id, l.status", qualified("l", "id,\n\tstatus"))
}

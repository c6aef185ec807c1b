package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/entity"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/repository"
)

const (
	selectClubPattern = `SELECT clubs\.id, clubs\.name, students\.id\s+FROM clubs\s+LEFT JOIN students ON clubs\.id = students\.club_id\s+WHERE clubs\.id = \$1`
	upsertClubPattern = `INSERT INTO clubs \(id, name\)\s+VALUES \(\$1, \$2\)\s+ON CONFLICT \(id\) DO UPDATE SET name = \$3`
	insertClubPattern = `INSERT INTO clubs \(id, name\)\s+VALUES \(\$1, \$2\)`
	updateTwoPattern  = `UPDATE students SET club_id = \$1 WHERE id IN \(\$2, \$3\)`
)

var clubColumns = []string{"id", "name", "id"}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func newMockClubRepository(t *testing.T) (*ClubRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewClubRepository(mock), mock
}

func expectClubRows(mock pgxmock.PgxPoolIface, id string, rows *pgxmock.Rows) {
	mock.ExpectQuery(selectClubPattern).WithArgs(id).WillReturnRows(rows)
}

func TestClubRepository_Get_Missing_ReturnsNotFound(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	expectClubRows(mock, "missing", mock.NewRows(clubColumns))

	club, err := repo.Get(context.Background(), "missing")

	assert.Nil(t, club)
	assert.ErrorIs(t, err, repository.ErrClubNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Get_WithMembers(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	expectClubRows(mock, "c1", mock.NewRows(clubColumns).
		AddRow("c1", "Chess", text("7")).
		AddRow("c1", "Chess", text("9")))

	club, err := repo.Get(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, entity.ClubID("c1"), club.ID)
	assert.Equal(t, "Chess", club.Name)
	assert.ElementsMatch(t, []entity.StudentID{"7", "9"}, club.Members())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Get_WithoutMembers_KeepsNullAsZeroID(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	expectClubRows(mock, "c2", mock.NewRows(clubColumns).
		AddRow("c2", "Go", pgtype.Text{}))

	club, err := repo.Get(context.Background(), "c2")

	require.NoError(t, err)
	assert.Equal(t, 1, club.NumMembers())
	assert.True(t, club.HasMember(""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Get_QueryError_Propagates(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(selectClubPattern).WithArgs("c1").WillReturnError(boom)

	_, err := repo.Get(context.Background(), "c1")

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Save_ReassignsOldRosterOnly(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	expectClubRows(mock, "c1", mock.NewRows(clubColumns).
		AddRow("c1", "Chess", text("7")).
		AddRow("c1", "Chess", text("9")))
	mock.ExpectBegin()
	mock.ExpectExec(upsertClubPattern).
		WithArgs("c1", "Chess Club", "Chess Club").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(updateTwoPattern).
		WithArgs("c1", "7", "9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	club := entity.NewClub("c1", "Chess Club", "7", "9")
	require.NoError(t, club.Join("11"))

	err := repo.Save(context.Background(), club)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Save_MemberlessClub_AssignsZeroID(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	expectClubRows(mock, "c2", mock.NewRows(clubColumns).
		AddRow("c2", "Go", pgtype.Text{}))
	mock.ExpectBegin()
	mock.ExpectExec(upsertClubPattern).
		WithArgs("c2", "Go", "Go").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE students SET club_id = \$1 WHERE id IN \(\$2\)`).
		WithArgs("c2", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), entity.NewClub("c2", "Go", "5"))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Save_NewClub_ReturnsNoPriorState(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	expectClubRows(mock, "fresh", mock.NewRows(clubColumns))

	err := repo.Save(context.Background(), entity.NewClub("fresh", "Drama", "1"))

	assert.ErrorIs(t, err, repository.ErrNoPriorState)
	assert.ErrorIs(t, err, repository.ErrClubNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Save_RosterUpdateFails_RollsBack(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	boom := errors.New("deadlock detected")
	expectClubRows(mock, "c1", mock.NewRows(clubColumns).
		AddRow("c1", "Chess", text("7")).
		AddRow("c1", "Chess", text("9")))
	mock.ExpectBegin()
	mock.ExpectExec(upsertClubPattern).
		WithArgs("c1", "Chess", "Chess").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(updateTwoPattern).
		WithArgs("c1", "7", "9").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.Save(context.Background(), entity.NewClub("c1", "Chess", "7", "9"))

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Create_AssignsCurrentRoster(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertClubPattern).
		WithArgs("c3", "Chess").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(updateTwoPattern).
		WithArgs("c3", "7", "9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), entity.NewClub("c3", "Chess", "9", "7"))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Create_EmptyRoster_SkipsUpdate(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertClubPattern).
		WithArgs("c4", "Go").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), entity.NewClub("c4", "Go"))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_Create_Duplicate_ReturnsAlreadyExists(t *testing.T) {
	repo, mock := newMockClubRepository(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertClubPattern).
		WithArgs("c1", "Chess").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), entity.NewClub("c1", "Chess"))

	assert.ErrorIs(t, err, repository.ErrClubAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignRosterQuery(t *testing.T) {
	sql, args := assignRosterQuery("c1", []entity.StudentID{"7", "9", "11"})

	assert.Equal(t, "UPDATE students SET club_id = $1 WHERE id IN ($2, $3, $4)", sql)
	assert.Equal(t, []any{"c1", "7", "9", "11"}, args)
}

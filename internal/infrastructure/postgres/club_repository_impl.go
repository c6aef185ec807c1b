package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/entity"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/repository"
)

const uniqueViolation = "23505"

const (
	selectClubSQL = `
		SELECT clubs.id, clubs.name, students.id
		FROM clubs
		LEFT JOIN students ON clubs.id = students.club_id
		WHERE clubs.id = $1
	`
	upsertClubSQL = `
		INSERT INTO clubs (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = $3
	`
	insertClubSQL = `
		INSERT INTO clubs (id, name)
		VALUES ($1, $2)
	`
)

type ClubRepository struct {
	tx *TxManager
}

func NewClubRepository(db DB) *ClubRepository {
	return &ClubRepository{tx: NewTxManager(db)}
}

// Get loads a club and its roster with a left join on students.
//
// A club without students still yields one row whose students.id is NULL.
// That row is not skipped: it lands in the roster as the zero StudentID.
func (r *ClubRepository) Get(ctx context.Context, id entity.ClubID) (*entity.Club, error) {
	rows, err := r.tx.Querier(ctx).Query(ctx, selectClubSQL, string(id))
	if err != nil {
		return nil, fmt.Errorf("query club %s: %w", id, err)
	}
	defer rows.Close()

	var (
		found    bool
		clubID   string
		clubName string
		roster   []entity.StudentID
	)
	for rows.Next() {
		var studentID pgtype.Text
		if err := rows.Scan(&clubID, &clubName, &studentID); err != nil {
			return nil, fmt.Errorf("scan club %s: %w", id, err)
		}
		found = true
		roster = append(roster, entity.StudentID(studentID.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read club %s: %w", id, err)
	}
	if !found {
		return nil, repository.ErrClubNotFound
	}

	return entity.ReconstructClub(entity.ClubID(clubID), clubName, roster), nil
}

// Save upserts the club row, then points students.club_id at the club for
// every student that was on the roster before this call. Students added or
// removed in memory since the club was loaded are not touched.
func (r *ClubRepository) Save(ctx context.Context, club *entity.Club) error {
	old, err := r.Get(ctx, club.ID)
	if err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			return fmt.Errorf("save club %s: %w: %w", club.ID, repository.ErrNoPriorState, err)
		}
		return fmt.Errorf("save club %s: %w", club.ID, err)
	}

	return r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		q := r.tx.Querier(ctx)
		if _, err := q.Exec(ctx, upsertClubSQL, string(club.ID), club.Name, club.Name); err != nil {
			return fmt.Errorf("upsert club %s: %w", club.ID, err)
		}
		return assignRoster(ctx, q, club.ID, old.Members())
	})
}

func (r *ClubRepository) Create(ctx context.Context, club *entity.Club) error {
	return r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		q := r.tx.Querier(ctx)
		if _, err := q.Exec(ctx, insertClubSQL, string(club.ID), club.Name); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("create club %s: %w", club.ID, repository.ErrClubAlreadyExists)
			}
			return fmt.Errorf("create club %s: %w", club.ID, err)
		}
		return assignRoster(ctx, q, club.ID, club.Members())
	})
}

// assignRoster sets club_id on the given students. An empty list issues no
// statement since IN () is not valid SQL.
func assignRoster(ctx context.Context, q Querier, clubID entity.ClubID, studentIDs []entity.StudentID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	sql, args := assignRosterQuery(clubID, studentIDs)
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("assign roster of club %s: %w", clubID, err)
	}
	return nil
}

// assignRosterQuery builds UPDATE students SET club_id = $1 WHERE id IN ($2, ...).
func assignRosterQuery(clubID entity.ClubID, studentIDs []entity.StudentID) (string, []any) {
	var b strings.Builder
	b.WriteString("UPDATE students SET club_id = $1 WHERE id IN (")
	args := make([]any, 0, len(studentIDs)+1)
	args = append(args, string(clubID))
	for i, sid := range studentIDs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$" + strconv.Itoa(i+2))
		args = append(args, string(sid))
	}
	b.WriteString(")")
	return b.String(), args
}

var _ repository.ClubRepository = (*ClubRepository)(nil)

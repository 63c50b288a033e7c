package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"members/internal/members/codec"
	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

const memberColumns = `id, name, section, phone_number, email, roles`

// PostgresStore persists members in PostgreSQL. Every mutation is a single
// statement touching one row; the role set lives in one text column encoded
// by the codec.
type PostgresStore struct {
	db    *sql.DB
	codec *codec.Codec
}

// NewPostgres constructs a PostgreSQL-backed member store. A nil codec means strict decoding.
func NewPostgres(db *sql.DB, c *codec.Codec) *PostgresStore {
	if c == nil {
		c = codec.New(codec.Strict)
	}
	return &PostgresStore{db: db, codec: c}
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return s.collect(rows, "list members")
}

func (s *PostgresStore) FindByID(ctx context.Context, id models.MemberID) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, int64(id))
	member, err := s.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find member by id: %w", err)
	}
	return member, nil
}

// FindByRole matches the role as a whole token of the stored list, so one
// role name can never match inside another.
func (s *PostgresStore) FindByRole(ctx context.Context, role models.Role) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members
		WHERE $1 = ANY(string_to_array(roles, ','))
		ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("find members by role: %w", err)
	}
	return s.collect(rows, "find members by role")
}

func (s *PostgresStore) Create(ctx context.Context, draft models.Draft) (*models.Member, error) {
	query := `
		INSERT INTO members (name, section, phone_number, email, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + memberColumns
	row := s.db.QueryRowContext(ctx, query,
		draft.Name,
		string(draft.Section),
		draft.PhoneNumber,
		draft.Email,
		s.codec.Encode(draft.Roles),
	)
	member, err := s.scan(row)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return member, nil
}

// Update overwrites every column of the row. There is no version check, so
// concurrent updates of one id resolve to the last writer.
func (s *PostgresStore) Update(ctx context.Context, id models.MemberID, draft models.Draft) (*models.Member, error) {
	query := `
		UPDATE members
		SET name = $2, section = $3, phone_number = $4, email = $5, roles = $6
		WHERE id = $1
		RETURNING ` + memberColumns
	row := s.db.QueryRowContext(ctx, query,
		int64(id),
		draft.Name,
		string(draft.Section),
		draft.PhoneNumber,
		draft.Email,
		s.codec.Encode(draft.Roles),
	)
	member, err := s.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	return member, nil
}

// Delete removes the row and returns it as it was just before removal. An error
// wrapping sentinel.ErrCorrupt means the row was removed but could not be decoded.
func (s *PostgresStore) Delete(ctx context.Context, id models.MemberID) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM members WHERE id = $1 RETURNING `+memberColumns, int64(id))
	member, err := s.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("delete member: %w", err)
	}
	return member, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scan(row rowScanner) (*models.Member, error) {
	var r memberRow
	if err := row.Scan(&r.ID, &r.Name, &r.Section, &r.PhoneNumber, &r.Email, &r.Roles); err != nil {
		return nil, err
	}
	return r.toMember(s.codec)
}

func (s *PostgresStore) collect(rows *sql.Rows, op string) ([]*models.Member, error) {
	defer rows.Close()
	members := make([]*models.Member, 0)
	for rows.Next() {
		member, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return members, nil
}

// postgres/store.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gkirkpatrick/magic-notes/domain"
	"github.com/gkirkpatrick/magic-notes/store"
)

// Store is the PostgreSQL-backed store.Store implementation.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func New(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log.With().Str("component", "postgres").Logger()}
}

// Connect opens a pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(pool, log), nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// listConditions renders the WHERE clause for a notes listing. Kept separate
// from the query execution so the filter-to-SQL mapping is testable without a
// database.
func listConditions(f domain.Filter) (string, []any) {
	var conds []string
	var args []any

	var text []string
	if body := strings.TrimSpace(f.BodyText); body != "" {
		args = append(args, "%"+body+"%")
		text = append(text, fmt.Sprintf("n.content ILIKE $%d", len(args)))
	}
	if title := strings.TrimSpace(f.TitleText); title != "" {
		args = append(args, "%"+title+"%")
		text = append(text, fmt.Sprintf("n.title ILIKE $%d", len(args)))
	}
	if len(text) > 0 {
		conds = append(conds, "("+strings.Join(text, " OR ")+")")
	}

	if tags := domain.NormalizeTags(f.Tags); len(tags) > 0 {
		args = append(args, tags)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM note_tags nt JOIN tags t ON t.id = nt.tag_id WHERE nt.note_id = n.id AND t.name = ANY($%d))",
			len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) ListNotes(ctx context.Context, f domain.Filter, p domain.Page) (domain.NoteList, error) {
	where, args := listConditions(f)
	p = p.Clamped()

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM notes n"+where, args...).Scan(&total); err != nil {
		return domain.NoteList{}, fmt.Errorf("count notes: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT n.id, n.title, n.content, n.created_at, n.updated_at FROM notes n%s ORDER BY n.updated_at DESC, n.id DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, p.PageSize, (p.Page-1)*p.PageSize)...)
	if err != nil {
		return domain.NoteList{}, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Note, 0, p.PageSize)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return domain.NoteList{}, fmt.Errorf("scan note: %w", err)
		}
		n.Tags = []string{}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return domain.NoteList{}, fmt.Errorf("list notes: %w", err)
	}

	if err := s.attachTags(ctx, items); err != nil {
		return domain.NoteList{}, err
	}

	return domain.NoteList{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}

// attachTags fills Tags for every note in items with a single query, ordered
// by the position recorded at write time.
func (s *Store) attachTags(ctx context.Context, items []domain.Note) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i, n := range items {
		ids[i] = n.ID
		index[n.ID] = i
	}

	rows, err := s.pool.Query(ctx,
		"SELECT nt.note_id, t.name FROM note_tags nt JOIN tags t ON t.id = nt.tag_id WHERE nt.note_id = ANY($1) ORDER BY nt.note_id, nt.position",
		ids)
	if err != nil {
		return fmt.Errorf("load note tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID int64
		var name string
		if err := rows.Scan(&noteID, &name); err != nil {
			return fmt.Errorf("scan note tag: %w", err)
		}
		i := index[noteID]
		items[i].Tags = append(items[i].Tags, name)
	}
	return rows.Err()
}

func (s *Store) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	var n domain.Note
	err := s.pool.QueryRow(ctx,
		"SELECT id, title, content, created_at, updated_at FROM notes WHERE id = $1", id).
		Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Note{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Note{}, fmt.Errorf("get note %d: %w", id, err)
	}
	n.Tags = []string{}
	one := []domain.Note{n}
	if err := s.attachTags(ctx, one); err != nil {
		return domain.Note{}, err
	}
	return one[0], nil
}

func (s *Store) CreateNote(ctx context.Context, in domain.NoteInput) (domain.Note, error) {
	in, err := in.Normalized()
	if err != nil {
		return domain.Note{}, err
	}

	var n domain.Note
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			"INSERT INTO notes (title, content) VALUES ($1, $2) RETURNING id, created_at, updated_at",
			in.Title, in.Content).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		return s.setNoteTags(ctx, tx, n.ID, in.Tags)
	})
	if err != nil {
		return domain.Note{}, err
	}

	n.Title = in.Title
	n.Content = in.Content
	n.Tags = in.Tags
	s.log.Debug().Int64("note_id", n.ID).Msg("note created")
	return n, nil
}

func (s *Store) UpdateNote(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	in, err := in.Normalized()
	if err != nil {
		return domain.Note{}, err
	}

	var n domain.Note
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			"UPDATE notes SET title = $1, content = $2, updated_at = now() WHERE id = $3 RETURNING id, created_at, updated_at",
			in.Title, in.Content, id).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update note %d: %w", id, err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM note_tags WHERE note_id = $1", id); err != nil {
			return fmt.Errorf("clear note tags: %w", err)
		}
		return s.setNoteTags(ctx, tx, id, in.Tags)
	})
	if err != nil {
		return domain.Note{}, err
	}

	n.Title = in.Title
	n.Content = in.Content
	n.Tags = in.Tags
	return n, nil
}

func (s *Store) setNoteTags(ctx context.Context, tx pgx.Tx, noteID int64, tags []string) error {
	for pos, name := range tags {
		tag, err := getOrCreateTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO note_tags (note_id, tag_id, position) VALUES ($1, $2, $3)",
			noteID, tag.ID, pos); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	ct, err := s.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	s.log.Debug().Int64("note_id", id).Msg("note deleted")
	return nil
}

func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) GetOrCreateTag(ctx context.Context, name string) (domain.Tag, error) {
	in, err := domain.TagInput{Name: name}.Normalized()
	if err != nil {
		return domain.Tag{}, err
	}
	return getOrCreateTag(ctx, s.pool, in.Name)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// getOrCreateTag inserts the (already normalized) name and falls back to a
// select when another writer won the unique-index race.
func getOrCreateTag(ctx context.Context, q querier, name string) (domain.Tag, error) {
	var t domain.Tag
	t.Name = name
	err := q.QueryRow(ctx,
		"INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING RETURNING id", name).Scan(&t.ID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && !isUniqueViolation(err) {
		return domain.Tag{}, fmt.Errorf("insert tag %q: %w", name, err)
	}
	if err := q.QueryRow(ctx, "SELECT id FROM tags WHERE name = $1", name).Scan(&t.ID); err != nil {
		return domain.Tag{}, fmt.Errorf("get tag %q: %w", name, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

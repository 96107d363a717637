package index

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/docmeta"
)

// PGStore implements VectorIndex on Postgres with the pgvector extension.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore opens a connection pool and verifies connectivity.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PGStore{DB: db}, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() error {
	return s.DB.Close()
}

// Upsert inserts or replaces chunks by id. Re-ingesting a document under the
// same identifiers supersedes its previous chunks. The error return is named
// so the deferred commit/rollback decision sees every failure path.
func (s *PGStore) Upsert(ctx context.Context, records []ChunkRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var stmt *sql.Stmt
	stmt, err = tx.PrepareContext(ctx, `
INSERT INTO regulation_chunks
  (id, doc_id, source, page, chunk_index, dataset, doc_type, season, category, issue, published, text, embedding, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13::vector,NOW())
ON CONFLICT (id) DO UPDATE SET
  doc_id = EXCLUDED.doc_id,
  source = EXCLUDED.source,
  page = EXCLUDED.page,
  chunk_index = EXCLUDED.chunk_index,
  dataset = EXCLUDED.dataset,
  doc_type = EXCLUDED.doc_type,
  season = EXCLUDED.season,
  category = EXCLUDED.category,
  issue = EXCLUDED.issue,
  published = EXCLUDED.published,
  text = EXCLUDED.text,
  embedding = EXCLUDED.embedding,
  created_at = NOW();
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.ID == "" {
			err = fmt.Errorf("chunk id required")
			return err
		}
		if len(rec.Vector) == 0 {
			err = fmt.Errorf("embedding vector required for chunk %s", rec.ID)
			return err
		}
		var vectorLiteral string
		vectorLiteral, err = encodeVectorLiteral(rec.Vector)
		if err != nil {
			return err
		}
		if _, execErr := stmt.ExecContext(ctx,
			rec.ID, rec.Meta.DocID, rec.Meta.Source, rec.Meta.Page, rec.Meta.ChunkIndex,
			rec.Meta.Dataset, rec.Meta.DocType,
			nullableInt(rec.Meta.Season), nullableString(string(rec.Meta.Category)),
			nullableInt(rec.Meta.Issue), nullableString(rec.Meta.Published),
			rec.Text, vectorLiteral,
		); execErr != nil {
			err = fmt.Errorf("upsert chunk %s: %w", rec.ID, execErr)
			return err
		}
	}
	return nil
}

// Query returns up to k chunks nearest to vector, filtered by the optional
// predicate, ordered by ascending cosine distance.
func (s *PGStore) Query(ctx context.Context, vector []float32, k int, where Predicate) ([]Hit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector must not be empty")
	}
	if k <= 0 {
		k = 10
	}
	vecLiteral, err := encodeVectorLiteral(vector)
	if err != nil {
		return nil, err
	}

	args := []interface{}{vecLiteral}
	query := `
SELECT text, doc_id, source, page, chunk_index, dataset, doc_type, season, category, issue, published,
       embedding <=> $1::vector AS distance
FROM regulation_chunks`
	if where != nil {
		clause, whereArgs, err := ToSQL(where, len(args))
		if err != nil {
			return nil, fmt.Errorf("translate predicate: %w", err)
		}
		if clause != "" {
			query += "\nWHERE " + clause
			args = append(args, whereArgs...)
		}
	}
	query += fmt.Sprintf("\nORDER BY embedding <=> $1::vector\nLIMIT $%d", len(args)+1)
	args = append(args, k)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			hit       Hit
			season    sql.NullInt64
			category  sql.NullString
			issue     sql.NullInt64
			published sql.NullString
		)
		if err := rows.Scan(
			&hit.Text, &hit.Meta.DocID, &hit.Meta.Source, &hit.Meta.Page, &hit.Meta.ChunkIndex,
			&hit.Meta.Dataset, &hit.Meta.DocType, &season, &category, &issue, &published,
			&hit.Distance,
		); err != nil {
			return nil, err
		}
		if season.Valid {
			hit.Meta.Season = int(season.Int64)
		}
		if category.Valid {
			hit.Meta.Category = docmeta.Category(category.String)
		}
		if issue.Valid {
			hit.Meta.Issue = int(issue.Int64)
		}
		if published.Valid {
			hit.Meta.Published = published.String
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func encodeVectorLiteral(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", fmt.Errorf("vector must not be empty")
	}
	var builder strings.Builder
	builder.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String(), nil
}

package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
	"github.com/TRI-AMDD/causeway/backend/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStore implements store.GraphStore on PostgreSQL. Graphs and
// proposal lists are stored as JSONB documents.
type GraphDBStore struct {
	conn pgxIConn
}

func NewGraphDBStore(conn pgxIConn) *GraphDBStore {
	return &GraphDBStore{conn: conn}
}

func (s *GraphDBStore) CreateGraph(ctx context.Context, name string, g common.Graph) (*store.GraphRecord, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}

	rec := store.GraphRecord{ID: id, Name: name, Graph: g}
	err = s.conn.QueryRow(ctx, `
		INSERT INTO graphs (id, name, data)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, id, name, data).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert graph: %w", err)
	}

	return &rec, nil
}

func (s *GraphDBStore) GetGraph(ctx context.Context, id string) (*store.GraphRecord, error) {
	var (
		rec  store.GraphRecord
		data []byte
	)
	err := s.conn.QueryRow(ctx, `
		SELECT id, name, data, created_at, updated_at
		FROM graphs
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Name, &data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &rec.Graph); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph %s: %w", id, err)
	}

	return &rec, nil
}

func (s *GraphDBStore) ListGraphs(ctx context.Context) ([]store.GraphRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, data, created_at, updated_at
		FROM graphs
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]store.GraphRecord, 0)
	for rows.Next() {
		var (
			rec  store.GraphRecord
			data []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &rec.Graph); err != nil {
			return nil, fmt.Errorf("failed to unmarshal graph %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *GraphDBStore) UpdateGraph(ctx context.Context, id string, name string, g common.Graph) (*store.GraphRecord, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}

	rec := store.GraphRecord{ID: id, Name: name, Graph: g}
	err = s.conn.QueryRow(ctx, `
		UPDATE graphs
		SET name = $2, data = $3, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, id, name, data).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return &rec, nil
}

func (s *GraphDBStore) DeleteGraph(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM graphs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SaveProposalRun upserts the run for (graph, node). The run id is kept from
// the first insert so async clients can correlate a queued job with its result.
func (s *GraphDBStore) SaveProposalRun(ctx context.Context, run *store.ProposalRun) error {
	if run.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		run.ID = id
	}
	if run.Proposals == nil {
		run.Proposals = make([]common.Proposal, 0)
	}

	data, err := json.Marshal(run.Proposals)
	if err != nil {
		return fmt.Errorf("failed to marshal proposals: %w", err)
	}

	return s.conn.QueryRow(ctx, `
		INSERT INTO proposal_runs (id, graph_id, node_id, status, proposals, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (graph_id, node_id) DO UPDATE
		SET status = EXCLUDED.status,
		    proposals = EXCLUDED.proposals,
		    error_message = EXCLUDED.error_message,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, run.ID, run.GraphID, run.NodeID, run.Status, data, run.ErrorMessage).
		Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
}

func (s *GraphDBStore) GetProposalRun(ctx context.Context, graphID, nodeID string) (*store.ProposalRun, error) {
	var (
		run  store.ProposalRun
		data []byte
	)
	err := s.conn.QueryRow(ctx, `
		SELECT id, graph_id, node_id, status, proposals, error_message, created_at, updated_at
		FROM proposal_runs
		WHERE graph_id = $1 AND node_id = $2
	`, graphID, nodeID).Scan(
		&run.ID, &run.GraphID, &run.NodeID, &run.Status,
		&data, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &run.Proposals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposals for run %s: %w", run.ID, err)
	}

	return &run, nil
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/TRI-AMDD/causeway/backend/pkg/common"
)

var ErrNotFound = errors.New("record not found")

// Proposal run lifecycle as stored alongside the graph.
const (
	RunQueued   = "queued"
	RunRunning  = "running"
	RunComplete = "complete"
	RunFailed   = "failed"
)

type GraphRecord struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Graph     common.Graph `json:"graph"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ProposalRun is the persisted result of a proposal pipeline run for one
// pivot node. One row per (graph, node); a new run replaces the previous one.
type ProposalRun struct {
	ID           string            `json:"id"`
	GraphID      string            `json:"graph_id"`
	NodeID       string            `json:"node_id"`
	Status       string            `json:"status"`
	Proposals    []common.Proposal `json:"proposals"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// GraphStore persists graphs and proposal runs. Implementations must be safe
// for concurrent use.
type GraphStore interface {
	CreateGraph(ctx context.Context, name string, g common.Graph) (*GraphRecord, error)
	GetGraph(ctx context.Context, id string) (*GraphRecord, error)
	ListGraphs(ctx context.Context) ([]GraphRecord, error)
	UpdateGraph(ctx context.Context, id string, name string, g common.Graph) (*GraphRecord, error)
	DeleteGraph(ctx context.Context, id string) error

	SaveProposalRun(ctx context.Context, run *ProposalRun) error
	GetProposalRun(ctx context.Context, graphID, nodeID string) (*ProposalRun, error)
}

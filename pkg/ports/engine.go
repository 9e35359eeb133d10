package ports

import (
	"context"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

// Engine defines the stateless session operations consumed by hosts.
// Every call takes a session record and returns the record to keep.
type Engine interface {
	StartSession(ctx context.Context, subjectName string) (*domain.Session, string)
	DescribeCurrent(session *domain.Session) string
	SubmitAction(ctx context.Context, session *domain.Session, input string) (*domain.Session, domain.Outcome, string, error)
	Summarize(session *domain.Session) string
	ResetSession(ctx context.Context, session *domain.Session) (*domain.Session, string)

	// Graph returns the content the engine runs, for introspection.
	Graph() *graph.Graph
}

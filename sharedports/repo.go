package sharedports

import "context"

type Repo interface {
	Get(ctx context.Context, id string) (*SharedPort, error)
	ListByProject(ctx context.Context, projectID string) ([]*SharedPort, error)
	Upsert(ctx context.Context, port *SharedPort) error
	Delete(ctx context.Context, id string) error
}

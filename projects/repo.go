package projects

import "context"

type Repo interface {
	Get(ctx context.Context, id string) (*Project, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Project, error)
	Upsert(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error
}

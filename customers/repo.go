package customers

import "context"

// Repo is the customer directory contract.
//
// GetBySubject returns errors.ErrCustomerNotFound when no record exists;
// callers distinguish that from other faults to drive the provisioning path.
//
// CreateIfAbsent is a conditional insert: when a record for the subject
// already exists it returns that record, so two concurrent first logins for
// the same subject converge on a single row instead of racing check-then-insert.
type Repo interface {
	GetBySubject(ctx context.Context, subject string) (*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	CreateIfAbsent(ctx context.Context, customer *Customer) (*Customer, error)
	Upsert(ctx context.Context, customer *Customer) error
	List(ctx context.Context, offset, limit int) ([]*Customer, error)
	Delete(ctx context.Context, id string) error
}

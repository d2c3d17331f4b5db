package services

import "context"

// TransactionRunner scopes a callback to one transactional unit.
// *database.MongoDB satisfies it; NoTransaction degrades to plain
// sequential execution for stores without multi-document transactions,
// leaving the guarded-update fallbacks as the only protection.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type NoTransaction struct{}

func (NoTransaction) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

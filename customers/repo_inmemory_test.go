package customers_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tunnelmesh/go-tunnel-backend/customers"
	"github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

const testSubject = "c2bacf97-7b4a-4f29-9a0e-2c1d6a60b9cf"

func TestGetBySubjectNotFound(t *testing.T) {
	repo := customers.NewInMemoryRepo()

	_, err := repo.GetBySubject(context.Background(), testSubject)
	require.ErrorIs(t, err, errors.ErrCustomerNotFound)
}

func TestCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := customers.NewInMemoryRepo()

	created, err := repo.CreateIfAbsent(ctx, &customers.Customer{
		Subject:  testSubject,
		Username: "ada",
		Email:    "ada@example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	found, err := repo.GetBySubject(ctx, testSubject)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestCreateIfAbsentReturnsExisting(t *testing.T) {
	ctx := context.Background()
	repo := customers.NewInMemoryRepo()

	first, err := repo.CreateIfAbsent(ctx, &customers.Customer{Subject: testSubject, Username: "ada"})
	require.NoError(t, err)

	second, err := repo.CreateIfAbsent(ctx, &customers.Customer{Subject: testSubject, Username: "someone-else"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "ada", second.Username)
}

func TestCreateIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := customers.NewInMemoryRepo()

	const racers = 16
	results := make([]*customers.Customer, racers)
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.CreateIfAbsent(ctx, &customers.Customer{Subject: testSubject, Username: "ada"})
		}(i)
	}
	wg.Wait()

	// Exactly one record exists; every racer saw the same id
	for _, err := range errs {
		require.NoError(t, err)
	}
	all, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	for _, result := range results {
		require.Equal(t, all[0].ID, result.ID)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := customers.NewInMemoryRepo()

	created, err := repo.CreateIfAbsent(ctx, &customers.Customer{Subject: testSubject})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetBySubject(ctx, testSubject)
	require.ErrorIs(t, err, errors.ErrCustomerNotFound)

	require.ErrorIs(t, repo.Delete(ctx, created.ID), errors.ErrCustomerNotFound)
}

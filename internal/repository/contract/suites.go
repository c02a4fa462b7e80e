package contract

import (
	"context"
	"fmt"
	"testing"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

// UserFactory builds a repository whose backing directory holds exactly the given users, in order.
type UserFactory func(t *testing.T, seed []model.User) (repository.UserRepository, func())

// SeedUsers returns n users with ids 1..n and predictable fields.
func SeedUsers(n int) []model.User {
	out := make([]model.User, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.User{
			ID:      int64(i),
			Name:    fmt.Sprintf("User %02d", i),
			Email:   fmt.Sprintf("user%02d@example.com", i),
			Phone:   fmt.Sprintf("555-01%02d", i),
			Website: fmt.Sprintf("user%02d.example.com", i),
		})
	}
	return out
}

// RunUserRepositoryContract checks paging semantics every UserRepository must honor.
func RunUserRepositoryContract(t *testing.T, makeRepo UserFactory) {
	t.Helper()

	t.Run("first_page_and_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t, SeedUsers(10))
		t.Cleanup(cleanup)
		res, err := repo.ListUsers(context.Background(), repository.PageRequest{Page: 1, Limit: 5})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 5 || res.TotalCount != 10 || res.TotalPages != 2 {
			t.Fatalf("unexpected page: len=%d total=%d pages=%d", len(res.Items), res.TotalCount, res.TotalPages)
		}
		if res.Items[0].ID != 1 || res.Items[4].ID != 5 {
			t.Fatalf("unexpected order: first=%d last=%d", res.Items[0].ID, res.Items[4].ID)
		}
	})

	t.Run("second_page_preserves_order", func(t *testing.T) {
		repo, cleanup := makeRepo(t, SeedUsers(10))
		t.Cleanup(cleanup)
		res, err := repo.ListUsers(context.Background(), repository.PageRequest{Page: 2, Limit: 5})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 5 || res.Items[0].ID != 6 || res.Items[4].ID != 10 {
			t.Fatalf("unexpected page 2: %+v", res.Items)
		}
	})

	t.Run("partial_last_page", func(t *testing.T) {
		repo, cleanup := makeRepo(t, SeedUsers(7))
		t.Cleanup(cleanup)
		res, err := repo.ListUsers(context.Background(), repository.PageRequest{Page: 3, Limit: 3})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 1 || res.TotalPages != 3 {
			t.Fatalf("unexpected last page: len=%d pages=%d", len(res.Items), res.TotalPages)
		}
	})

	t.Run("beyond_last_page_is_empty", func(t *testing.T) {
		repo, cleanup := makeRepo(t, SeedUsers(4))
		t.Cleanup(cleanup)
		res, err := repo.ListUsers(context.Background(), repository.PageRequest{Page: 9, Limit: 5})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 0 || res.Items == nil || res.TotalPages != 1 {
			t.Fatalf("expected empty non-nil page with 1 total page, got len=%d nil=%v pages=%d", len(res.Items), res.Items == nil, res.TotalPages)
		}
	})

	t.Run("empty_directory", func(t *testing.T) {
		repo, cleanup := makeRepo(t, nil)
		t.Cleanup(cleanup)
		res, err := repo.ListUsers(context.Background(), repository.PageRequest{Page: 1, Limit: 5})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 0 || res.TotalCount != 0 || res.TotalPages != 0 {
			t.Fatalf("unexpected empty page: %+v", res)
		}
	})
}

package seeder

import (
	"context"
	"errors"

	"github.com/ilkoid/pagination-seeder/pkg/api"
	"github.com/ilkoid/pagination-seeder/pkg/utils"
)

// Verification — что сервис сообщил о количестве данных.
// nil означает, что запрос не удался.
type Verification struct {
	Users      *int64 `json:"users,omitempty"`
	Categories *int64 `json:"categories,omitempty"`
	Products   *int64 `json:"products,omitempty"`
	TotalPages int    `json:"total_pages"`
	PageSize   int    `json:"page_size"`
}

// VerifyData печатает количество пользователей, категорий и продуктов.
// Только информирует: ошибки печатаются и не прерывают прогон.
func (s *Seeder) VerifyData(ctx context.Context) Verification {
	s.out.Section("VERIFYING INSERTED DATA")

	var v Verification
	v.Users = s.countCollection(ctx, api.PathUsers, "users")
	v.Categories = s.countCollection(ctx, api.PathCategories, "categories")

	callCtx, cancel := context.WithTimeout(ctx, s.apiCfg.RequestTimeoutDuration())
	defer cancel()

	page, err := s.client.ListProducts(callCtx, api.PageRequest{Page: 0, Size: 1})
	if err != nil {
		s.reportReadError("Error verifying products", err)
		return v
	}

	total := page.TotalElements
	v.Products = &total
	v.TotalPages = page.TotalPages
	v.PageSize = page.Size
	s.out.OK("Total products in DB: %d", total)
	s.out.Info("Pagination: %d pages of %d elements", page.TotalPages, page.Size)
	return v
}

func (s *Seeder) countCollection(ctx context.Context, path, kind string) *int64 {
	callCtx, cancel := context.WithTimeout(ctx, s.apiCfg.RequestTimeoutDuration())
	defer cancel()

	raw, err := s.client.ListRaw(callCtx, path, nil)
	if err != nil {
		s.reportReadError("Error verifying "+kind, err)
		return nil
	}

	n, err := api.CountCollection(raw)
	if err != nil {
		s.reportReadError("Error verifying "+kind, err)
		return nil
	}

	s.out.OK("Total %s in DB: %d", kind, n)
	return &n
}

// SmokeCase — один запрос к эндпоинту пагинации.
type SmokeCase struct {
	Name  string
	Fetch func(ctx context.Context, c *api.Client) (*api.Page, error)
}

// SmokeResult — итог одного smoke-теста.
type SmokeResult struct {
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Returned int    `json:"returned"`
	Error    string `json:"error,omitempty"`
}

// DefaultSmokeCases — набор проверок эндпоинтов пагинации.
var DefaultSmokeCases = []SmokeCase{
	{
		Name: "Basic pagination (page 0, size 5)",
		Fetch: func(ctx context.Context, c *api.Client) (*api.Page, error) {
			return c.ListProducts(ctx, api.PageRequest{Page: 0, Size: 5})
		},
	},
	{
		Name: "Sorted pagination (price descending)",
		Fetch: func(ctx context.Context, c *api.Client) (*api.Page, error) {
			return c.ListProducts(ctx, api.PageRequest{Page: 0, Size: 10, Sort: []string{"price,desc"}})
		},
	},
	{
		Name: "Slice pagination (no total count)",
		Fetch: func(ctx context.Context, c *api.Client) (*api.Page, error) {
			return c.SliceProducts(ctx, api.PageRequest{Page: 0, Size: 10})
		},
	},
	{
		Name: "Filtered search (price 100-500)",
		Fetch: func(ctx context.Context, c *api.Client) (*api.Page, error) {
			return c.SearchProducts(ctx, api.PriceFilter{MinPrice: 100, MaxPrice: 500}, api.PageRequest{Page: 0, Size: 5})
		},
	},
}

// RunSmokeTests выполняет DefaultSmokeCases и печатает итог каждого.
func (s *Seeder) RunSmokeTests(ctx context.Context) []SmokeResult {
	s.out.Section("PAGINATION ENDPOINT TESTS")

	results := make([]SmokeResult, 0, len(DefaultSmokeCases))
	for _, tc := range DefaultSmokeCases {
		if ctx.Err() != nil {
			break
		}

		callCtx, cancel := context.WithTimeout(ctx, s.apiCfg.RequestTimeoutDuration())
		page, err := tc.Fetch(callCtx, s.client)
		cancel()

		if err != nil {
			var statusErr *api.StatusError
			if errors.As(err, &statusErr) {
				s.out.Error("%s: Status %d", tc.Name, statusErr.StatusCode)
			} else {
				s.out.Error("%s: %v", tc.Name, err)
			}
			utils.Warn("Smoke test failed", "name", tc.Name, "error", err)
			results = append(results, SmokeResult{Name: tc.Name, Error: err.Error()})
			continue
		}

		r := SmokeResult{Name: tc.Name, OK: true, Returned: len(page.Content)}
		if page.HasContent {
			s.out.OK("%s: %d elements returned", tc.Name, r.Returned)
		} else {
			s.out.OK("%s: response received", tc.Name)
		}
		results = append(results, r)
	}
	return results
}

func (s *Seeder) reportReadError(prefix string, err error) {
	utils.Warn(prefix, "error", err)

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		s.out.Error("%s: Status %d", prefix, statusErr.StatusCode)
		return
	}
	s.out.Error("%s: %v", prefix, err)
}

package seeder

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/pagination-seeder/pkg/api"
	"github.com/ilkoid/pagination-seeder/pkg/config"
	"github.com/ilkoid/pagination-seeder/pkg/console"
)

func TestSeedUsersAllSucceed(t *testing.T) {
	h := newHarness(t, 1)

	ids, err := h.seeder.SeedUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	assert.Contains(t, h.out.String(), "[OK] Created user: Juan Pérez (ID: 1)")
	assert.Contains(t, h.out.String(), "[INFO] Total user records created: 5")
}

func TestSeedUsersOneFails(t *testing.T) {
	h := newHarness(t, 1)
	h.service.set(func(f *fakeService) {
		f.userHook = func(n int) int {
			if n == 3 {
				return http.StatusConflict
			}
			return 0
		}
	})

	ids, err := h.seeder.SeedUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 4)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
	assert.Contains(t, h.out.String(), "[WARNING] Could not create user Carlos López: 409")
}

func TestSeedCategoriesMissingIDSkipped(t *testing.T) {
	h := newHarness(t, 1)
	// 200 без поля id
	h.service.set(func(f *fakeService) {
		f.categoryHook = func(n int) int {
			if n == 2 {
				return http.StatusOK
			}
			return 0
		}
	})

	ids, err := h.seeder.SeedCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, h.out.String(), "Could not create category Gaming")
}

func TestCheckConnection(t *testing.T) {
	h := newHarness(t, 1)
	assert.True(t, h.seeder.CheckConnection(context.Background()))

	h.service.set(func(f *fakeService) { f.healthStatus = http.StatusServiceUnavailable })
	assert.False(t, h.seeder.CheckConnection(context.Background()))
	assert.Contains(t, h.out.String(), "[ERROR] Application returned status 503")
}

type failingHTTPClient struct{ err error }

func (f failingHTTPClient) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestCheckConnectionPrintsHint(t *testing.T) {
	cfg := config.Default()
	client, err := api.NewFromConfig(cfg.API, api.WithHTTPClient(failingHTTPClient{err: errors.New("tls: handshake failure")}))
	require.NoError(t, err)

	var out strings.Builder
	s := New(cfg, client, console.NewPlain(&out))

	assert.False(t, s.CheckConnection(context.Background()))
	assert.Contains(t, out.String(), "[ERROR] Error connecting: GET /actuator/health: tls: handshake failure")
	assert.Contains(t, out.String(), "[INFO] "+api.ErrUnknown.HumanMessage())
}

func TestSeedUsersBrokenBodyPrintsHint(t *testing.T) {
	h := newHarness(t, 1)
	h.service.set(func(f *fakeService) {
		f.userHook = func(n int) int {
			if n == 2 {
				return statusBrokenBody
			}
			return 0
		}
	})

	ids, err := h.seeder.SeedUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 4)

	out := h.out.String()
	assert.Contains(t, out, "[ERROR] Error creating user ")
	assert.Contains(t, out, "[INFO] "+api.ErrDecode.HumanMessage())
}

func TestCreateProductsBrokenBodyPrintsHint(t *testing.T) {
	h := newHarness(t, 3)
	h.service.set(func(f *fakeService) {
		f.productHook = func(n int) int {
			if n == 1 {
				return statusBrokenBody
			}
			return 0
		}
	})

	res, err := h.seeder.CreateProducts(context.Background(), []int64{1}, []int64{2}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Failed)

	out := h.out.String()
	assert.Contains(t, out, "[WARNING] Error creating product 1: ")
	assert.Contains(t, out, "[INFO] "+api.ErrDecode.HumanMessage())
}

func TestExecuteConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := config.Default()
	cfg.API.BaseURL = "http://" + addr
	client, err := api.NewFromConfig(cfg.API)
	require.NoError(t, err)

	var out strings.Builder
	s := New(cfg, client, console.NewPlain(&out))

	assert.Equal(t, 1, s.Execute(context.Background()))
	assert.Contains(t, out.String(), "[ERROR] Cannot connect to http://"+addr)
	assert.Contains(t, out.String(), "[INFO] Make sure the application is running")
}

func TestExecuteNoUsersAborts(t *testing.T) {
	h := newHarness(t, 10)
	h.service.set(func(f *fakeService) {
		f.userHook = func(int) int { return http.StatusInternalServerError }
	})

	code := h.seeder.Execute(context.Background())

	assert.Equal(t, 1, code)
	assert.Equal(t, 5, h.service.count("POST "+api.PathUsers))
	assert.Zero(t, h.service.count("POST "+api.PathCategories))
	assert.Zero(t, h.service.count("POST "+api.PathProducts))
	assert.Contains(t, h.out.String(), "[ERROR] No users could be created")
}

func TestExecuteNoCategoriesAborts(t *testing.T) {
	h := newHarness(t, 10)
	h.service.set(func(f *fakeService) {
		f.categoryHook = func(int) int { return http.StatusBadRequest }
	})

	code := h.seeder.Execute(context.Background())

	assert.Equal(t, 1, code)
	assert.Zero(t, h.service.count("POST "+api.PathProducts))
	assert.Contains(t, h.out.String(), "[ERROR] No categories could be created")
}

func TestRunProceedsWithPartialUsers(t *testing.T) {
	h := newHarness(t, 20)
	h.service.set(func(f *fakeService) {
		f.userHook = func(n int) int {
			if n == 5 {
				return http.StatusBadRequest
			}
			return 0
		}
	})

	summary, err := h.seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.UserIDs, 4)
	assert.Len(t, summary.CategoryIDs, 3)
	assert.Equal(t, 20, summary.Products.Created)
}

func TestCreateProductsEveryTenthFails(t *testing.T) {
	h := newHarness(t, 100)
	h.service.set(func(f *fakeService) {
		f.productHook = func(n int) int {
			if n%10 == 0 {
				return http.StatusInternalServerError
			}
			return 0
		}
	})

	res, err := h.seeder.CreateProducts(context.Background(), []int64{1, 2}, []int64{3, 4, 5}, 100)
	require.NoError(t, err)
	assert.Equal(t, 90, res.Created)
	assert.Equal(t, 10, res.Failed)
	assert.Equal(t, 100, res.Requested)

	out := h.out.String()
	assert.Contains(t, out, "[OK] Products created: 90/100")
	assert.Contains(t, out, "[WARNING] Products not created: 10")
	assert.Contains(t, out, "[INFO] Progress: 0/100")
	assert.Contains(t, out, "[INFO] Progress: 50/100")
	assert.Equal(t, 2, strings.Count(out, "Progress:"))
}

func TestCreateProductsReportsOnlyFirstFailures(t *testing.T) {
	h := newHarness(t, 30)
	h.service.set(func(f *fakeService) {
		f.productHook = func(int) int { return http.StatusBadRequest }
	})

	res, err := h.seeder.CreateProducts(context.Background(), []int64{1}, []int64{2}, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Failed)
	assert.Equal(t, 10, strings.Count(h.out.String(), "Error creating product"))
	assert.Contains(t, h.out.String(), "Error creating product 1: Status 400")
	assert.NotContains(t, h.out.String(), "Error creating product 11:")
}

func TestCreateProductsRequiresIDs(t *testing.T) {
	h := newHarness(t, 5)
	_, err := h.seeder.CreateProducts(context.Background(), nil, []int64{1}, 5)
	assert.Error(t, err)
}

func TestExecuteInterruptedDuringBulk(t *testing.T) {
	h := newHarness(t, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var once sync.Once
	h.service.set(func(f *fakeService) {
		f.onProduct = func(n int) {
			if n == 5 {
				once.Do(cancel)
			}
		}
	})

	code := h.seeder.Execute(ctx)

	assert.Equal(t, 0, code)
	assert.Less(t, h.service.count("POST "+api.PathProducts), 100)
	assert.Contains(t, h.out.String(), "[WARNING] Script interrupted by user")
	assert.NotContains(t, h.out.String(), "SUMMARY")
}

func TestVerifyData(t *testing.T) {
	h := newHarness(t, 1)
	h.service.set(func(f *fakeService) { f.usersAsArray = true })

	v := h.seeder.VerifyData(context.Background())
	require.NotNil(t, v.Users)
	require.NotNil(t, v.Categories)
	require.NotNil(t, v.Products)
	assert.Equal(t, int64(5), *v.Users)
	assert.Equal(t, int64(3), *v.Categories)
	assert.Equal(t, int64(1000), *v.Products)
	assert.Equal(t, 1000, v.TotalPages)
	assert.Equal(t, 1, v.PageSize)

	out := h.out.String()
	assert.Contains(t, out, "[OK] Total users in DB: 5")
	assert.Contains(t, out, "[INFO] Pagination: 1000 pages of 1 elements")
}

func TestRunSmokeTests(t *testing.T) {
	h := newHarness(t, 1)

	results := h.seeder.RunSmokeTests(context.Background())
	require.Len(t, results, 4)

	assert.True(t, results[0].OK)
	assert.Equal(t, 5, results[0].Returned)
	assert.Equal(t, 10, results[1].Returned)
	assert.Equal(t, 10, results[2].Returned)
	assert.False(t, results[3].OK)

	out := h.out.String()
	assert.Contains(t, out, "[OK] Basic pagination (page 0, size 5): 5 elements returned")
	assert.Contains(t, out, "[ERROR] Filtered search (price 100-500): Status 500")
}

func TestRunSmokeTestsPlainArrayResponses(t *testing.T) {
	h := newHarness(t, 1)
	h.service.set(func(f *fakeService) { f.productsAsArray = true })

	results := h.seeder.RunSmokeTests(context.Background())
	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.OK, r.Name)
	}

	out := h.out.String()
	assert.Equal(t, 4, strings.Count(out, ": response received"))
	assert.NotContains(t, out, "[ERROR]")
}

type fakeUploader struct {
	key  string
	data []byte
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.key = key
	f.data = data
	return f.err
}

func TestExecuteSuccessUploadsReport(t *testing.T) {
	up := &fakeUploader{}
	h := newHarness(t, 10, WithUploader(up))

	code := h.seeder.Execute(context.Background())
	assert.Equal(t, 0, code)

	out := h.out.String()
	assert.Contains(t, out, "[OK] Script completed successfully")
	assert.Contains(t, out, "/api/products?page=0&size=10&sort=price,desc'")

	require.NotEmpty(t, up.data)
	assert.True(t, strings.HasPrefix(up.key, "pagination-seeder/"))
	assert.True(t, strings.HasSuffix(up.key, "/test-run.json"))
	assert.Contains(t, string(up.data), `"run_id": "test-run"`)
	assert.Contains(t, string(up.data), `"created": 10`)
}

func TestExecuteUploadFailureIsWarning(t *testing.T) {
	up := &fakeUploader{err: errors.New("bucket not found")}
	h := newHarness(t, 3, WithUploader(up))

	assert.Equal(t, 0, h.seeder.Execute(context.Background()))
	assert.Contains(t, h.out.String(), "[WARNING] Could not upload run report: bucket not found")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 0, ExitCode(context.Canceled))
	assert.Equal(t, 1, ExitCode(ErrServiceUnavailable))
	assert.Equal(t, 1, ExitCode(ErrNoUsers))
	assert.Equal(t, 1, ExitCode(ErrNoCategories))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}

package seeder

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ilkoid/pagination-seeder/pkg/api"
	"github.com/ilkoid/pagination-seeder/pkg/config"
	"github.com/ilkoid/pagination-seeder/pkg/console"
	"github.com/ilkoid/pagination-seeder/pkg/generator"
)

// fakeService — REST сервис в памяти.
//
// По умолчанию все эндпоинты отвечают успехом. Поведение отдельных вызовов
// меняется через хуки: hook получает порядковый номер вызова (с 1) и
// возвращает статус; 0 — отвечать как обычно. Успешный статус из хука
// означает ответ без поля id, statusBrokenBody — 201 с телом не-JSON.
type fakeService struct {
	mu sync.Mutex

	nextID int64
	calls  map[string]int

	healthStatus int
	userHook     func(n int) int
	categoryHook func(n int) int
	productHook  func(n int) int
	onProduct    func(n int)

	usersAsArray    bool
	productsAsArray bool
}

const statusBrokenBody = -1

func newFakeService() *fakeService {
	return &fakeService{calls: map[string]int{}, healthStatus: http.StatusOK}
}

// set меняет поведение сервиса под мьютексом.
func (f *fakeService) set(fn func(f *fakeService)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeService) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	key := r.Method + " " + r.URL.Path
	f.calls[key]++
	n := f.calls[key]
	healthStatus := f.healthStatus
	userHook, categoryHook, productHook := f.userHook, f.categoryHook, f.productHook
	onProduct := f.onProduct
	usersAsArray := f.usersAsArray
	productsAsArray := f.productsAsArray
	f.mu.Unlock()

	if productsAsArray && r.Method == http.MethodGet &&
		(r.URL.Path == api.PathProducts || r.URL.Path == api.PathProductsSlice || r.URL.Path == api.PathProductsSearch) {
		fmt.Fprintf(w, `[%s]`, items(r.URL.Query().Get("size")))
		return
	}

	switch key {
	case "GET " + api.PathHealth:
		w.WriteHeader(healthStatus)
		fmt.Fprint(w, `{"status":"UP"}`)
	case "POST " + api.PathUsers:
		f.create(w, userHook, n)
	case "POST " + api.PathCategories:
		f.create(w, categoryHook, n)
	case "POST " + api.PathProducts:
		if onProduct != nil {
			onProduct(n)
		}
		f.create(w, productHook, n)
	case "GET " + api.PathUsers:
		if usersAsArray {
			fmt.Fprint(w, `[{"id":1},{"id":2},{"id":3},{"id":4},{"id":5}]`)
			return
		}
		fmt.Fprint(w, `{"content":[],"totalElements":5}`)
	case "GET " + api.PathCategories:
		fmt.Fprint(w, `[{"id":1},{"id":2},{"id":3}]`)
	case "GET " + api.PathProducts:
		fmt.Fprintf(w, `{"content":[%s],"totalElements":1000,"totalPages":%d,"size":%s}`,
			items(r.URL.Query().Get("size")), 1000, r.URL.Query().Get("size"))
	case "GET " + api.PathProductsSlice:
		fmt.Fprintf(w, `{"content":[%s],"hasNext":true}`, items(r.URL.Query().Get("size")))
	case "GET " + api.PathProductsSearch:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) create(w http.ResponseWriter, hook func(int) int, n int) {
	if hook != nil {
		switch status := hook(n); status {
		case 0:
		case statusBrokenBody:
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `<html>oops</html>`)
			return
		default:
			w.WriteHeader(status)
			if status == http.StatusOK || status == http.StatusCreated {
				fmt.Fprint(w, `{"name":"no id"}`)
			}
			return
		}
	}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	fmt.Fprintf(w, `{"id":%d}`, id)
}

func items(size string) string {
	var n int
	fmt.Sscanf(size, "%d", &n)
	var b bytes.Buffer
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"id":%d}`, i)
	}
	return b.String()
}

type harness struct {
	seeder  *Seeder
	service *fakeService
	out     *bytes.Buffer
}

func newHarness(t *testing.T, productCount int, opts ...Option) *harness {
	t.Helper()

	svc := newFakeService()
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	cfg.Seed.ProductCount = productCount

	client, err := api.NewFromConfig(cfg.API)
	require.NoError(t, err)

	var out bytes.Buffer
	opts = append([]Option{WithGenerator(generator.New(1)), WithRunID("test-run")}, opts...)
	s := New(cfg, client, console.NewPlain(&out), opts...)

	return &harness{seeder: s, service: svc, out: &out}
}

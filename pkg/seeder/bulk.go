package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ilkoid/pagination-seeder/pkg/api"
	"github.com/ilkoid/pagination-seeder/pkg/utils"
)

// BulkResult — итог массового создания продуктов.
type BulkResult struct {
	Requested int           `json:"requested"`
	Created   int           `json:"created"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Rate возвращает скорость создания в продуктах в секунду.
func (r BulkResult) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Created) / r.Elapsed.Seconds()
}

// CreateProducts создаёт n случайных продуктов последовательно.
//
// Прогресс печатается каждые seed.progress_every итераций, подробно
// печатаются только первые seed.max_reported_failures ошибок.
// Retry нет: неудачный продукт просто считается в Failed.
// При отмене ctx возвращает накопленный результат и ctx.Err().
func (s *Seeder) CreateProducts(ctx context.Context, userIDs, categoryIDs []int64, n int) (BulkResult, error) {
	s.out.Section(fmt.Sprintf("CREATING %d PRODUCTS", n))

	res := BulkResult{Requested: n}
	if n > 0 && (len(userIDs) == 0 || len(categoryIDs) == 0) {
		return res, fmt.Errorf("cannot create products: users=%d categories=%d", len(userIDs), len(categoryIDs))
	}

	start := s.now()
	defer func() {
		utils.Info("Bulk creation finished", "created", res.Created, "failed", res.Failed, "requested", n)
	}()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			res.Elapsed = s.now().Sub(start)
			return res, err
		}

		if i%s.seedCfg.ProgressEvery == 0 {
			s.out.Info("Progress: %d/%d products processed (%d created)", i, n, res.Created)
		}

		product := s.gen.Product(userIDs, categoryIDs)

		callCtx, cancel := context.WithTimeout(ctx, s.apiCfg.RequestTimeoutDuration())
		_, err := s.client.CreateProduct(callCtx, product)
		cancel()

		if err == nil {
			res.Created++
			continue
		}
		if ctx.Err() != nil {
			res.Elapsed = s.now().Sub(start)
			return res, ctx.Err()
		}

		res.Failed++
		errType := api.ClassifyError(err)
		utils.Debug("Product creation failed", "index", i+1, "type", errType.String(), "error", err)
		if res.Failed <= s.seedCfg.MaxReportedFailures {
			var statusErr *api.StatusError
			if errors.As(err, &statusErr) {
				s.out.Warning("Error creating product %d: Status %d", i+1, statusErr.StatusCode)
			} else {
				s.out.Warning("Error creating product %d: %v", i+1, err)
				s.out.Info("%s", errType.HumanMessage())
			}
		}
	}

	res.Elapsed = s.now().Sub(start)

	s.out.OK("Products created: %d/%d", res.Created, n)
	if res.Failed > 0 {
		s.out.Warning("Products not created: %d", res.Failed)
	}
	return res, nil
}

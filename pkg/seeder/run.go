package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ilkoid/pagination-seeder/pkg/s3storage"
	"github.com/ilkoid/pagination-seeder/pkg/utils"
)

// Фатальные условия прогона.
var (
	ErrServiceUnavailable = errors.New("service is not available")
	ErrNoUsers            = errors.New("no users could be created")
	ErrNoCategories       = errors.New("no categories could be created")
)

// Summary — итоги прогона. Сериализуется в JSON для отчёта в S3.
type Summary struct {
	RunID        string        `json:"run_id"`
	BaseURL      string        `json:"base_url"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	UserIDs      []int64       `json:"user_ids"`
	CategoryIDs  []int64       `json:"category_ids"`
	Products     BulkResult    `json:"products"`
	Verification Verification  `json:"verification"`
	Smoke        []SmokeResult `json:"smoke"`
}

// ExitCode переводит результат прогона в код выхода процесса.
// Прерывание оператором — штатное завершение.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}

// Run выполняет все фазы по порядку.
//
// Возвращает ErrServiceUnavailable, ErrNoUsers, ErrNoCategories на гейтах
// и ctx.Err() при прерывании. Summary заполнен настолько, насколько прогон успел дойти.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     s.runID,
		BaseURL:   s.client.BaseURL(),
		StartedAt: s.now(),
	}
	defer func() { summary.FinishedAt = s.now() }()

	s.out.Banner("PAGINATION TEST DATA SEEDER", "REST API: "+s.client.BaseURL())
	utils.Info("Run started", "run_id", s.runID, "base_url", s.client.BaseURL(), "products", s.seedCfg.ProductTotal())

	if !s.CheckConnection(ctx) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		return summary, ErrServiceUnavailable
	}

	users, err := s.SeedUsers(ctx)
	summary.UserIDs = users
	if err != nil {
		return summary, err
	}
	if len(users) == 0 {
		return summary, ErrNoUsers
	}

	categories, err := s.SeedCategories(ctx)
	summary.CategoryIDs = categories
	if err != nil {
		return summary, err
	}
	if len(categories) == 0 {
		return summary, ErrNoCategories
	}

	s.out.Section("BULK PRODUCT CREATION")
	s.out.Info("This may take a few minutes...")

	res, err := s.CreateProducts(ctx, users, categories, s.seedCfg.ProductTotal())
	summary.Products = res
	s.out.Info("Total time: %.2f seconds", res.Elapsed.Seconds())
	s.out.Info("Speed: %.0f products/second", res.Rate())
	if err != nil {
		return summary, err
	}

	summary.Verification = s.VerifyData(ctx)
	summary.Smoke = s.RunSmokeTests(ctx)
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	utils.Info("Run finished", "run_id", s.runID, "created", res.Created, "failed", res.Failed)
	return summary, nil
}

// Execute выполняет Run, печатает итоговый блок или причину остановки
// и возвращает код выхода процесса.
func (s *Seeder) Execute(ctx context.Context) (code int) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("Unexpected panic", "panic", r)
			s.out.Error("Unexpected error: %v", r)
			code = 1
		}
	}()

	summary, err := s.Run(ctx)
	switch {
	case err == nil:
		s.PrintSummary()
		s.uploadReport(ctx, summary)
	case errors.Is(err, context.Canceled):
		s.out.Warning("Script interrupted by user")
	case errors.Is(err, ErrServiceUnavailable):
		// причина уже напечатана CheckConnection
	case errors.Is(err, ErrNoUsers), errors.Is(err, ErrNoCategories):
		s.out.Error("%s", capitalize(err.Error()))
	default:
		s.out.Error("Unexpected error: %v", err)
	}

	if err != nil {
		utils.Error("Run stopped", "run_id", s.runID, "error", err)
	}
	return ExitCode(err)
}

// PrintSummary печатает итоговый блок с примерами запросов.
func (s *Seeder) PrintSummary() {
	base := s.client.BaseURL()

	s.out.Section("SUMMARY")
	s.out.OK("Script completed successfully")
	s.out.Info("You can now try the pagination endpoints:")
	s.out.Blank()
	s.out.Block("Basic pagination:", fmt.Sprintf("curl '%s/api/products?page=0&size=10'", base))
	s.out.Block("With sorting:", fmt.Sprintf("curl '%s/api/products?page=0&size=10&sort=price,desc'", base))
	s.out.Block("With Slice:", fmt.Sprintf("curl '%s/api/products/slice?page=0&size=10'", base))
	s.out.Block("With filters:", fmt.Sprintf("curl '%s/api/products/search?minPrice=100&maxPrice=500&page=0&size=5'", base))
}

// uploadReport выгружает Summary в S3, если включено. Ошибка — только предупреждение.
func (s *Seeder) uploadReport(ctx context.Context, summary *Summary) {
	if s.uploader == nil || summary == nil {
		return
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		s.out.Warning("Could not encode run report: %v", err)
		return
	}

	key := s3storage.ReportKey(s.reportCfg.Prefix, s.runID, summary.StartedAt)

	callCtx, cancel := context.WithTimeout(ctx, s.apiCfg.RequestTimeoutDuration())
	defer cancel()

	if err := s.uploader.Upload(callCtx, key, data, "application/json"); err != nil {
		utils.Warn("Report upload failed", "key", key, "error", err)
		s.out.Warning("Could not upload run report: %v", err)
		return
	}
	utils.Info("Report uploaded", "key", key)
	s.out.Info("Run report uploaded: %s", key)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

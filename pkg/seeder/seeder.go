// Package seeder — линейный прогон наполнения REST сервиса тестовыми данными.
//
// Фазы идут строго по порядку:
//  1. проверка доступности (жёсткий гейт)
//  2. создание пользователей (гейт: хотя бы один)
//  3. создание категорий (гейт: хотя бы одна)
//  4. массовое создание продуктов
//  5. проверка данных и smoke-тесты пагинации
//
// Ошибки отдельных запросов не фатальны: печатаются, считаются и пропускаются.
// Всё выполняется в одной горутине, один HTTP запрос за раз.
package seeder

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/pagination-seeder/pkg/api"
	"github.com/ilkoid/pagination-seeder/pkg/config"
	"github.com/ilkoid/pagination-seeder/pkg/console"
	"github.com/ilkoid/pagination-seeder/pkg/generator"
	"github.com/ilkoid/pagination-seeder/pkg/s3storage"
	"github.com/ilkoid/pagination-seeder/pkg/utils"
)

// Seeder связывает клиент сервиса, генератор и консольный вывод.
type Seeder struct {
	client *api.Client
	out    *console.Printer
	gen    *generator.Generator

	apiCfg    config.APIConfig
	seedCfg   config.SeedConfig
	reportCfg config.ReportConfig
	uploader  s3storage.Uploader

	runID      string
	users      []api.UserRequest
	categories []api.CategoryRequest
	now        func() time.Time
}

// Option настраивает Seeder.
type Option func(*Seeder)

// WithGenerator подменяет генератор (например, засеянный в тестах).
func WithGenerator(g *generator.Generator) Option {
	return func(s *Seeder) { s.gen = g }
}

// WithUploader включает выгрузку отчёта прогона.
func WithUploader(u s3storage.Uploader) Option {
	return func(s *Seeder) { s.uploader = u }
}

// WithRunID задаёт идентификатор прогона.
func WithRunID(id string) Option {
	return func(s *Seeder) { s.runID = id }
}

// WithFixtures подменяет наборы пользователей и категорий.
func WithFixtures(users []api.UserRequest, categories []api.CategoryRequest) Option {
	return func(s *Seeder) {
		s.users = users
		s.categories = categories
	}
}

// New создаёт Seeder. Секции cfg с нулевыми полями получают дефолты.
func New(cfg *config.AppConfig, client *api.Client, out *console.Printer, opts ...Option) *Seeder {
	s := &Seeder{
		client:     client,
		out:        out,
		apiCfg:     cfg.API.GetDefaults(),
		seedCfg:    cfg.Seed.GetDefaults(),
		reportCfg:  cfg.Report.GetDefaults(),
		users:      DefaultUsers,
		categories: DefaultCategories,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		s.gen = generator.New(s.seedCfg.Seed)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	return s
}

// RunID возвращает идентификатор прогона.
func (s *Seeder) RunID() string {
	return s.runID
}

// CheckConnection проверяет доступность сервиса.
//
// Отказ в соединении, неожиданный статус и прочие ошибки печатаются
// по-разному, но все означают "сервис недоступен".
func (s *Seeder) CheckConnection(ctx context.Context) bool {
	s.out.Section("CHECKING CONNECTION")

	callCtx, cancel := context.WithTimeout(ctx, s.apiCfg.HealthTimeoutDuration())
	defer cancel()

	err := s.client.Health(callCtx)
	if err == nil {
		s.out.OK("Connection established with the application")
		utils.Info("Health check passed", "base_url", s.client.BaseURL())
		return true
	}

	errType := api.ClassifyError(err)
	utils.Error("Health check failed", "base_url", s.client.BaseURL(), "type", errType.String(), "error", err)

	var statusErr *api.StatusError
	switch {
	case errors.As(err, &statusErr):
		s.out.Error("Application returned status %d", statusErr.StatusCode)
	case errType == api.ErrConnectionRefused:
		s.out.Error("Cannot connect to %s", s.client.BaseURL())
		s.out.Info("Make sure the application is running")
	default:
		s.out.Error("Error connecting: %v", err)
		s.out.Info("%s", errType.HumanMessage())
	}
	return false
}

// SeedUsers создаёт пользователей по порядку и возвращает их id.
func (s *Seeder) SeedUsers(ctx context.Context) ([]int64, error) {
	s.out.Section("CREATING USERS")
	return seedEntities(ctx, s, "user", s.users,
		func(u api.UserRequest) string { return u.Name },
		s.client.CreateUser)
}

// SeedCategories создаёт категории по порядку и возвращает их id.
func (s *Seeder) SeedCategories(ctx context.Context) ([]int64, error) {
	s.out.Section("CREATING CATEGORIES")
	return seedEntities(ctx, s, "category", s.categories,
		func(c api.CategoryRequest) string { return c.Name },
		s.client.CreateCategory)
}

// seedEntities отправляет записи по одной. Неудачная запись пропускается,
// порядок id соответствует порядку входных записей.
// Ошибка возвращается только при отмене ctx.
func seedEntities[T any](
	ctx context.Context,
	s *Seeder,
	kind string,
	items []T,
	label func(T) string,
	create func(context.Context, T) (int64, error),
) ([]int64, error) {
	ids := make([]int64, 0, len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return ids, err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.apiCfg.RequestTimeoutDuration())
		id, err := create(callCtx, item)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ids, ctx.Err()
			}
			errType := api.ClassifyError(err)
			utils.Warn("Create failed", "kind", kind, "name", label(item), "type", errType.String(), "error", err)

			var statusErr *api.StatusError
			switch {
			case errors.As(err, &statusErr):
				s.out.Warning("Could not create %s %s: %d", kind, label(item), statusErr.StatusCode)
			case errors.Is(err, api.ErrMissingID):
				s.out.Warning("Could not create %s %s: response has no id", kind, label(item))
			default:
				s.out.Error("Error creating %s %s: %v", kind, label(item), err)
				s.out.Info("%s", errType.HumanMessage())
			}
			continue
		}

		ids = append(ids, id)
		s.out.OK("Created %s: %s (ID: %d)", kind, label(item), id)
	}

	s.out.Info("Total %s records created: %d", kind, len(ids))
	return ids, nil
}

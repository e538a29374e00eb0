// pagination-seeder — CLI утилита наполнения REST сервиса тестовыми данными
// для проверки пагинации: 5 пользователей, 3 категории, 1000 продуктов.
//
// Использование:
//
//	./pagination-seeder
//
// Флагов нет. config.yaml ищется рядом с бинарником (или SEEDER_CONFIG);
// если его нет — работаем на дефолтах против http://localhost:8080.
package main

import (
	"fmt"
	"os"

	"github.com/ilkoid/pagination-seeder/pkg/api"
	"github.com/ilkoid/pagination-seeder/pkg/config"
	"github.com/ilkoid/pagination-seeder/pkg/console"
	"github.com/ilkoid/pagination-seeder/pkg/s3storage"
	"github.com/ilkoid/pagination-seeder/pkg/seeder"
	"github.com/ilkoid/pagination-seeder/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	out := console.New(os.Stdout)

	// 1. Конфиг (необязателен)
	cfg, cfgPath, err := config.LoadOrDefault(&config.DefaultPathFinder{})
	if err != nil {
		out.Error("Error loading config from %s: %v", cfgPath, err)
		return 1
	}

	// 2. Файловый лог, если задан
	if err := utils.InitLogger(cfg.App.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}

	// 3. Ctrl+C отменяет контекст, shutdown закрывает лог
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	utils.Info("Starting pagination-seeder", "version", Version, "config", cfgPath)
	if cfg.App.Debug && cfgPath != "" {
		out.Info("Config loaded from %s", cfgPath)
	}

	client, err := api.NewFromConfig(cfg.API)
	if err != nil {
		out.Error("Error creating API client: %v", err)
		return 1
	}

	var opts []seeder.Option
	if cfg.Report.Enabled {
		s3Client, err := s3storage.New(cfg.Report.S3)
		if err != nil {
			// Отчёт вторичен: прогон продолжаем без него
			out.Warning("Run report disabled, S3 client error: %v", err)
			utils.Warn("S3 client creation failed", "error", err)
		} else {
			opts = append(opts, seeder.WithUploader(s3Client))
		}
	}

	return seeder.New(cfg, client, out, opts...).Execute(ctx)
}

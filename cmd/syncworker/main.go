// Comando syncworker: agendador interno de sincronização e faturamento.
// Roda o mesmo motor do gatilho HTTP em lote, para todas as locadoras, no
// horário da expressão cron configurada (SYNC_CRON). O limite de paralelismo
// (SYNC_WORKERS) evita afogar o provedor de telemetria.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/locafleet/locafleet-api/internal/application/audit"
	"github.com/locafleet/locafleet-api/internal/application/billing"
	"github.com/locafleet/locafleet-api/internal/application/fleetsync"
	"github.com/locafleet/locafleet-api/internal/domain"
	"github.com/locafleet/locafleet-api/internal/domain/entity"
	"github.com/locafleet/locafleet-api/internal/domain/repository"
	"github.com/locafleet/locafleet-api/internal/infrastructure/gateway"
	"github.com/locafleet/locafleet-api/internal/infrastructure/postgres"
	"github.com/locafleet/locafleet-api/internal/infrastructure/telemetry"
	"github.com/locafleet/locafleet-api/pkg/config"
	"github.com/locafleet/locafleet-api/pkg/logger"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("cron", cfg.Sync.CronSpec).
		Int("workers", cfg.Sync.Workers).
		Msg("iniciando syncworker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	tenantRepo := postgres.NewTenantRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	logRepo := postgres.NewIntegrationLogRepository(pool)

	sink := audit.NewSink(logRepo, log)

	telemetryClient := telemetry.NewClient(
		cfg.Telemetry.BaseURL,
		time.Duration(cfg.Telemetry.TimeoutSeconds)*time.Second,
		cfg.Telemetry.RetryMax,
	)
	reconcileUC := fleetsync.NewReconcileUseCase(
		tenantRepo, customerRepo, vehicleRepo, telemetryClient, sink, log,
	)

	authClient := gateway.NewAuthClient(30 * time.Second)
	chargeClient := gateway.NewChargeClient(30 * time.Second)
	billingUC := billing.NewCycleUseCase(
		tenantRepo, contractRepo, customerRepo, invoiceRepo,
		authClient, chargeClient, sink, log,
		billing.Config{
			LookAheadDays: cfg.Sync.LookAheadDays,
			DueOffsetDays: cfg.Sync.DueOffsetDays,
			CycleDays:     cfg.Sync.CycleDays,
		},
	)

	worker := &batchWorker{
		tenantRepo:  tenantRepo,
		reconcileUC: reconcileUC,
		billingUC:   billingUC,
		cooldown:    time.Duration(cfg.Sync.CooldownMinutes) * time.Minute,
		workers:     cfg.Sync.Workers,
		log:         log,
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sync.CronSpec, func() { worker.runBatch(ctx) }); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Sync.CronSpec).Msg("expressão cron inválida")
	}
	c.Start()

	<-ctx.Done()
	log.Info().Msg("sinal de desligamento recebido, aguardando execuções em curso...")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(2 * time.Minute):
		log.Warn().Msg("timeout aguardando o cron encerrar")
	}
	log.Info().Msg("syncworker encerrado")
}

// batchWorker processa todas as locadoras com paralelismo limitado.
type batchWorker struct {
	tenantRepo  repository.TenantRepository
	reconcileUC *fleetsync.ReconcileUseCase
	billingUC   *billing.CycleUseCase
	cooldown    time.Duration
	workers     int
	log         *logger.Logger
}

func (w *batchWorker) runBatch(ctx context.Context) {
	tenants, err := w.tenantRepo.List()
	if err != nil {
		w.log.Error().Err(err).Msg("listar locadoras")
		return
	}
	w.log.Info().Int("tenants", len(tenants)).Msg("lote de sincronização iniciado")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for _, tenant := range tenants {
		tenant := tenant
		g.Go(func() error {
			w.processTenant(gctx, tenant)
			return nil // falha de uma locadora nunca derruba o lote
		})
	}
	_ = g.Wait()
	w.log.Info().Msg("lote de sincronização concluído")
}

func (w *batchWorker) processTenant(ctx context.Context, tenant *entity.Tenant) {
	if ctx.Err() != nil {
		return
	}

	if tenant.LastSyncedAt == nil || time.Since(*tenant.LastSyncedAt) >= w.cooldown {
		if _, err := w.reconcileUC.ReconcileTenant(ctx, tenant.ID); err != nil {
			if err != domain.ErrConfigMissing {
				w.log.Error().Err(err).Str("tenant_id", tenant.ID).Msg("reconciliação falhou")
			}
		}
	} else {
		w.log.Debug().Str("tenant_id", tenant.ID).Msg("reconciliação dentro do intervalo mínimo; pulada")
	}

	if _, err := w.billingUC.RunBillingCycle(ctx, tenant.ID); err != nil {
		if err != domain.ErrConfigMissing {
			w.log.Error().Err(err).Str("tenant_id", tenant.ID).Msg("faturamento falhou")
		}
	}
}

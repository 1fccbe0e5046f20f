package server

import (
	"context"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/ai"
	"github.com/nctr-alliance/garden-backend/internal/archive"
	"github.com/nctr-alliance/garden-backend/internal/cache"
	"github.com/nctr-alliance/garden-backend/internal/config"
	"github.com/nctr-alliance/garden-backend/internal/event"
	"github.com/nctr-alliance/garden-backend/internal/jobs"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/mail"
	appmw "github.com/nctr-alliance/garden-backend/internal/middleware"
	"github.com/nctr-alliance/garden-backend/internal/partner/impact"
	"github.com/nctr-alliance/garden-backend/internal/partner/loyalize"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Repositories struct {
	Portfolios    repository.PortfolioRepository
	Transactions  repository.TransactionRepository
	Ledger        repository.LedgerRepository
	Locks         repository.LockRepository
	Levels        repository.StatusLevelRepository
	Profiles      repository.ProfileRepository
	Referrals     repository.ReferralRepository
	Notifications repository.NotificationRepository
	Settings      repository.SettingRepository
	Checkins      repository.CheckinRepository
	Learning      repository.LearningRepository
	Brands        repository.BrandRepository
}

// NewRepositories accepts a nil db; call SetDB once it is connected.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Portfolios:    repository.NewPortfolioRepository(db),
		Transactions:  repository.NewTransactionRepository(db),
		Ledger:        repository.NewLedgerRepository(db),
		Locks:         repository.NewLockRepository(db),
		Levels:        repository.NewStatusLevelRepository(db),
		Profiles:      repository.NewProfileRepository(db),
		Referrals:     repository.NewReferralRepository(db),
		Notifications: repository.NewNotificationRepository(db),
		Settings:      repository.NewSettingRepository(db),
		Checkins:      repository.NewCheckinRepository(db),
		Learning:      repository.NewLearningRepository(db),
		Brands:        repository.NewBrandRepository(db),
	}
}

func (r *Repositories) SetDB(db *gorm.DB) {
	for _, s := range []interface{ SetDB(*gorm.DB) }{
		r.Portfolios, r.Transactions, r.Ledger, r.Locks, r.Levels, r.Profiles,
		r.Referrals, r.Notifications, r.Settings, r.Checkins, r.Learning, r.Brands,
	} {
		s.SetDB(db)
	}
}

// Infra holds the optional integrations. Each field is nil when its settings
// are empty.
type Infra struct {
	Redis    *redis.Client
	Mailer   mail.Mailer
	Events   event.Publisher
	Archiver archive.Archiver
	Quiz     service.QuizDrafter
	Loyalize service.LoyalizeAPI
	Impact   service.ImpactAPI

	closers []func() error
}

// NewInfra connects the configured integrations. A failing optional
// integration is logged and left disabled.
func NewInfra(ctx context.Context, cfg *config.Config) *Infra {
	log := logging.Component("infra")
	in := &Infra{}

	rdb, err := cache.Connect(ctx, cfg)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("redis disabled")
	case rdb != nil:
		in.Redis = rdb
		in.closers = append(in.closers, rdb.Close)
	}

	if m := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom); m != nil {
		in.Mailer = m
	}

	if cfg.AMQPURL != "" {
		conn, err := event.ConnectRabbitMQ(cfg.AMQPURL)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq disabled")
		} else {
			in.Events = event.NewRabbitPublisher(conn, cfg.EventQueue)
			in.closers = append(in.closers, conn.Close)
		}
	}

	if cfg.ArchiveBucket != "" {
		a, err := archive.NewGCSArchiver(ctx, cfg.ArchiveBucket, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Warn().Err(err).Msg("payload archive disabled")
		} else {
			in.Archiver = a
			in.closers = append(in.closers, a.Close)
		}
	}

	if cfg.GeminiAPIKey != "" {
		in.Quiz = ai.NewQuizClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	// typed nil clients must not reach the interfaces
	if c := loyalize.New(cfg.LoyalizeBaseURL, cfg.LoyalizeAPIKey, cfg.PartnerTimeout()); c != nil {
		in.Loyalize = c
	}
	if c := impact.New(cfg.ImpactBaseURL, cfg.ImpactAccountSID, cfg.ImpactAuthToken, cfg.PartnerTimeout()); c != nil {
		in.Impact = c
	}

	log.Info().
		Bool("redis", in.Redis != nil).
		Bool("mail", in.Mailer != nil).
		Bool("events", in.Events != nil).
		Bool("archive", in.Archiver != nil).
		Bool("quiz", in.Quiz != nil).
		Bool("loyalize", in.Loyalize != nil).
		Bool("impact", in.Impact != nil).
		Msg("integrations")
	return in
}

func (in *Infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		_ = in.closers[i]()
	}
}

type Services struct {
	Notifications service.NotificationService
	Settings      service.SettingsService
	Status        service.StatusService
	Ledger        service.LedgerService
	Locks         service.LockService
	Referrals     service.ReferralService
	Checkins      service.CheckinService
	Learning      service.LearningService
	Sync          service.SyncService
	Jobs          *jobs.Runner
}

func NewServices(cfg *config.Config, repos *Repositories, in *Infra) *Services {
	guard := cache.NewGuard(in.Redis)
	s := &Services{}
	s.Notifications = service.NewNotificationService(repos.Notifications)
	s.Settings = service.NewSettingsService(repos.Settings, cache.NewStore(in.Redis))
	s.Status = service.NewStatusService(repos.Portfolios, repos.Levels, repos.Profiles, s.Notifications, in.Mailer, in.Events)
	s.Ledger = service.NewLedgerService(repos.Portfolios, repos.Transactions, repos.Ledger, s.Status, s.Notifications, in.Events, guard)
	s.Locks = service.NewLockService(repos.Locks, repos.Ledger, repos.Profiles, s.Status, s.Notifications, in.Mailer, in.Events)
	s.Referrals = service.NewReferralService(repos.Profiles, repos.Referrals, s.Settings, s.Ledger)
	s.Checkins = service.NewCheckinService(repos.Checkins, s.Settings, s.Ledger, guard)
	s.Learning = service.NewLearningService(repos.Learning, s.Ledger, in.Quiz)
	s.Sync = service.NewSyncService(in.Loyalize, in.Impact, repos.Brands, s.Settings, s.Ledger)
	s.Jobs = jobs.NewRunner(s.Locks, s.Sync, lookback(cfg))
	return s
}

// NewVerifier picks the token verifier for AUTH_PROVIDER.
func NewVerifier(ctx context.Context, cfg *config.Config) (appmw.TokenVerifier, error) {
	if cfg.AuthProvider == "firebase" {
		v, err := appmw.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	v, err := appmw.NewSupabaseVerifier(cfg.SupabaseJWTSecret)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func lookback(cfg *config.Config) time.Duration {
	return time.Duration(cfg.LoyalizeLookback) * 24 * time.Hour
}

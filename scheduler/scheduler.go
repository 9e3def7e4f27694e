package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"airbnb-cleaner/config"
	"airbnb-cleaner/db"
	"airbnb-cleaner/message"
	"airbnb-cleaner/models"
	"airbnb-cleaner/nickname"
	"airbnb-cleaner/notify"
	"airbnb-cleaner/output"
	"airbnb-cleaner/parser"
	"airbnb-cleaner/reservation"
	"airbnb-cleaner/scraper"
	"airbnb-cleaner/sheets"
)

// Run triggers
const (
	TriggerCron     = "cron"
	TriggerCLI      = "cli"
	TriggerTelegram = "telegram"
)

// guardTTL outlives the day the key was set for
const guardTTL = 36 * time.Hour

// ErrAlreadySent means the message for the reference date went out already
var ErrAlreadySent = errors.New("cleaner message already sent for this date")

// Source provides the raw reservation cards and listing rows
type Source = scraper.Scraper

// SourceFactory opens a Source for one run and returns a function releasing it.
// The live browser is created on demand and closed after each run.
type SourceFactory func(ctx context.Context) (Source, func() error, error)

// Store persists runs and the nickname table
type Store interface {
	ListNicknames(ctx context.Context) ([]models.Listing, error)
	ReplaceNicknames(ctx context.Context, listings []models.Listing) error
	CreateRun(ctx context.Context, runID string, reference time.Time, trigger string) error
	SaveSchedule(ctx context.Context, runID string, blocks int, schedule models.Schedule) error
	FinishRun(ctx context.Context, runID, status, sheetName, message, lastError string) error
	GetLastRun(ctx context.Context, reference time.Time) (*db.Run, error)
}

// SheetWriter writes schedules and nickname snapshots to a spreadsheet
type SheetWriter interface {
	CreateSheetAndWriteSchedule(ctx context.Context, schedule models.Schedule, generated time.Time) (string, int64, error)
	CreateSheetAndWriteNicknames(ctx context.Context, listings []models.Listing, now time.Time) (string, int64, error)
}

// Deps are the collaborators of a Scheduler. Store, Sheets and Notifier may be nil.
type Deps struct {
	Config   *config.Config
	Sources  SourceFactory
	Store    Store
	Sheets   SheetWriter
	Notifier notify.Notifier
	Guard    Guard
	Logger   *zap.Logger
	Now      func() time.Time
}

// Result describes one run
type Result struct {
	RunID       string
	Reference   time.Time
	Blocks      int
	Schedule    models.Schedule
	Message     string
	MessagePath string
	DebugPath   string
	SheetName   string
	SheetURL    string
	NicknameSrc string
}

// Scheduler computes and sends tomorrow's cleaner message every day
type Scheduler struct {
	deps     Deps
	cfg      *config.Config
	loc      *time.Location
	renderer *message.Renderer
	logger   *zap.Logger
	now      func() time.Time
	cron     *cron.Cron

	mu     sync.Mutex // one run at a time
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler from its dependencies
func NewScheduler(deps Deps) (*Scheduler, error) {
	if deps.Config == nil {
		return nil, errors.New("scheduler needs a config")
	}
	if deps.Sources == nil {
		return nil, errors.New("scheduler needs a reservation source")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Guard == nil {
		deps.Guard = NewMemoryGuard(deps.Now)
	}

	loc := deps.Config.Location()

	renderer, err := message.NewRenderer(deps.Config.Output.MessageStyle, deps.Config.Output.TemplatePath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		deps:     deps,
		cfg:      deps.Config,
		loc:      loc,
		renderer: renderer,
		logger:   deps.Logger,
		now:      deps.Now,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start registers the daily job and starts the cron loop
func (s *Scheduler) Start() error {
	s.cron = cron.New(cron.WithLocation(s.loc))

	_, err := s.cron.AddFunc(s.cfg.Schedule.Cron, func() {
		if _, err := s.RunOnce(s.ctx, s.Tomorrow(), false, TriggerCron); err != nil {
			if errors.Is(err, ErrAlreadySent) {
				s.logger.Info("skipping scheduled run", zap.Error(err))
				return
			}
			s.logger.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register cron job %q: %w", s.cfg.Schedule.Cron, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("cron", s.cfg.Schedule.Cron), zap.String("timezone", s.loc.String()))
	return nil
}

// Stop stops the cron loop and cancels a run in progress
func (s *Scheduler) Stop() {
	s.cancel()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.logger.Info("scheduler stopped")
}

// Tomorrow returns the day after today in the configured timezone, as a UTC midnight date
func (s *Scheduler) Tomorrow() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// RunOnce builds, stores and sends the schedule for reference.
// Unless force is set, a date whose message was already sent returns ErrAlreadySent.
func (s *Scheduler) RunOnce(ctx context.Context, reference time.Time, force bool, trigger string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	runID := uuid.New().String()
	key := GuardKey(ref)
	log := s.logger.With(zap.String("run_id", runID), zap.String("reference", ref.Format("2006-01-02")), zap.String("trigger", trigger))

	// Only a run that acquired the key may release it; a forced run leaves an earlier send marked
	acquired := false
	if !force {
		ok, err := s.deps.Guard.Acquire(ctx, key, runID, guardTTL)
		if err != nil {
			log.Warn("guard unavailable, sending anyway", zap.Error(err))
		} else if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAlreadySent, ref.Format("2006-01-02"))
		}
		acquired = ok && err == nil
	}

	result, err := s.run(ctx, runID, ref, trigger, log)
	if err != nil {
		if acquired {
			if relErr := s.deps.Guard.Release(ctx, key); relErr != nil {
				log.Warn("failed to release guard", zap.Error(relErr))
			}
		}
		s.finishRun(ctx, runID, "", "", err, log)
		return nil, err
	}

	if !acquired {
		if err := s.deps.Guard.Mark(ctx, key, runID, guardTTL); err != nil {
			log.Warn("failed to mark message as sent", zap.Error(err))
		}
	}

	return result, nil
}

func (s *Scheduler) run(ctx context.Context, runID string, ref time.Time, trigger string, log *zap.Logger) (*Result, error) {
	if s.deps.Store != nil {
		if err := s.deps.Store.CreateRun(ctx, runID, ref, trigger); err != nil {
			log.Warn("failed to record run", zap.Error(err))
		}
	}

	table, src := s.LoadNicknameTable(ctx)
	log.Info("nickname table loaded", zap.Int("entries", table.Len()), zap.String("source", src))

	blocks, err := s.reservationBlocks(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	processor := reservation.NewProcessor(s.cfg, table, s.now, log)
	schedule := processor.ProcessBatch(blocks, ref)

	result := &Result{
		RunID:       runID,
		Reference:   ref,
		Blocks:      len(blocks),
		Schedule:    schedule,
		NicknameSrc: src,
	}

	if s.deps.Store != nil {
		if err := s.deps.Store.SaveSchedule(ctx, runID, len(blocks), schedule); err != nil {
			log.Warn("failed to save schedule", zap.Error(err))
		}
	}

	text, err := s.renderer.Render(schedule, now)
	if err != nil {
		return nil, err
	}
	result.Message = text

	s.saveOutputs(result, blocks, now, log)

	if s.deps.Sheets != nil {
		name, sheetID, err := s.deps.Sheets.CreateSheetAndWriteSchedule(ctx, schedule, now)
		if err != nil {
			log.Warn("failed to write schedule sheet", zap.Error(err))
		} else {
			result.SheetName = name
			result.SheetURL = SheetURL(s.cfg.Sheets.SpreadsheetURL, sheetID)
		}
	}

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.Notify(ctx, text); err != nil {
			return nil, fmt.Errorf("failed to send cleaner message: %w", err)
		}
	}

	s.finishRun(ctx, runID, result.SheetName, text, nil, log)
	log.Info("run completed",
		zap.Int("blocks", len(blocks)),
		zap.Int("checkouts", len(schedule.Checkouts)),
		zap.Int("checkins", len(schedule.Checkins)),
		zap.Int("rejected", len(schedule.Rejected)),
	)

	return result, nil
}

func (s *Scheduler) reservationBlocks(ctx context.Context) ([]string, error) {
	src, release, err := s.deps.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open reservation source: %w", err)
	}
	defer func() {
		if release == nil {
			return
		}
		if err := release(); err != nil {
			s.logger.Warn("failed to release reservation source", zap.Error(err))
		}
	}()

	blocks, err := src.ReservationBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect reservation cards: %w", err)
	}
	return blocks, nil
}

func (s *Scheduler) saveOutputs(result *Result, blocks []string, now time.Time, log *zap.Logger) {
	if s.cfg.Output.Dir == "" {
		return
	}

	path, err := output.SaveMessage(s.cfg.Output.Dir, result.Reference, result.Message, now)
	if err != nil {
		log.Warn("failed to save message file", zap.Error(err))
	} else {
		result.MessagePath = path
	}

	if !s.cfg.Output.SaveDebug {
		return
	}
	report := output.NewDebugReport(result.RunID, result.Schedule, blocks, now)
	path, err = output.SaveDebug(s.cfg.Output.Dir, report, now)
	if err != nil {
		log.Warn("failed to save debug file", zap.Error(err))
	} else {
		result.DebugPath = path
	}
}

func (s *Scheduler) finishRun(ctx context.Context, runID, sheetName, text string, runErr error, log *zap.Logger) {
	if s.deps.Store == nil {
		return
	}

	status, lastError := db.RunDone, ""
	if runErr != nil {
		status, lastError = db.RunFailed, runErr.Error()
	}

	// The run context may already be cancelled; the outcome is still worth recording
	if err := s.deps.Store.FinishRun(context.WithoutCancel(ctx), runID, status, sheetName, text, lastError); err != nil {
		log.Warn("failed to finish run", zap.Error(err))
	}
}

// LastRun returns the latest finished run for reference, or nil when none is recorded or there is no store
func (s *Scheduler) LastRun(ctx context.Context, reference time.Time) (*db.Run, error) {
	if s.deps.Store == nil {
		return nil, nil
	}
	ref := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	run, err := s.deps.Store.GetLastRun(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}
	return run, nil
}

// LoadNicknameTable reads the nickname table from the database, then from the newest JSON export.
// An empty table is returned when neither is available; nicknames then fall back to shortened titles.
func (s *Scheduler) LoadNicknameTable(ctx context.Context) (*nickname.Table, string) {
	if s.deps.Store != nil {
		listings, err := s.deps.Store.ListNicknames(ctx)
		if err != nil {
			s.logger.Warn("failed to read nicknames from database", zap.Error(err))
		} else if len(listings) > 0 {
			return nickname.NewTable(listings), "database"
		}
	}

	listings, path, err := nickname.LoadLatest(s.cfg.Nicknames.Dir)
	if err != nil {
		if !errors.Is(err, nickname.ErrNoNicknameFile) {
			s.logger.Warn("failed to read nickname file", zap.Error(err))
		}
		return nickname.NewTable(nil), "none"
	}
	return nickname.NewTable(listings), path
}

// RefreshNicknames scrapes the listings table and stores the new nickname table everywhere it is kept
func (s *Scheduler) RefreshNicknames(ctx context.Context) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, release, err := s.deps.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open listings source: %w", err)
	}
	if release != nil {
		defer release()
	}

	rows, err := src.ListingRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect listing rows: %w", err)
	}

	listings := parser.NewListingRowParser(s.cfg.Vocabulary.ListingGeoIndicators).ParseRows(rows)
	if len(listings) == 0 {
		return nil, fmt.Errorf("no listed properties found in %d rows", len(rows))
	}

	now := s.now()
	path, err := nickname.SaveJSON(s.cfg.Nicknames.Dir, listings, now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("nickname table saved", zap.String("path", path), zap.Int("entries", len(listings)))

	if s.deps.Store != nil {
		if err := s.deps.Store.ReplaceNicknames(ctx, listings); err != nil {
			s.logger.Warn("failed to store nicknames in database", zap.Error(err))
		}
	}
	if s.deps.Sheets != nil {
		if _, _, err := s.deps.Sheets.CreateSheetAndWriteNicknames(ctx, listings, now); err != nil {
			s.logger.Warn("failed to write nickname sheet", zap.Error(err))
		}
	}

	return listings, nil
}

// SheetURL links to one sheet of the spreadsheet, or to the spreadsheet itself when the ID is unknown
func SheetURL(spreadsheetURL string, sheetID int64) string {
	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		return spreadsheetURL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}

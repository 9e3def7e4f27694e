package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"airbnb-cleaner/config"
	"airbnb-cleaner/db"
	"airbnb-cleaner/fetcher"
	"airbnb-cleaner/logger"
	"airbnb-cleaner/nickname"
	"airbnb-cleaner/notify"
	"airbnb-cleaner/parser"
	"airbnb-cleaner/scheduler"
	"airbnb-cleaner/scraper"
	"airbnb-cleaner/sheets"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	once := flag.Bool("once", false, "Compute and send one message, then exit")
	date := flag.String("date", "", "Reference date YYYY-MM-DD (default: tomorrow in the configured timezone)")
	htmlDir := flag.String("html", "", "Read reservations.html and listings.html from this directory instead of the live dashboard")
	refresh := flag.Bool("nicknames", false, "Refresh the property nickname table, then exit")
	force := flag.Bool("force", false, "Send even if the message for this date was already sent")
	naive := flag.Bool("naive", false, "Use the naive date strategy")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := loadConfig(*configPath)
	if *naive {
		cfg.UseNaiveStrategy()
	}

	logger.InitializeLogger(getEnvOrDefault("APP_ENV", cfg.Log.Env), cfg.Log.Level)
	defer logger.Sync()
	zlog := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bot *tgbotapi.BotAPI
	if token := os.Getenv("AIR_KEY_TG"); token != "" {
		var err error
		bot, err = tgbotapi.NewBotAPI(token)
		if err != nil {
			zlog.Fatal("failed to initialize bot", zap.Error(err))
		}
		zlog.Info("authorized on telegram", zap.String("account", bot.Self.UserName))
	}

	deps := scheduler.Deps{
		Config:   cfg,
		Sources:  sourceFactory(cfg, *htmlDir, zlog),
		Notifier: buildNotifier(cfg, bot, zlog),
		Logger:   zlog,
	}

	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		database, err := db.NewDB()
		if err != nil {
			zlog.Warn("database unavailable, runs will not be recorded", zap.Error(err))
		} else {
			defer database.Close()
			deps.Store = database
		}
	}

	if spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL); spreadsheetID != "" {
		writer, err := sheets.NewWriter(ctx, spreadsheetID, cfg.Sheets.CredentialsPath, zlog)
		if err != nil {
			zlog.Warn("google sheets unavailable", zap.Error(err))
		} else {
			deps.Sheets = writer
		}
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		guard, err := scheduler.NewRedisGuard(ctx, addr, os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			zlog.Warn("redis unavailable, using in-memory send guard", zap.Error(err))
		} else {
			defer guard.Close()
			deps.Guard = guard
		}
	}

	sched, err := scheduler.NewScheduler(deps)
	if err != nil {
		zlog.Fatal("failed to create scheduler", zap.Error(err))
	}

	if *refresh {
		listings, err := sched.RefreshNicknames(ctx)
		if err != nil {
			zlog.Fatal("nickname refresh failed", zap.Error(err))
		}
		fmt.Println(nickname.FormatTable(listings))
		return
	}

	if *once || *date != "" || *htmlDir != "" {
		reference := sched.Tomorrow()
		if *date != "" {
			reference, err = parseDateFlag(*date)
			if err != nil {
				zlog.Fatal("invalid -date", zap.Error(err))
			}
		}
		runCLIMode(ctx, sched, reference, *force)
		return
	}

	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	if bot == nil {
		zlog.Info("AIR_KEY_TG not set, running the schedule only")
		<-ctx.Done()
		return
	}
	runTelegramBot(ctx, bot, sched, cfg, zlog)
}

// runCLIMode runs once and prints the message to the console
func runCLIMode(ctx context.Context, sched *scheduler.Scheduler, reference time.Time, force bool) {
	result, err := sched.RunOnce(ctx, reference, force, scheduler.TriggerCLI)
	if err != nil {
		if errors.Is(err, scheduler.ErrAlreadySent) {
			fmt.Printf("%v (use -force to send again)\n", err)
			return
		}
		log.Fatalf("Run failed: %v\n", err)
	}

	fmt.Printf("Reservation cards: %d\n", result.Blocks)
	fmt.Printf("Checkouts: %d, Checkins: %d, Rejected: %d\n",
		len(result.Schedule.Checkouts), len(result.Schedule.Checkins), len(result.Schedule.Rejected))
	fmt.Println("---")
	fmt.Println(result.Message)
	fmt.Println("---")
	if result.MessagePath != "" {
		fmt.Printf("Saved to %s\n", result.MessagePath)
	}
	if result.SheetURL != "" {
		fmt.Printf("Sheet: %s\n", result.SheetURL)
	}
}

// runTelegramBot answers commands from allowed users until ctx is cancelled
func runTelegramBot(ctx context.Context, bot *tgbotapi.BotAPI, sched *scheduler.Scheduler, cfg *config.Config, zlog *zap.Logger) {
	allowed := make(map[int64]bool, len(cfg.Notify.AllowedUserIDs))
	for _, id := range cfg.Notify.AllowedUserIDs {
		allowed[id] = true
	}

	replies := notify.NewTelegramNotifier(bot, nil, zlog)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1 // only new updates

	updates := bot.GetUpdatesChan(updateConfig)
	defer bot.StopReceivingUpdates()

	for {
		var update tgbotapi.Update
		var ok bool
		select {
		case <-ctx.Done():
			return
		case update, ok = <-updates:
			if !ok {
				return
			}
		}

		userID, ok := commandSender(update)
		if !ok {
			continue
		}

		chatID := update.Message.Chat.ID
		if !allowed[userID] {
			zlog.Warn("unauthorized user", zap.Int64("user_id", userID))
			bot.Send(tgbotapi.NewMessage(chatID, "Sorry, you are not authorized to use this bot."))
			continue
		}

		reply := func(text string) {
			if err := replies.SendText(ctx, chatID, text); err != nil {
				zlog.Warn("failed to reply", zap.Int64("chat_id", chatID), zap.Error(err))
			}
		}

		switch update.Message.Command() {
		case "start", "help":
			reply(helpText)
		case "tomorrow":
			force := strings.TrimSpace(update.Message.CommandArguments()) == "force"
			reply("⏳ Checking tomorrow's reservations...")
			result, err := sched.RunOnce(ctx, sched.Tomorrow(), force, scheduler.TriggerTelegram)
			switch {
			case errors.Is(err, scheduler.ErrAlreadySent):
				reply("Already sent today. Use /tomorrow force to send again.")
			case err != nil:
				reply(fmt.Sprintf("❌ Error: %v", err))
			default:
				reply(summaryText(result))
			}
		case "status":
			run, err := sched.LastRun(ctx, sched.Tomorrow())
			if err != nil {
				reply(fmt.Sprintf("❌ Error: %v", err))
				continue
			}
			reply(statusText(sched.Tomorrow(), run))
		case "nicknames":
			table, src := sched.LoadNicknameTable(ctx)
			if table.Len() == 0 {
				reply("No nickname table yet. Use /refresh to build one.")
				continue
			}
			reply(fmt.Sprintf("Source: %s\n\n%s", src, formatEntries(table.Entries())))
		case "refresh":
			reply("⏳ Refreshing property nicknames...")
			listings, err := sched.RefreshNicknames(ctx)
			if err != nil {
				reply(fmt.Sprintf("❌ Error: %v", err))
				continue
			}
			reply(fmt.Sprintf("✅ %d listed properties saved", len(listings)))
		default:
			reply("Unknown command. Use /help for available commands.")
		}
	}
}

const helpText = "Commands:\n" +
	"/tomorrow - Send tomorrow's cleaner message now\n" +
	"/tomorrow force - Send it again even if it already went out\n" +
	"/status - Show the last run for tomorrow\n" +
	"/nicknames - Show the property nickname table\n" +
	"/refresh - Rebuild the nickname table from the listings page\n" +
	"/help - Show this help"

// commandSender returns the user who sent a command. Channel posts and anonymous admins have no sender.
func commandSender(update tgbotapi.Update) (int64, bool) {
	if update.Message == nil || update.Message.From == nil || !update.Message.IsCommand() {
		return 0, false
	}
	return update.Message.From.ID, true
}

// statusText describes the last finished run for reference
func statusText(reference time.Time, run *db.Run) string {
	day := reference.Format("Mon 02 Jan")
	if run == nil {
		return fmt.Sprintf("No run recorded for %s", day)
	}
	text := fmt.Sprintf("Last run for %s: %s at %s (%s)\nCards: %d, Out: %d, In: %d, Rejected: %d",
		day, run.Status, run.UpdatedAt.Format("15:04"), run.Trigger,
		run.BlocksCount, run.CheckoutsCount, run.CheckinsCount, run.RejectedCount)
	if run.SheetName.Valid {
		text += "\nSheet: " + run.SheetName.String
	}
	return text
}

// summaryText describes a finished run for the user who triggered it
func summaryText(result *scheduler.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Sent for %s\n", result.Reference.Format("Mon 02 Jan"))
	fmt.Fprintf(&sb, "Cards: %d, Out: %d, In: %d, Rejected: %d",
		result.Blocks, len(result.Schedule.Checkouts), len(result.Schedule.Checkins), len(result.Schedule.Rejected))
	if result.SheetURL != "" {
		fmt.Fprintf(&sb, "\n📊 %s", result.SheetURL)
	}
	return sb.String()
}

// formatEntries lists the nickname table one property per line
func formatEntries(entries []nickname.Entry) string {
	var sb strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, e.Nickname, e.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// sourceFactory picks the saved HTML snapshots when htmlDir is set, otherwise the live browser
func sourceFactory(cfg *config.Config, htmlDir string, zlog *zap.Logger) scheduler.SourceFactory {
	if htmlDir != "" {
		return func(ctx context.Context) (scheduler.Source, func() error, error) {
			reservationsURL, err := fetcher.SnapshotURL(filepath.Join(htmlDir, "reservations.html"))
			if err != nil {
				return nil, nil, err
			}
			listingsURL, err := fetcher.SnapshotURL(filepath.Join(htmlDir, "listings.html"))
			if err != nil {
				return nil, nil, err
			}
			p := parser.NewParser(cfg.Scraper.BlockSelectors, cfg.Scraper.MinBlockLength)
			return fetcher.NewSnapshotSource(fetcher.NewCollyFetcher(0, zlog), p, reservationsURL, listingsURL), nil, nil
		}
	}

	return func(ctx context.Context) (scheduler.Source, func() error, error) {
		rs, err := scraper.NewRodScraper(cfg.Scraper, zlog)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	}
}

// buildNotifier sends to every configured Telegram chat and WhatsApp number
func buildNotifier(cfg *config.Config, bot *tgbotapi.BotAPI, zlog *zap.Logger) notify.Notifier {
	var notifiers notify.Multi

	if bot != nil && len(cfg.Notify.TelegramChatIDs) > 0 {
		notifiers = append(notifiers, notify.NewTelegramNotifier(bot, cfg.Notify.TelegramChatIDs, zlog))
	}

	if len(cfg.Notify.WhatsAppTo) > 0 {
		wa, err := notify.NewWhatsAppNotifierFromEnv(cfg.Notify.WhatsAppFrom, cfg.Notify.WhatsAppTo, zlog)
		if err != nil {
			zlog.Warn("whatsapp disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, wa)
		}
	}

	if len(notifiers) == 0 {
		zlog.Warn("no recipients configured, messages will only be saved locally")
		return nil
	}
	return notifiers
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err != nil {
		log.Println("Config file not found. Using default configuration.")
		return config.GetDefaultConfig()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
		return config.GetDefaultConfig()
	}
	return cfg
}

// parseDateFlag reads a YYYY-MM-DD reference date as a UTC midnight
func parseDateFlag(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}
	return t, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

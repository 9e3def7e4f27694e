package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"airbnb-cleaner/config"
	"airbnb-cleaner/dates"
	"airbnb-cleaner/filter"
	"airbnb-cleaner/models"
	"airbnb-cleaner/nickname"
	"airbnb-cleaner/parser"
)

const (
	rawTextLimit      = 500
	minHintLineLength = 10
	previewRuneLimit  = 60
)

// Processor turns raw reservation card texts into a schedule for one reference date
type Processor struct {
	extractor   *parser.FieldExtractor
	engine      *dates.Engine
	geo         *filter.Filter
	resolver    *nickname.Resolver
	hintWords   []string
	fallbackLen int
	logger      *zap.Logger
}

// NewProcessor wires the extractor, date engine, geo filter and resolver from cfg.
// now feeds the year of yearless dates; nil means time.Now.
func NewProcessor(cfg *config.Config, table *nickname.Table, now func() time.Time, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		extractor:   parser.NewFieldExtractor(cfg.Engine, cfg.Vocabulary),
		engine:      dates.NewEngine(dates.OptionsFromConfig(cfg), now),
		geo:         filter.NewFilter(cfg.GeoExclusions),
		resolver:    nickname.NewResolver(table, cfg.Engine.NicknameMode, cfg.Vocabulary.NicknameDomainWords),
		hintWords:   cfg.Vocabulary.NicknameHintWords,
		fallbackLen: cfg.Engine.NicknameFallbackLength,
		logger:      logger,
	}
}

// ProcessBlock parses one card. A non-nil error is a rejection wrapping one of the models.Err* sentinels.
func (p *Processor) ProcessBlock(raw string, reference time.Time) (models.Reservation, error) {
	lines := models.NewTextBlock(raw)
	ref := dates.Day(reference)

	guestName, err := p.extractor.GuestName(lines)
	if err != nil {
		return models.Reservation{}, err
	}

	decision, err := p.engine.Decide(lines, raw, ref)
	if err != nil {
		return models.Reservation{}, err
	}

	res := models.Reservation{
		GuestName:    guestName,
		PropertyName: p.extractor.PropertyName(lines),
		GuestCount:   p.extractor.GuestCount(lines),
		CheckIn:      decision.CheckIn,
		CheckOut:     decision.CheckOut,
		Type:         decision.Type,
		RawText:      truncateBytes(raw, rawTextLimit),
	}

	if indicator, excluded := p.geo.Excludes(res.PropertyName); excluded {
		return models.Reservation{}, fmt.Errorf("%w: %q matches %q", models.ErrGeoExcluded, res.PropertyName, indicator)
	}

	p.assignNickname(&res, lines)

	p.logger.Debug("accepted reservation",
		zap.String("guest", res.GuestName),
		zap.String("property", res.PropertyName),
		zap.String("nickname", res.PropertyNickname),
		zap.String("type", string(res.Type)),
		zap.String("basis", string(decision.Basis)),
		zap.Int("dates", len(decision.Dates)),
	)

	return res, nil
}

// assignNickname resolves the property name, then any descriptive line of the card, then shortens the title
func (p *Processor) assignNickname(res *models.Reservation, lines models.TextBlock) {
	if nick, ok := p.resolver.Resolve(res.PropertyName); ok {
		res.PropertyNickname = nick
		return
	}

	for _, line := range lines {
		if utf8.RuneCountInString(line) <= minHintLineLength || !containsAny(strings.ToLower(line), p.hintWords) {
			continue
		}
		if nick, ok := p.resolver.Resolve(line); ok {
			p.logger.Debug("nickname from alternative line", zap.String("line", line), zap.String("nickname", nick))
			res.PropertyName = line
			res.PropertyNickname = nick
			return
		}
	}

	res.PropertyNickname = nickname.Shorten(res.PropertyName, p.fallbackLen)
}

// ProcessBatch processes every block against the same reference date. Accepted reservations keep
// their input order; rejected blocks are reported, never fatal.
func (p *Processor) ProcessBatch(raws []string, reference time.Time) models.Schedule {
	schedule := models.Schedule{Reference: dates.Day(reference)}

	for i, raw := range raws {
		res, err := p.ProcessBlock(raw, reference)
		if err != nil {
			schedule.Rejected = append(schedule.Rejected, models.BlockRejection{
				Index:   i,
				Reason:  err.Error(),
				Preview: preview(raw),
			})
			p.logRejection(i, err)
			continue
		}

		switch res.Type {
		case models.StayCheckOut:
			schedule.Checkouts = append(schedule.Checkouts, res)
		case models.StayCheckIn:
			schedule.Checkins = append(schedule.Checkins, res)
		}
	}

	p.logger.Info("processed reservation blocks",
		zap.Int("blocks", len(raws)),
		zap.Int("checkouts", len(schedule.Checkouts)),
		zap.Int("checkins", len(schedule.Checkins)),
		zap.Int("rejected", len(schedule.Rejected)),
	)

	return schedule
}

func (p *Processor) logRejection(index int, err error) {
	if errors.Is(err, models.ErrGeoExcluded) {
		p.logger.Info("excluded reservation", zap.Int("block", index), zap.Error(err))
		return
	}
	p.logger.Debug("rejected reservation", zap.Int("block", index), zap.Error(err))
}

func preview(raw string) string {
	lines := models.NewTextBlock(raw)
	if len(lines) == 0 {
		return ""
	}
	return nickname.Shorten(lines[0], previewRuneLimit)
}

// truncateBytes cuts s to at most n bytes without splitting a character
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// Package report builds and emails the daily procurement digest: what was
// posted today, what closes soon, and the highest-priority open tenders.
package report

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"sort"
	"time"

	"github.com/jordan-wright/email"

	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
)

const (
	closingSoonWindow = 3 * 24 * time.Hour
	highPriorityLimit = 10
	digestQueryLimit  = 500
)

// Digest is the assembled content of one daily report.
type Digest struct {
	GeneratedAt  time.Time
	NewToday     []domain.Tender
	ClosingSoon  []domain.Tender
	HighPriority []domain.Tender
}

// Reporter queries the store and mails the digest.
type Reporter struct {
	cfg    *config.ReportConfig
	store  database.TenderStore
	logger logger.Interface

	// send is swapped out in tests.
	send func(e *email.Email) error
}

func New(cfg *config.ReportConfig, store database.TenderStore, log logger.Interface) *Reporter {
	r := &Reporter{
		cfg:    cfg,
		store:  store,
		logger: log.WithComponent("report"),
	}
	r.send = r.sendSMTP
	return r
}

// BuildDigest partitions the active tenders into the report's sections.
func (r *Reporter) BuildDigest(ctx context.Context) (*Digest, error) {
	tenders, err := r.store.List(ctx, database.ListFilters{
		ActiveOnly: true,
		Limit:      digestQueryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("loading tenders for digest: %w", err)
	}

	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	soonCutoff := now.Add(closingSoonWindow)

	digest := &Digest{GeneratedAt: now}

	for _, t := range tenders {
		if t.PostedDate != nil && !t.PostedDate.Before(todayStart) {
			digest.NewToday = append(digest.NewToday, *t)
		}
		if t.ClosingDate != nil && t.ClosingDate.After(now) && !t.ClosingDate.After(soonCutoff) {
			digest.ClosingSoon = append(digest.ClosingSoon, *t)
		}
		if t.Priority == domain.PriorityHigh {
			digest.HighPriority = append(digest.HighPriority, *t)
		}
	}

	sort.Slice(digest.ClosingSoon, func(i, j int) bool {
		return digest.ClosingSoon[i].ClosingDate.Before(*digest.ClosingSoon[j].ClosingDate)
	})

	sort.Slice(digest.HighPriority, func(i, j int) bool {
		return digest.HighPriority[i].Value > digest.HighPriority[j].Value
	})
	if len(digest.HighPriority) > highPriorityLimit {
		digest.HighPriority = digest.HighPriority[:highPriorityLimit]
	}

	return digest, nil
}

// SendDigest builds today's digest and emails it to the configured
// recipients.
func (r *Reporter) SendDigest(ctx context.Context) error {
	if !r.cfg.Enabled {
		return nil
	}
	if len(r.cfg.Recipients) == 0 {
		return fmt.Errorf("no digest recipients configured")
	}

	digest, err := r.BuildDigest(ctx)
	if err != nil {
		return err
	}

	body, err := renderHTML(digest)
	if err != nil {
		return fmt.Errorf("rendering digest: %w", err)
	}

	msg := email.NewEmail()
	msg.From = r.cfg.From
	msg.To = r.cfg.Recipients
	msg.Subject = fmt.Sprintf("Daily Procurement Report - %s", digest.GeneratedAt.Format("2006-01-02"))
	msg.HTML = body

	if err = r.send(msg); err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}

	r.logger.Info("digest sent",
		"recipients", len(r.cfg.Recipients),
		"new_today", len(digest.NewToday),
		"closing_soon", len(digest.ClosingSoon),
		"high_priority", len(digest.HighPriority))

	return nil
}

func (r *Reporter) sendSMTP(msg *email.Email) error {
	addr := fmt.Sprintf("%s:%d", r.cfg.SMTPHost, r.cfg.SMTPPort)

	var auth smtp.Auth
	if r.cfg.Username != "" {
		auth = smtp.PlainAuth("", r.cfg.Username, r.cfg.Password, r.cfg.SMTPHost)
	}

	return msg.SendWithStartTLS(addr, auth, &tls.Config{
		ServerName: r.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	})
}

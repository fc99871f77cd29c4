package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"fitnesspoint/internal/billing"
	"fitnesspoint/internal/logger"
	"fitnesspoint/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

const (
	KindInvoice       = "invoice"
	KindImportSummary = "import_summary"
	KindGeneric       = "generic"
)

type EmailJob struct {
	Kind    string    `json:"kind"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Pass     string
	From     string
	FromName string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	redis      *redis.Client
	smtp       SMTPConfig
	send       sendFunc
	retryDelay time.Duration
	errorDelay time.Duration
}

func New(rdb *redis.Client, cfg SMTPConfig) *Service {
	return &Service{
		redis:      rdb,
		smtp:       cfg,
		send:       smtp.SendMail,
		retryDelay: 5 * time.Second,
		errorDelay: time.Second,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, EmailJob{Kind: KindGeneric, To: to, Name: name, Subject: subject, Body: body})
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	job.Tries = 0
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", job.To, err)
		return err
	}

	logger.Infof("Email queued: %s to %s", job.Subject, job.To)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Errorf("Email queue unavailable: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(s.errorDelay):
			}
		}
		return
	}
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(s.retryDelay)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, string(data))
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordEmail(job.Kind, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Kind, "success")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.smtp.FromName, s.smtp.From)
	message += fmt.Sprintf("To: %s <%s>\r\n", job.Name, job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtp.User != "" && s.smtp.Pass != "" {
		auth = smtp.PlainAuth("", s.smtp.User, s.smtp.Pass, s.smtp.Host)
	}

	addr := s.smtp.Host + ":" + s.smtp.Port
	return s.send(addr, auth, s.smtp.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, string(data))
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

// SendInvoice queues the invoice for the member. The caller marks the
// invoice sent once this returns nil.
func (s *Service) SendInvoice(ctx context.Context, to, name string, inv *billing.Invoice) error {
	subject := "Invoice " + inv.Reference
	body := fmt.Sprintf(`Hi %s,

Your membership invoice is ready.

Reference: %s
Period: %s
Amount: %s
Proration: %s
Tax: %s
Discount: %s
Total due: %s
Due date: %s

- FitnessPoint Team`,
		name,
		inv.Reference,
		period(inv.FromDate, inv.ToDate),
		inv.Amount.StringFixed(2),
		inv.ProrationAmount.Decimal.StringFixed(2),
		inv.TaxAmount.StringFixed(2),
		inv.DiscountAmount.StringFixed(2),
		inv.TotalAmount.StringFixed(2),
		inv.DueDate.Format("Jan 2, 2006"),
	)

	return s.enqueue(ctx, EmailJob{Kind: KindInvoice, To: to, Name: name, Subject: subject, Body: body})
}

func period(from time.Time, to *time.Time) string {
	if to == nil {
		return "from " + from.Format("Jan 2, 2006")
	}
	return from.Format("Jan 2, 2006") + " - " + to.Format("Jan 2, 2006")
}

type ImportSummary struct {
	ImportID       int
	Status         string
	SuccessCount   int
	FailedCount    int
	TotalProcessed int
	ErrorMessage   string
}

func (s *Service) SendImportSummary(ctx context.Context, to, name string, summary ImportSummary) error {
	subject := fmt.Sprintf("Member import #%d: %s", summary.ImportID, summary.Status)
	body := fmt.Sprintf(`Hi %s,

Your member import #%d has finished with status %s.

Rows processed: %d
Imported: %d
Failed: %d
`, name, summary.ImportID, summary.Status, summary.TotalProcessed, summary.SuccessCount, summary.FailedCount)

	if summary.ErrorMessage != "" {
		body += "\nError: " + summary.ErrorMessage + "\n"
	}
	if summary.FailedCount > 0 {
		body += "\nDownload the failed rows from the import page to fix and re-upload them.\n"
	}
	body += "\n- FitnessPoint Team"

	return s.enqueue(ctx, EmailJob{Kind: KindImportSummary, To: to, Name: name, Subject: subject, Body: body})
}

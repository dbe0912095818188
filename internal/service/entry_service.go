package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/entry")

// EntryService validates manual entries and turns them into ledger
// transactions. A transfer becomes two linked legs (debit on the source
// account, matching credit on the target) submitted as one logical
// operation; income and expense become a single signed entry.
type EntryService struct {
	store     port.TransactionStore
	reference *ReferenceService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewEntryService creates the entry service with all dependencies injected.
func NewEntryService(store port.TransactionStore, reference *ReferenceService, metrics *observability.Metrics, logger *zap.Logger) *EntryService {
	return &EntryService{
		store:     store,
		reference: reference,
		metrics:   metrics,
		logger:    logger,
	}
}

// Validate applies the uniform entry checks. The target-account checks only
// apply to transfers. All checks are synchronous; nothing touches the
// network before they pass.
func (s *EntryService) Validate(req *domain.EntryRequest) error {
	if domain.CoerceNumericOrZero(req.Amount) == 0 {
		return &domain.ErrValidation{Field: "amount", Code: "missing-amount"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return &domain.ErrValidation{Field: "description", Code: "missing-description"}
	}
	if req.SourceAccountID == "" {
		return &domain.ErrValidation{Field: "source_account_id", Code: "missing-source-account"}
	}
	if req.Type == domain.EntryTransfer {
		if req.TargetAccountID == "" {
			return &domain.ErrValidation{Field: "target_account_id", Code: "missing-target-account"}
		}
		if req.TargetAccountID == req.SourceAccountID {
			return &domain.ErrValidation{Field: "target_account_id", Code: "same-account"}
		}
	}
	return nil
}

// DetectTransferCategory returns the first category (input order) whose
// lower-cased name contains "banktransfer" or "umbuchung", or equals
// "transfer". Nil when none matches.
func DetectTransferCategory(categories []domain.Category) *domain.Category {
	for i := range categories {
		name := strings.ToLower(categories[i].Name)
		if strings.Contains(name, "banktransfer") || strings.Contains(name, "umbuchung") || name == "transfer" {
			return &categories[i]
		}
	}
	return nil
}

// DetectAutoTag returns the first tag whose lower-cased name contains
// "transfer", "bank" or "umbuchung". Nil when none matches.
func DetectAutoTag(tags []domain.Tag) *domain.Tag {
	for i := range tags {
		name := strings.ToLower(tags[i].Name)
		if strings.Contains(name, "transfer") || strings.Contains(name, "bank") || strings.Contains(name, "umbuchung") {
			return &tags[i]
		}
	}
	return nil
}

// BuildLegs derives the two ledger entries of a transfer. The debit leg
// carries the negated amount on the source account, the credit leg the
// positive amount on the target; both share date and category. Currency
// comes from each account, falling back to CHF. The tag list is the explicit
// tags plus the auto-detected one, or nil when that set is empty.
func BuildLegs(req *domain.EntryRequest, source, target *domain.Account, category *domain.Category, autoTag *domain.Tag) [2]domain.LedgerEntry {
	amountCents := entryAmountCents(req.Amount)
	date := entryDate(req.Date)
	description := strings.TrimSpace(req.Description)
	tags := mergeTags(req.TagIDs, autoTag)

	var categoryID *string
	if category != nil {
		id := category.ID
		categoryID = &id
	}

	debit := domain.LedgerEntry{
		AccountID:    source.ID,
		Date:         date,
		Description:  fmt.Sprintf("Transfer to: %s - %s", target.Name, description),
		AmountCents:  -amountCents,
		CurrencyCode: accountCurrency(source),
		CategoryID:   categoryID,
		Tags:         tags,
	}
	credit := domain.LedgerEntry{
		AccountID:    target.ID,
		Date:         date,
		Description:  fmt.Sprintf("Transfer from: %s - %s", source.Name, description),
		AmountCents:  amountCents,
		CurrencyCode: accountCurrency(target),
		CategoryID:   categoryID,
		Tags:         tags,
	}
	return [2]domain.LedgerEntry{debit, credit}
}

// BuildSingleEntry derives the ledger entry for an income or expense.
// Expenses are negated, incomes kept positive, regardless of the sign the
// user typed.
func BuildSingleEntry(req *domain.EntryRequest, account *domain.Account) domain.LedgerEntry {
	amountCents := entryAmountCents(req.Amount)
	if req.Type == domain.EntryExpense {
		amountCents = -amountCents
	}

	var tags []string
	if len(req.TagIDs) > 0 {
		tags = append(tags, req.TagIDs...)
	}

	return domain.LedgerEntry{
		AccountID:    account.ID,
		Date:         entryDate(req.Date),
		Description:  strings.TrimSpace(req.Description),
		AmountCents:  amountCents,
		CurrencyCode: accountCurrency(account),
		CategoryID:   nil,
		Tags:         tags,
	}
}

// CreateEntry validates the request, resolves reference data, builds the
// leg(s) and submits them. Transfer legs are POSTed concurrently and joined;
// if either call fails the whole operation is reported failed. A leg that
// already succeeded is not compensated.
func (s *EntryService) CreateEntry(ctx context.Context, req *domain.EntryRequest) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "EntryService.CreateEntry")
	defer span.End()
	span.SetAttributes(attribute.String("entry.type", string(req.Type)))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("create_entry", time.Since(start)) }()

	if err := s.Validate(req); err != nil {
		return nil, err
	}

	accounts, err := s.reference.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	source := findAccount(accounts, req.SourceAccountID)
	if source == nil {
		return nil, &domain.ErrNotFound{Resource: "account", ID: req.SourceAccountID}
	}

	if req.Type != domain.EntryTransfer {
		entry := BuildSingleEntry(req, source)
		created, err := s.store.CreateTransaction(ctx, &entry)
		if err != nil {
			s.logger.Error("failed to create entry",
				zap.String("type", string(req.Type)),
				zap.Error(err),
			)
			return nil, err
		}
		s.metrics.IncrEntry(string(req.Type))
		return []domain.Transaction{*created}, nil
	}

	target := findAccount(accounts, req.TargetAccountID)
	if target == nil {
		return nil, &domain.ErrNotFound{Resource: "account", ID: req.TargetAccountID}
	}

	categories, err := s.reference.Categories(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.reference.Tags(ctx)
	if err != nil {
		return nil, err
	}

	legs := BuildLegs(req, source, target, DetectTransferCategory(categories), DetectAutoTag(tags))

	created, err := s.submitLegs(ctx, legs)
	if err != nil {
		s.logger.Error("transfer submission failed",
			zap.String("source_account", source.ID),
			zap.String("target_account", target.ID),
			zap.Error(err),
		)
		return nil, &domain.ErrTransferFailed{Err: err}
	}

	s.metrics.IncrEntry(string(domain.EntryTransfer))
	s.logger.Info("transfer created",
		zap.String("source_account", source.ID),
		zap.String("target_account", target.ID),
		zap.Int64("amount_cents", legs[1].AmountCents),
	)
	return created, nil
}

// ListTransactions passes the backend transaction list through for the
// browse view.
func (s *EntryService) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "EntryService.ListTransactions")
	defer span.End()

	return s.store.ListTransactions(ctx)
}

// submitLegs POSTs both legs concurrently and waits for both. There is no
// rollback of a leg that already landed; the open inconsistency window is a
// property of the backend API, which has no two-leg endpoint.
func (s *EntryService) submitLegs(ctx context.Context, legs [2]domain.LedgerEntry) ([]domain.Transaction, error) {
	created := make([]domain.Transaction, 2)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range legs {
		g.Go(func() error {
			tx, err := s.store.CreateTransaction(gCtx, &legs[i])
			if err != nil {
				return err
			}
			created[i] = *tx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return created, nil
}

func findAccount(accounts []domain.Account, id string) *domain.Account {
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i]
		}
	}
	return nil
}

func accountCurrency(account *domain.Account) string {
	if account.CurrencyCode == "" {
		return "CHF"
	}
	return account.CurrencyCode
}

func entryAmountCents(amount string) int64 {
	return int64(math.Round(math.Abs(domain.CoerceNumericOrZero(amount)) * 100))
}

func entryDate(date string) string {
	if date == "" {
		return time.Now().Format("2006-01-02")
	}
	return date
}

func mergeTags(explicit []string, autoTag *domain.Tag) []string {
	var tags []string
	tags = append(tags, explicit...)
	if autoTag != nil {
		present := false
		for _, id := range tags {
			if id == autoTag.ID {
				present = true
				break
			}
		}
		if !present {
			tags = append(tags, autoTag.ID)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

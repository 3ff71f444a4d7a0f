package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/logging"
)

type reportService interface {
	GenerateStatement(ctx context.Context, customerID int64, start, end time.Time) (*domain.StatementReport, error)
}

type ReportHandler struct {
	reports reportService
}

func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type statementDTO struct {
	CustomerID   int64                 `json:"customer_id"`
	CustomerName string                `json:"customer_name,omitempty"`
	Start        time.Time             `json:"start"`
	End          time.Time             `json:"end"`
	Accounts     []statementAccountDTO `json:"accounts"`
	TotalBalance string                `json:"total_balance"`
}

type statementAccountDTO struct {
	AccountID      uuid.UUID     `json:"account_id"`
	AccountNumber  string        `json:"account_number"`
	AccountType    string        `json:"account_type"`
	OpeningBalance string        `json:"opening_balance"`
	CurrentBalance string        `json:"current_balance"`
	Active         bool          `json:"active"`
	Movements      []movementDTO `json:"movements"`
}

func toStatementDTO(s *domain.StatementReport) statementDTO {
	accounts := make([]statementAccountDTO, len(s.Accounts))
	for i, a := range s.Accounts {
		accounts[i] = statementAccountDTO{
			AccountID:      a.AccountID,
			AccountNumber:  a.AccountNumber,
			AccountType:    string(a.AccountType),
			OpeningBalance: a.OpeningBalance.StringFixed(domain.MoneyScale),
			CurrentBalance: a.CurrentBalance.StringFixed(domain.MoneyScale),
			Active:         a.Active,
			Movements:      toMovementDTOs(a.Movements),
		}
	}
	return statementDTO{
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		Start:        s.Start,
		End:          s.End,
		Accounts:     accounts,
		TotalBalance: s.TotalBalance.StringFixed(domain.MoneyScale),
	}
}

// Statement serves /reports?customer=&start=&end=. format=table returns the
// same report as plain text.
func (h *ReportHandler) Statement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var fields []FieldError

	customerID, err := strconv.ParseInt(q.Get("customer"), 10, 64)
	if err != nil || customerID <= 0 {
		fields = append(fields, FieldError{Field: "customer", Message: "must be a positive id"})
	}

	var start, end time.Time
	if raw := q.Get("start"); raw == "" {
		fields = append(fields, FieldError{Field: "start", Message: "required"})
	} else if start, err = parseRangeBound(raw, false); err != nil {
		fields = append(fields, FieldError{Field: "start", Message: err.Error()})
	}
	if raw := q.Get("end"); raw == "" {
		fields = append(fields, FieldError{Field: "end", Message: "required"})
	} else if end, err = parseRangeBound(raw, true); err != nil {
		fields = append(fields, FieldError{Field: "end", Message: err.Error()})
	}

	format := q.Get("format")
	if format != "" && format != "json" && format != "table" {
		fields = append(fields, FieldError{Field: "format", Message: "must be json or table"})
	}

	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	report, err := h.reports.GenerateStatement(r.Context(), customerID, start, end)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to build statement", "customer_id", customerID, "error", err)
		RespondDomainError(w, err)
		return
	}

	if format == "table" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(renderStatement(report))); err != nil {
			logging.FromContext(r.Context()).Error("failed to write statement", "error", err)
		}
		return
	}

	RespondSuccess(w, http.StatusOK, toStatementDTO(report))
}

// renderStatement lays the report out one row per movement, with a row for
// accounts that saw no movement in the range.
func renderStatement(s *domain.StatementReport) string {
	buf := bytes.NewBuffer([]byte{})

	customer := strconv.FormatInt(s.CustomerID, 10)
	if s.CustomerName != "" {
		customer = s.CustomerName + " (" + customer + ")"
	}
	buf.WriteString("Customer: " + customer + "\n")
	buf.WriteString("Period:   " + s.Start.Format(dateOnly) + " to " + s.End.Format(dateOnly) + "\n\n")

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"Date", "Account", "Type", "Opening", "Movement", "Amount", "Balance", "Active"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, a := range s.Accounts {
		active := strconv.FormatBool(a.Active)
		opening := a.OpeningBalance.StringFixed(domain.MoneyScale)
		if len(a.Movements) == 0 {
			table.Append([]string{"", a.AccountNumber, string(a.AccountType), opening, "", "", a.CurrentBalance.StringFixed(domain.MoneyScale), active})
			continue
		}
		for _, m := range a.Movements {
			table.Append([]string{
				m.OccurredAt.Format(dateOnly),
				a.AccountNumber,
				string(a.AccountType),
				opening,
				string(m.MovementType),
				m.Signed().StringFixed(domain.MoneyScale),
				m.Balance.StringFixed(domain.MoneyScale),
				active,
			})
		}
	}
	table.SetFooter([]string{"", "", "", "", "", "Total", s.TotalBalance.StringFixed(domain.MoneyScale), ""})
	table.Render()

	return buf.String()
}

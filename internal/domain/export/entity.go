package export

import "github.com/shopspring/decimal"

// LedgerEntry - one account bucket of the double-entry projection over a
// run's finalized payslip lines.
type LedgerEntry struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Ledger account codes used by the projection.
const (
	AccountBasicPay          = "5100"
	AccountAllowances        = "5110"
	AccountOvertime          = "5120"
	AccountEmployerStatutory = "5200"
	AccountLoanRecovery      = "1310"
	AccountDeductionsPayable = "2110"
	AccountNetPayPayable     = "2100"
)

// BankTransferRecord - one flat per-employee payment record handed to an
// external bank-file formatter. Byte layout (fixed-width, spreadsheet) is out
// of scope here.
type BankTransferRecord struct {
	EmployeeIdentifier string          `json:"employee_identifier"`
	EmployeeName       string          `json:"employee_name"`
	BankCode           string          `json:"bank_code"`
	IBAN               string          `json:"iban"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	BasicAmount        decimal.Decimal `json:"basic_amount"`
	HousingAmount      decimal.Decimal `json:"housing_amount"`
	OtherAllowances    decimal.Decimal `json:"other_allowances"`
	Deductions         decimal.Decimal `json:"deductions"`
}

// GosiReportRow - per-employee contribution summary for a run.
type GosiReportRow struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeCode  string          `json:"employee_code"`
	EmployeeName  string          `json:"employee_name"`
	IsSaudi       bool            `json:"is_saudi"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	EmployeeShare decimal.Decimal `json:"employee_share"`
	EmployerShare decimal.Decimal `json:"employer_share"`
	Total         decimal.Decimal `json:"total"`
}

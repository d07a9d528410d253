package devapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/internal/financial"
)

// Dataset is the fixture financial data served by the stub.
type Dataset struct {
	Accounts         []financial.Account
	OverdueAccounts  []financial.OverdueAccount
	Discrepancies    []financial.Discrepancy
	FollowUps        []financial.FollowUp
	PayableChecks    []financial.PayableCheck
	ReceivableChecks []financial.ReceivableCheck
	OngoingDebts     []financial.OngoingDebt
}

// SampleDataset builds the demo records with due dates relative to now.
// authorID and authorName are credited with discrepancies and follow-ups.
func SampleDataset(now time.Time, authorID int64, authorName string) Dataset {
	today := financial.Today(now)
	day := func(offset int) financial.Date {
		return financial.Date{Time: today.AddDate(0, 0, offset)}
	}
	amount := decimal.RequireFromString

	accounts := []financial.Account{
		{ID: 1, Name: "شرکت ABC", AccountNumber: "ACC001", Balance: amount("2500000.00"), IsActive: true, CreatedAt: now},
		{ID: 2, Name: "شرکت XYZ", AccountNumber: "ACC002", Balance: amount("-500000.00"), IsActive: true, CreatedAt: now},
		{ID: 3, Name: "فروشگاه مهر", AccountNumber: "ACC003", Balance: amount("1200000.00"), IsActive: true, CreatedAt: now},
		{ID: 4, Name: "شرکت پارس", AccountNumber: "ACC004", Balance: amount("750000.00"), IsActive: true, CreatedAt: now},
		{ID: 5, Name: "تأمین‌کننده نور", AccountNumber: "ACC005", Balance: amount("-800000.00"), IsActive: true, CreatedAt: now},
	}
	name := func(id int64) string {
		for _, a := range accounts {
			if a.ID == id {
				return a.Name
			}
		}
		return ""
	}

	return Dataset{
		Accounts: accounts,
		OverdueAccounts: []financial.OverdueAccount{
			{ID: 1, Account: 2, AccountName: name(2), CustomerName: "شرکت XYZ", OverdueAmount: amount("500000.00"), DueDate: day(-45), ContactInfo: "تلفن: 021-12345678", CreatedAt: now},
			{ID: 2, Account: 5, AccountName: name(5), CustomerName: "تأمین‌کننده نور", OverdueAmount: amount("800000.00"), DueDate: day(-30), ContactInfo: "تلفن: 021-87654321", CreatedAt: now},
		},
		Discrepancies: []financial.Discrepancy{
			{ID: 1, Title: "اختلاف فاکتور 1001", Description: "اختلاف در محاسبه فاکتور شماره 1001", Amount: amount("150000.00"), Account: 1, AccountName: name(1), Status: financial.DiscrepancyPending, CreatedBy: authorID, CreatedByName: authorName, CreatedAt: now},
			{ID: 2, Title: "عدم تطابق موجودی", Description: "عدم تطابق موجودی انبار با سیستم", Amount: amount("250000.00"), Account: 2, AccountName: name(2), Status: financial.DiscrepancyPending, CreatedBy: authorID, CreatedByName: authorName, CreatedAt: now},
			{ID: 3, Title: "خطا در ثبت پرداخت", Description: "خطا در ثبت پرداخت نقدی", Amount: amount("75000.00"), Account: 3, AccountName: name(3), Status: financial.DiscrepancyResolved, CreatedBy: authorID, CreatedByName: authorName, CreatedAt: now},
		},
		FollowUps: []financial.FollowUp{
			{ID: 1, Title: "پیگیری مطالبات ABC", Description: "پیگیری پرداخت مطالبات شرکت ABC", CustomerName: "شرکت ABC", FollowUpDate: day(3), Status: financial.FollowUpPending, CreatedBy: authorID, CreatedByName: authorName, CreatedAt: now},
			{ID: 2, Title: "بررسی قرارداد جدید", Description: "بررسی وضعیت قرارداد جدید", CustomerName: "شرکت پارس", FollowUpDate: day(5), Status: financial.FollowUpInProgress, CreatedBy: authorID, CreatedByName: authorName, CreatedAt: now},
			{ID: 3, Title: "تسویه حساب تأمین‌کننده", Description: "تماس با تأمین‌کننده برای تسویه حساب", CustomerName: "تأمین‌کننده نور", FollowUpDate: day(-2), Status: financial.FollowUpCompleted, CreatedBy: authorID, CreatedByName: authorName, CreatedAt: now},
		},
		PayableChecks: []financial.PayableCheck{
			{ID: 1, CheckNumber: "CHK001", Amount: amount("500000.00"), Payee: "شرکت تأمین کالا", DueDate: day(15), BankName: "بانک ملی", Status: financial.PayableIssued, CreatedAt: now},
			{ID: 2, CheckNumber: "CHK002", Amount: amount("750000.00"), Payee: "شرکت حمل و نقل", DueDate: day(30), BankName: "بانک صادرات", Status: financial.PayableIssued, CreatedAt: now},
			{ID: 3, CheckNumber: "CHK003", Amount: amount("300000.00"), Payee: "اجاره دفتر", DueDate: day(-5), BankName: "بانک تجارت", Status: financial.PayablePaid, CreatedAt: now},
		},
		ReceivableChecks: []financial.ReceivableCheck{
			{ID: 1, CheckNumber: "RCV001", Amount: amount("400000.00"), Payer: "شرکت ABC", DueDate: day(10), BankName: "بانک ملی", Status: financial.ReceivableReceived, CreatedAt: now},
			{ID: 2, CheckNumber: "RCV002", Amount: amount("600000.00"), Payer: "فروشگاه مهر", DueDate: day(20), BankName: "بانک پاسارگاد", Status: financial.ReceivableReceived, CreatedAt: now},
		},
		OngoingDebts: []financial.OngoingDebt{
			{ID: 1, CreditorName: "بانک ملی", Description: "بدهی بانکی کوتاه مدت", Amount: amount("5000000.00"), DueDate: day(90), Status: financial.DebtPending, CreatedAt: now},
			{ID: 2, CreditorName: "شرکت تجهیزات", Description: "اقساط تجهیزات دفتری", Amount: amount("1200000.00"), DueDate: day(60), Status: financial.DebtPending, CreatedAt: now},
			{ID: 3, CreditorName: "تأمین‌کننده اصلی", Description: "بدهی به تأمین‌کننده اصلی", Amount: amount("2500000.00"), DueDate: day(45), Status: financial.DebtPartialPaid, CreatedAt: now},
		},
	}
}

// Summary aggregates the dataset the way the dashboard expects: only pending
// discrepancies, issued payable checks, received receivable checks and
// pending debts are counted.
func (d Dataset) Summary() financial.Summary {
	var s financial.Summary
	for _, a := range d.Accounts {
		s.TotalAccounts++
		s.TotalBalance = s.TotalBalance.Add(a.Balance)
	}
	for _, o := range d.OverdueAccounts {
		s.OverdueAccountsCount++
		s.OverdueAmount = s.OverdueAmount.Add(o.OverdueAmount)
	}
	for _, x := range d.Discrepancies {
		if x.Status == financial.DiscrepancyPending {
			s.PendingDiscrepancies++
		}
	}
	for _, c := range d.PayableChecks {
		if c.Status == financial.PayableIssued {
			s.PayableChecksCount++
		}
	}
	for _, c := range d.ReceivableChecks {
		if c.Status == financial.ReceivableReceived {
			s.ReceivableChecksCount++
		}
	}
	for _, debt := range d.OngoingDebts {
		if debt.Status == financial.DebtPending {
			s.OngoingDebtsCount++
			s.OngoingDebtsAmount = s.OngoingDebtsAmount.Add(debt.Amount)
		}
	}
	return s
}

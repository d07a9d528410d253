package view

import (
	"strings"

	"github.com/finboard/finboard/internal/session"
)

// NavItem is one entry of the sidebar menu.
type NavItem struct {
	Path  string
	Label string
	Icon  string
}

var managementNav = []NavItem{
	{Path: "/dashboard", Label: "داشبورد", Icon: "🏠"},
	{Path: "/users", Label: "مدیریت کاربران", Icon: "👥"},
}

var accountingNav = []NavItem{
	{Path: "/accounts", Label: "حساب‌ها", Icon: "💰"},
	{Path: "/overdue-accounts", Label: "حساب‌های معوقه", Icon: "⚠️"},
	{Path: "/discrepancies", Label: "مغایرت‌ها", Icon: "🔍"},
	{Path: "/follow-ups", Label: "پیگیری‌ها", Icon: "📋"},
	{Path: "/inventory-stats", Label: "آمار انبار", Icon: "📦"},
	{Path: "/tasks", Label: "لیست کارها", Icon: "✅"},
	{Path: "/payable-checks", Label: "چک‌های پرداختی", Icon: "💳"},
	{Path: "/receivable-checks", Label: "چک‌های دریافتی", Icon: "💵"},
	{Path: "/ongoing-debts", Label: "بدهی‌های در جریان", Icon: "📊"},
}

// Navigation returns the menu for the session's capabilities.
func Navigation(state session.State) []NavItem {
	var items []NavItem
	if state.HasManagementAccess() {
		items = append(items, managementNav...)
	}
	if state.HasAccountingAccess() {
		items = append(items, accountingNav...)
	}
	return items
}

func navActive(current, item string) bool {
	return current == item || strings.HasPrefix(current, item+"/")
}

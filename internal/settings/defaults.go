package settings

// Settings group names as stored in the setting_group column.
const (
	GroupCompany      = "company"
	GroupInvoice      = "invoice"
	GroupEmail        = "email"
	GroupNotification = "notification"
)

// Frequently used setting keys.
const (
	KeyCurrency               = "currency"
	KeyCompanyName            = "company_name"
	KeyCompanyEmail           = "company_email"
	KeyInvoicePrefix          = "invoice_prefix"
	KeyInvoiceNextNumber      = "invoice_next_number"
	KeySymbolPosition         = "invoice_currency_symbol_position"
	KeyNotifyNewOrder         = "notify_new_order"
	KeyNotifyLowStock         = "notify_low_stock"
	KeyNotifyPaymentReceived  = "notify_payment_received"
	KeyLowStockThreshold      = "low_stock_threshold"
	KeyAdminEmail             = "admin_email"
	KeyEmailFrom              = "email_from"
	KeyEmailFromName          = "email_from_name"
	KeyEmailFooter            = "email_footer"
	KeySMTPEnabled            = "smtp_enabled"
)

// CompanyDefaults returns the compiled-in company branding defaults.
// Callers receive a fresh map per call; resolved maps are never shared.
func CompanyDefaults() map[string]string {
	return map[string]string{
		KeyCompanyName:    "Krumz Foods",
		KeyCompanyEmail:   "krumsbakery@gmail.com",
		"company_phone":   "+91 7994 588 288",
		"company_address": "Valiyakunnu, Valanchery, Kerala",
		KeyCurrency:       "₹",
	}
}

// InvoiceDefaults returns the compiled-in invoice settings defaults.
func InvoiceDefaults() map[string]string {
	return map[string]string{
		KeyInvoicePrefix:     "INV-",
		KeyInvoiceNextNumber: "1001",
		"invoice_footer_text": "Thank you for your business!",
		"invoice_terms": "1. Goods once sold will not be taken back or exchanged.\n" +
			"2. All disputes are subject to local jurisdiction.\n" +
			"3. E. & O.E.: Errors and Omissions Excepted.",
		"invoice_include_logo":     "1",
		"invoice_tax_label":        "GST",
		"invoice_default_tax_rate": "18",
		"invoice_due_days":         "30",
		KeySymbolPosition:          "before",
		"enable_invoice_email":     "0",
	}
}

// EmailDefaults returns the compiled-in SMTP/email settings defaults.
func EmailDefaults() map[string]string {
	return map[string]string{
		KeySMTPEnabled:    "0",
		"smtp_host":       "",
		"smtp_port":       "587",
		"smtp_username":   "",
		"smtp_password":   "",
		"smtp_encryption": "tls",
		KeyEmailFrom:      "krumsbakery@gmail.com",
		KeyEmailFromName:  "Krumz Foods",
		KeyEmailFooter:    "Thank you for using Billgix",
	}
}

// NotificationDefaults returns the compiled-in notification settings defaults.
func NotificationDefaults() map[string]string {
	return map[string]string{
		KeyNotifyNewOrder:            "1",
		KeyNotifyLowStock:            "1",
		KeyNotifyPaymentReceived:     "1",
		KeyLowStockThreshold:         "5",
		KeyAdminEmail:                "",
		"payment_reminder_days":      "3",
		"out_of_stock_notification":  "1",
		"daily_report_summary":       "0",
	}
}

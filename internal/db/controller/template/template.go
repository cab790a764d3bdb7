// Package template provides CRUD operations and default seeding for
// stored email templates.
package template

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/db/models"
)

const nameQueryPattern = "name = ?"

var (
	// ErrTemplateNotFound is returned when a template is not found.
	ErrTemplateNotFound = errors.New("email template not found")
	// ErrTemplateNameEmpty is returned when attempting to save a template with an empty name.
	ErrTemplateNameEmpty = errors.New("email template name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a template by its name.
func Get(db *gorm.DB, name string) (*models.EmailTemplate, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrTemplateNameEmpty
	}

	var tmpl models.EmailTemplate
	result := db.Where(nameQueryPattern, name).First(&tmpl)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, result.Error
	}

	return &tmpl, nil
}

// GetByID retrieves a template by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.EmailTemplate, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tmpl models.EmailTemplate
	result := db.First(&tmpl, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, result.Error
	}

	return &tmpl, nil
}

// List retrieves all templates ordered by name.
func List(db *gorm.DB) ([]models.EmailTemplate, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var templates []models.EmailTemplate
	result := db.Order("name ASC").Find(&templates)
	if result.Error != nil {
		return nil, result.Error
	}

	return templates, nil
}

// Save creates or updates a template by name.
func Save(db *gorm.DB, tmpl *models.EmailTemplate) error {
	if db == nil {
		return ErrDBNil
	}
	if tmpl.Name == "" {
		return ErrTemplateNameEmpty
	}

	var existing models.EmailTemplate
	result := db.Where(nameQueryPattern, tmpl.Name).First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return db.Create(tmpl).Error
	}
	if result.Error != nil {
		return result.Error
	}

	existing.Subject = tmpl.Subject
	existing.Body = tmpl.Body
	existing.Variables = tmpl.Variables
	*tmpl = existing

	return db.Save(&existing).Error
}

// Delete deletes a template by ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.EmailTemplate{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// EncodeVariables encodes a placeholder name list into the stored JSON form.
func EncodeVariables(vars []string) string {
	out, err := json.Marshal(vars)
	if err != nil {
		return "[]"
	}

	return string(out)
}

// DecodeVariables decodes the stored JSON variables column.
// Malformed data decodes to an empty list rather than an error: the
// column is display-only.
func DecodeVariables(raw string) []string {
	var vars []string
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		return nil
	}

	return vars
}

// EnsureDefaults seeds the default template set the first time the
// template store is accessed and found empty. An already populated
// store is left untouched, even if individual defaults were deleted.
func EnsureDefaults(db *gorm.DB, companyName string) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64
	if err := db.Model(&models.EmailTemplate{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	for _, tmpl := range Defaults(companyName) {
		tmpl := tmpl
		if err := db.Create(&tmpl).Error; err != nil {
			return err
		}
	}

	return nil
}

// Defaults returns the compiled-in default template set.
func Defaults(companyName string) []models.EmailTemplate {
	return []models.EmailTemplate{
		{
			Name:    "invoice",
			Subject: "Your Invoice from " + companyName,
			Body: "Dear {{customer_name}},\n\nThank you for your purchase!\n\n" +
				"Please find attached your invoice {{invoice_number}} dated {{invoice_date}}.\n\n" +
				"Total Amount: {{currency}}{{total_amount}}\n\n" +
				"If you have any questions, please don't hesitate to contact us.\n\nRegards,\n" + companyName,
			Variables: EncodeVariables([]string{"customer_name", "invoice_number", "invoice_date", "currency", "total_amount"}),
		},
		{
			Name:    "payment_reminder",
			Subject: "Payment Reminder for Invoice #{{invoice_number}}",
			Body: "Dear {{customer_name}},\n\nThis is a friendly reminder that payment for invoice " +
				"#{{invoice_number}} in the amount of {{currency}}{{total_amount}} is due.\n\n" +
				"Original Invoice Date: {{invoice_date}}\n\n" +
				"Please process this payment at your earliest convenience.\n\nRegards,\n" + companyName,
			Variables: EncodeVariables([]string{"customer_name", "invoice_number", "invoice_date", "currency", "total_amount", "due_date"}),
		},
		{
			Name:    "welcome",
			Subject: "Welcome to " + companyName,
			Body: "Dear {{customer_name}},\n\nWelcome to " + companyName + "!\n\n" +
				"We're delighted to have you as our customer and look forward to serving you.\n\n" +
				"If you have any questions or need assistance, please feel free to contact us.\n\nRegards,\n" + companyName,
			Variables: EncodeVariables([]string{"customer_name"}),
		},
		{
			Name:    "order_confirmation",
			Subject: "Order Confirmation #{{order_number}}",
			Body: "Dear {{customer_name}},\n\nThank you for your order!\n\n" +
				"Your order #{{order_number}} has been confirmed and is being processed.\n\n" +
				"Order Date: {{order_date}}\nTotal Amount: {{currency}}{{total_amount}}\n\n" +
				"You will receive another notification when your order ships.\n\nRegards,\n" + companyName,
			Variables: EncodeVariables([]string{"customer_name", "order_number", "order_date", "currency", "total_amount"}),
		},
	}
}

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/billgix/billgix/internal/db/models"
)

func TestRender(t *testing.T) {
	testCases := []struct {
		name            string
		subject         string
		body            string
		vars            map[string]string
		expectedSubject string
		expectedBody    string
	}{
		{
			name:            "all tokens replaced",
			subject:         "Invoice {{invoice_number}}",
			body:            "Dear {{customer_name}}, total is {{total}}.",
			vars:            map[string]string{"invoice_number": "INV-1001", "customer_name": "Ann", "total": "₹1,234.50"},
			expectedSubject: "Invoice INV-1001",
			expectedBody:    "Dear Ann, total is ₹1,234.50.",
		},
		{
			name:            "unmatched tokens left verbatim",
			subject:         "Hello",
			body:            "Hi {{name}}, total {{total}}",
			vars:            map[string]string{"name": "Ann"},
			expectedSubject: "Hello",
			expectedBody:    "Hi Ann, total {{total}}",
		},
		{
			name:            "no variables",
			subject:         "Static subject",
			body:            "Static {{body}}",
			vars:            nil,
			expectedSubject: "Static subject",
			expectedBody:    "Static {{body}}",
		},
		{
			name:            "repeated token replaced everywhere",
			subject:         "{{n}} and {{n}}",
			body:            "{{n}}{{n}}{{n}}",
			vars:            map[string]string{"n": "x"},
			expectedSubject: "x and x",
			expectedBody:    "xxx",
		},
		{
			name:            "token inside a value is not rescanned",
			subject:         "value: {{a}}",
			body:            "{{a}} then {{b}}",
			vars:            map[string]string{"a": "{{b}}", "b": "X"},
			expectedSubject: "value: {{b}}",
			expectedBody:    "{{b}} then X",
		},
		{
			name:            "unbalanced braces before a token",
			subject:         "{{{n}}}",
			body:            "{{ {{n}}",
			vars:            map[string]string{"n": "x"},
			expectedSubject: "{x}",
			expectedBody:    "{{ x",
		},
		{
			name:            "values are not escaped",
			subject:         "{{s}}",
			body:            "{{s}}",
			vars:            map[string]string{"s": "<b>&</b>"},
			expectedSubject: "<b>&</b>",
			expectedBody:    "<b>&</b>",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			subject, body := Render(tc.subject, tc.body, tc.vars)
			assert.Equal(t, tc.expectedSubject, subject)
			assert.Equal(t, tc.expectedBody, body)
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	// Values that themselves contain another key's token are the
	// order-sensitive case: a sequential replace over a map would
	// produce different output per run depending on whether the outer
	// or the inner key is applied first.
	vars := map[string]string{"a": "{{b}}", "b": "{{c}}", "c": "3", "d": "4"}

	firstSubject, firstBody := Render("value: {{a}}", "{{d}}{{c}}{{b}}{{a}}", vars)
	assert.Equal(t, "value: {{b}}", firstSubject)

	for range 200 {
		subject, body := Render("value: {{a}}", "{{d}}{{c}}{{b}}{{a}}", vars)
		assert.Equal(t, firstSubject, subject)
		assert.Equal(t, firstBody, body)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := &models.EmailTemplate{
		Name:    "order_confirmation",
		Subject: "Order Confirmation #{{order_number}}",
		Body:    "Dear {{customer_name}},\n\nYour order #{{order_number}} is confirmed.",
	}

	subject, body := Template(tmpl, map[string]string{
		"order_number":  "INV-1001",
		"customer_name": "Ann",
	})

	assert.Equal(t, "Order Confirmation #INV-1001", subject)
	assert.Equal(t, "Dear Ann,\n\nYour order #INV-1001 is confirmed.", body)
}

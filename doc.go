// Billgix is a small-business inventory and billing web application:
// product catalog, customer records, sales and invoicing, and a set of
// admin settings screens driving outbound email notifications and PDF
// invoice generation.
package main

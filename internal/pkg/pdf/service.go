// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/sales"
	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateInvoice renders a customer invoice as PDF
func (s *Service) GenerateInvoice(invoice *sales.Invoice) (*bytes.Buffer, error) {
	data := documentData{
		Title:    "INVOICE",
		Number:   invoice.Number,
		Date:     invoice.IssuedAt.Format("January 2, 2006"),
		Status:   string(invoice.Status),
		Customer: invoice.Customer.Name,
		Address:  invoice.Customer.Address,
		Phone:    invoice.Customer.Phone,
		Company:  s.companyInfo(),
		Warranty: invoice.WarrantyTerms,
		Subtotal: s.money(invoice.Subtotal),
		Discount: invoice.DiscountPercent,
		Total:    s.money(invoice.GrandTotal),
	}
	if invoice.AdvancePayment > 0 {
		data.Advance = s.money(invoice.AdvancePayment)
		data.Balance = s.money(invoice.Outstanding())
	}
	for _, item := range invoice.Items {
		data.Lines = append(data.Lines, documentLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   s.money(item.UnitPrice),
			LineTotal:   s.money(item.LineTotal),
		})
	}

	return s.render(data)
}

// GenerateQuotation renders a draft quotation as PDF
func (s *Service) GenerateQuotation(quotation *sales.Quotation) (*bytes.Buffer, error) {
	data := documentData{
		Title:    "QUOTATION",
		Number:   quotation.Number,
		Date:     quotation.CreatedAt.Format("January 2, 2006"),
		Status:   string(quotation.Status),
		Customer: quotation.Customer.Name,
		Address:  quotation.Customer.Address,
		Phone:    quotation.Customer.Phone,
		Company:  s.companyInfo(),
		Warranty: quotation.WarrantyTerms,
		Subtotal: s.money(quotation.Subtotal),
		Discount: quotation.DiscountPercent,
		Total:    s.money(quotation.GrandTotal),
		ValidFor: "14 days",
	}
	for _, item := range quotation.Items {
		data.Lines = append(data.Lines, documentLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   s.money(item.UnitPrice),
			LineTotal:   s.money(item.LineTotal),
		})
	}

	return s.render(data)
}

func (s *Service) companyInfo() CompanyInfo {
	return CompanyInfo{
		Name:    s.config.Company.Name,
		Address: s.config.Company.Address,
		Phone:   s.config.Company.Phone,
		Email:   s.config.Company.Email,
		Website: s.config.Company.Website,
	}
}

func (s *Service) money(amount float64) string {
	return fmt.Sprintf("%s %.2f", s.config.Company.Currency, amount)
}

// render converts the document template to PDF via wkhtmltopdf
func (s *Service) render(data documentData) (*bytes.Buffer, error) {
	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data documentData) (string, error) {
	tmpl := template.Must(template.New("document").Parse(documentTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// documentData represents the data passed to the document template
type documentData struct {
	Title    string
	Number   string
	Date     string
	Status   string
	Customer string
	Address  string
	Phone    string
	Company  CompanyInfo
	Lines    []documentLine
	Subtotal string
	Discount float64
	Total    string
	Advance  string
	Balance  string
	Warranty string
	ValidFor string
}

type documentLine struct {
	Description string
	Quantity    int
	UnitPrice   string
	LineTotal   string
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// Shared invoice/quotation HTML template
const documentTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}} {{.Number}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .document-info {
            text-align: right;
            flex: 1;
        }
        .document-title {
            font-size: 28px;
            font-weight: bold;
            color: #b45309;
            margin-bottom: 10px;
        }
        .customer-info {
            margin-bottom: 30px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 110px;
        }
        .totals {
            float: right;
            width: 320px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 130px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .warranty {
            clear: both;
            margin-top: 30px;
            padding: 12px;
            background-color: #f8f9fa;
            font-size: 13px;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
            background-color: #fef3c7;
            color: #92400e;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Phone: {{.Company.Phone}}</p>
            <p>Email: {{.Company.Email}}</p>
            <p>{{.Company.Website}}</p>
        </div>
        <div class="document-info">
            <div class="document-title">{{.Title}}</div>
            <p><strong>No:</strong> {{.Number}}</p>
            <p><strong>Date:</strong> {{.Date}}</p>
            <p><strong>Status:</strong> <span class="status-badge">{{.Status}}</span></p>
            {{if .ValidFor}}<p><strong>Valid for:</strong> {{.ValidFor}}</p>{{end}}
        </div>
    </div>

    <div class="customer-info">
        <div class="section-title">Customer:</div>
        <p><strong>{{.Customer}}</strong></p>
        {{if .Address}}<p>{{.Address}}</p>{{end}}
        {{if .Phone}}<p>Phone: {{.Phone}}</p>{{end}}
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Description</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Unit Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr>
                <td>{{.Description}}</td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{.UnitPrice}}</td>
                <td class="total-col">{{.LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{.Subtotal}}</td>
            </tr>
            {{if .Discount}}
            <tr>
                <td class="label">Discount:</td>
                <td class="amount">{{printf "%.1f" .Discount}}%</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{.Total}}</td>
            </tr>
            {{if .Advance}}
            <tr>
                <td class="label">Advance Paid:</td>
                <td class="amount">{{.Advance}}</td>
            </tr>
            <tr>
                <td class="label">Balance Due:</td>
                <td class="amount">{{.Balance}}</td>
            </tr>
            {{end}}
        </table>
    </div>

    <div style="clear: both;"></div>

    {{if .Warranty}}
    <div class="warranty">
        <strong>Warranty:</strong> {{.Warranty}}
    </div>
    {{end}}

    <div class="footer">
        <p>Thank you for your business!</p>
        <p>If you have any questions about this document, please contact us at {{.Company.Email}} or {{.Company.Phone}}</p>
    </div>
</body>
</html>
`

package services

import (
	"bytes"
	"fmt"
	"html/template"

	"wholesale-service/models"
)

var poDocumentTemplate = template.Must(template.New("po").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Purchase Order {{.PO.PONumber}}</title>
<style>
body{font-family:Arial,Helvetica,sans-serif;font-size:12px;color:#222;margin:24px}
h1{font-size:20px;margin:0 0 4px}
table{width:100%;border-collapse:collapse;margin-top:16px}
th,td{border:1px solid #ccc;padding:6px;text-align:left;vertical-align:top}
th{background:#f4f4f4}
td.num{text-align:right}
img.thumb{width:64px;height:80px;object-fit:cover}
.meta{display:flex;justify-content:space-between}
</style>
</head>
<body>
<div class="meta">
  <div>
    <h1>Purchase Order</h1>
    <div>PO number: <strong>{{.PO.PONumber}}</strong></div>
    <div>Order number: {{.PO.OrderNumber}}</div>
    <div>Date: {{.PO.GeneratedAt.Format "02 Jan 2006"}}</div>
  </div>
  <div>
    <strong>{{.PO.Retailer.BusinessName}}</strong><br>
    {{.PO.Retailer.ContactPerson}}<br>
    {{.PO.Retailer.Phone}}<br>
    {{with .PO.Retailer.Address}}{{.Line1}}{{if .Line2}}, {{.Line2}}{{end}}<br>{{.City}}, {{.State}} {{.Pincode}}{{end}}
    {{if .PO.Retailer.GSTIN}}<br>GSTIN: {{.PO.Retailer.GSTIN}}{{end}}
  </div>
</div>
<table>
<thead>
<tr><th>#</th><th>Image</th><th>Item</th><th>Sizes</th><th>Sets</th><th>Pieces</th><th>Price / set</th><th>Amount</th></tr>
</thead>
<tbody>
{{range $i, $row := .Rows}}
<tr>
  <td>{{inc $i}}</td>
  <td><img class="thumb" src="{{$row.ImageURL}}" alt="{{$row.Item.ItemCode}}"></td>
  <td><strong>{{$row.Item.ItemCode}}</strong><br>{{$row.Item.ItemName}}{{if $row.Item.Color}}<br>{{$row.Item.Color}}{{end}}{{if $row.Item.Fabric}}<br>{{$row.Item.Fabric}}{{end}}</td>
  <td>{{range $row.Sizes}}{{.Size}}: {{.Count}}<br>{{end}}</td>
  <td class="num">{{$row.Item.TotalSets}}</td>
  <td class="num">{{$row.Item.TotalPcs}}</td>
  <td class="num">{{money $row.Item.PricePerSet}}</td>
  <td class="num">{{money $row.Item.TotalAmount}}</td>
</tr>
{{end}}
</tbody>
<tfoot>
<tr><td colspan="4">Styles: {{.PO.Summary.TotalStyles}}</td><td class="num">{{.PO.Summary.TotalSets}}</td><td class="num">{{.PO.Summary.TotalPcs}}</td><td>Subtotal</td><td class="num">{{money .PO.Summary.TotalAmount}}</td></tr>
{{if .PO.Summary.TaxAmount}}<tr><td colspan="7">GST</td><td class="num">{{money .PO.Summary.TaxAmount}}</td></tr>{{end}}
<tr><td colspan="7"><strong>Total</strong></td><td class="num"><strong>{{money .PO.Summary.AmountAfterTax}}</strong></td></tr>
</tfoot>
</table>
</body>
</html>
`))

type poDocumentRow struct {
	Item     models.LineItem
	ImageURL string
	Sizes    []sizeCount
}

type sizeCount struct {
	Size  string
	Count int
}

// RenderPurchaseOrderDocument renders po as a standalone HTML page. Items
// whose code has no entry in images show placeholderURL.
func RenderPurchaseOrderDocument(po *models.PurchaseOrder, images map[string]string, placeholderURL string) ([]byte, error) {
	rows := make([]poDocumentRow, len(po.Items))
	for i, item := range po.Items {
		url := images[item.ItemCode]
		if url == "" {
			url = placeholderURL
		}
		rows[i] = poDocumentRow{Item: item, ImageURL: url, Sizes: orderedSizes(item.SizeQuantities)}
	}

	var buf bytes.Buffer
	err := poDocumentTemplate.Execute(&buf, struct {
		PO   *models.PurchaseOrder
		Rows []poDocumentRow
	}{PO: po, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("render purchase order %s: %w", po.PONumber, err)
	}
	return buf.Bytes(), nil
}

// orderedSizes lists standard sizes first, then any others alphabetically.
func orderedSizes(b models.SizeBreakdown) []sizeCount {
	out := make([]sizeCount, 0, len(b))
	seen := make(map[string]bool, len(models.Sizes))
	for _, size := range models.Sizes {
		if n, ok := b[size]; ok {
			out = append(out, sizeCount{size, n})
			seen[size] = true
		}
	}
	for _, size := range sortedSizes(b) {
		if !seen[size] {
			out = append(out, sizeCount{size, b[size]})
		}
	}
	return out
}

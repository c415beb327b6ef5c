package reporting

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	billing "billing-cloud/internal/billing/domain"
)

// BuildRevenueXLSX renders a revenue bucket as a spreadsheet with a
// summary sheet, ranking sheets and the monthly series.
func BuildRevenueXLSX(bucket RevenueBucket) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "resumen"
	clientsSheet := "clientes"
	servicesSheet := "servicios"
	seriesSheet := "meses"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(clientsSheet)
	f.NewSheet(servicesSheet)
	f.NewSheet(seriesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Ingresos por estado")
	_ = f.SetCellValue(summarySheet, "A3", "Estado")
	_ = f.SetCellValue(summarySheet, "B3", "Total")
	statuses := []billing.Status{
		billing.StatusIssued,
		billing.StatusSent,
		billing.StatusPending,
		billing.StatusPaid,
		billing.StatusOverdue,
		billing.StatusCanceled,
	}
	for i, status := range statuses {
		row := i + 4
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(status))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), bucket.StatusTotals[status])
	}

	_ = f.SetCellValue(clientsSheet, "A1", "Cliente")
	_ = f.SetCellValue(clientsSheet, "B1", "Total")
	_ = f.SetCellValue(clientsSheet, "C1", "Documentos")
	for i, client := range bucket.TopClients {
		row := i + 2
		_ = f.SetCellValue(clientsSheet, fmt.Sprintf("A%d", row), client.Name)
		_ = f.SetCellValue(clientsSheet, fmt.Sprintf("B%d", row), client.Total)
		_ = f.SetCellValue(clientsSheet, fmt.Sprintf("C%d", row), client.Count)
	}

	_ = f.SetCellValue(servicesSheet, "A1", "Servicio")
	_ = f.SetCellValue(servicesSheet, "B1", "Categoría")
	_ = f.SetCellValue(servicesSheet, "C1", "Total")
	_ = f.SetCellValue(servicesSheet, "D1", "Unidades")
	for i, service := range bucket.TopServices {
		row := i + 2
		_ = f.SetCellValue(servicesSheet, fmt.Sprintf("A%d", row), service.Name)
		_ = f.SetCellValue(servicesSheet, fmt.Sprintf("B%d", row), service.Category)
		_ = f.SetCellValue(servicesSheet, fmt.Sprintf("C%d", row), service.Total)
		_ = f.SetCellValue(servicesSheet, fmt.Sprintf("D%d", row), service.UnitsSold)
	}

	_ = f.SetCellValue(seriesSheet, "A1", "Mes")
	_ = f.SetCellValue(seriesSheet, "B1", "Facturado")
	_ = f.SetCellValue(seriesSheet, "C1", "Pagado")
	for i, point := range bucket.MonthlySeries {
		row := i + 2
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("A%d", row), point.Label)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("B%d", row), point.IssuedTotal)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("C%d", row), point.PaidTotal)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

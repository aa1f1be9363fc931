// Package csvutil implements the CSV row-shape contract for buyer leads.
// The column order is a compatibility contract shared by import and export;
// every cell is double-quoted with embedded quotes doubled.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leaddesk/leaddesk/app/models"
)

// Header is the fixed export/import column order.
var Header = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags",
	"status", "ownerId", "updatedAt",
}

// ExportMaxRows is the hard cap per export response.
const ExportMaxRows = 10000

// EncodeBuyers renders the header plus one line per buyer.
func EncodeBuyers(buyers []models.Buyer) string {
	var sb strings.Builder
	writeRow(&sb, Header)
	for i := range buyers {
		writeRow(&sb, buyerCells(&buyers[i]))
	}
	return sb.String()
}

func buyerCells(b *models.Buyer) []string {
	return []string{
		b.FullName,
		b.Email,
		b.Phone,
		b.City,
		b.PropertyType,
		b.BHK,
		b.Purpose,
		budgetCell(b.BudgetMin),
		budgetCell(b.BudgetMax),
		b.Timeline,
		b.Source,
		b.Notes,
		strings.Join(b.Tags, ";"),
		b.Status,
		b.OwnerID,
		b.VersionToken(),
	}
}

func budgetCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func writeRow(sb *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(quote(cell))
	}
	sb.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// DecodeRows reads a headed CSV document into raw field maps suitable for
// the schema validator. Unknown columns are rejected so a shifted header
// cannot silently misfile data; ownerId and updatedAt columns are ignored
// because the pipeline assigns both.
func DecodeRows(r io.Reader) ([]map[string]interface{}, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	known := make(map[string]bool, len(Header))
	for _, h := range Header {
		known[h] = true
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if !known[header[i]] {
			return nil, fmt.Errorf("unknown csv column %q", header[i])
		}
	}

	var rows []map[string]interface{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]interface{}, len(header))
		for i, h := range header {
			if h == "ownerId" || h == "updatedAt" || i >= len(record) {
				continue
			}
			row[h] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

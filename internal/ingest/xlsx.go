package ingest

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// prospectAliases maps each prospect field to the header spellings upload
// files have used, in resolution order.
var prospectAliases = map[string][]string{
	"email":   {"email", "email_address", "e-mail"},
	"name":    {"name", "full_name", "contact"},
	"company": {"company", "company_name", "organization"},
	"status":  {"status", "pipeline_status"},
}

// ReadProspectsXLSX reads prospect rows from the first sheet of an XLSX
// upload. The header row is matched case-insensitively against the alias
// table; rows without an email are skipped.
func ReadProspectsXLSX(path string) ([]model.Prospect, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	columns := mapHeader(sheet.Rows[0])
	if _, ok := columns["email"]; !ok {
		return nil, eris.New("ingest: no email column in header row")
	}

	var prospects []model.Prospect
	for _, row := range sheet.Rows[1:] {
		p := model.Prospect{
			Email:   cellAt(row, columns, "email"),
			Name:    cellAt(row, columns, "name"),
			Company: cellAt(row, columns, "company"),
			Status:  parseStatus(cellAt(row, columns, "status")),
		}
		if p.Email == "" {
			continue
		}
		prospects = append(prospects, p)
	}
	return prospects, nil
}

// mapHeader resolves header cells to logical field names.
func mapHeader(header *xlsx.Row) map[string]int {
	columns := make(map[string]int)
	for i, cell := range header.Cells {
		label := strings.ToLower(strings.TrimSpace(cell.String()))
		for logical, aliases := range prospectAliases {
			if _, taken := columns[logical]; taken {
				continue
			}
			for _, alias := range aliases {
				if label == alias {
					columns[logical] = i
					break
				}
			}
		}
	}
	return columns
}

func cellAt(row *xlsx.Row, columns map[string]int, logical string) string {
	i, ok := columns[logical]
	if !ok || i >= len(row.Cells) {
		return ""
	}
	return strings.TrimSpace(row.Cells[i].String())
}

func parseStatus(s string) model.ProspectStatus {
	switch model.ProspectStatus(strings.ToLower(s)) {
	case model.ProspectStatusComplete, model.ProspectStatusProcessing, model.ProspectStatusFailed, model.ProspectStatusQueued:
		return model.ProspectStatus(strings.ToLower(s))
	}
	return model.ProspectStatusQueued
}

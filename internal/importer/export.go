package importer

import (
	"encoding/csv"
	"io"
)

var failedRowHeader = []string{
	"Reference", "Name", "Gender", "National ID", "DOB", "Phone", "Email", "Address", "Error Message",
}

// WriteFailedRowsCSV writes rows in export column order. Individual imports
// get a trailing Membership Start Date column.
func WriteFailedRowsCSV(w io.Writer, importType Type, rows []FailedRow) error {
	cw := csv.NewWriter(w)

	header := failedRowHeader
	if importType == TypeIndividual {
		header = append(append([]string{}, failedRowHeader...), "Membership Start Date")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Reference, r.Name, r.Gender, r.NationalID, r.DateOfBirth,
			r.Phone, r.Email, r.Address, r.ErrorMessage,
		}
		if importType == TypeIndividual {
			record = append(record, r.MembershipStartDate)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// FailedRowFromLog rebuilds an export row from a persisted log entry.
func FailedRowFromLog(entry MemberImportLog) FailedRow {
	var row Row
	if err := entry.RowData.Unmarshal(&row); err != nil {
		row = Row{}
	}
	return FailedRow{
		Reference:           row.Get(ColReference),
		Name:                row.Get(ColName),
		Gender:              row.Get(ColGender),
		NationalID:          row.Get(ColNationalID),
		DateOfBirth:         row.Get(ColDateOfBirth),
		Phone:               row.Get(ColPhone),
		Email:               row.Get(ColEmail),
		Address:             row.Get(ColAddress),
		ErrorMessage:        entry.ErrorMessage,
		MembershipStartDate: row.Get(ColMembershipStartDate),
	}
}

package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

var csvHeader = []string{
	"Transaction ID",
	"Contestant",
	"Amount",
	"Payment Method",
	"Status",
	"Phone",
	"Timestamp",
	"IP Address",
}

// ExportCSV writes the transaction log for f as CSV, in the same order as
// TransactionLog. Fields containing commas or quotes are quoted.
func (p *Projector) ExportCSV(ctx context.Context, w io.Writer, f LogFilter) error {
	views, err := p.TransactionLog(ctx, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range views {
		row := []string{
			v.ID,
			v.ContestantName,
			v.Amount.String(),
			strings.ToUpper(v.PaymentMethod),
			string(v.Status),
			v.Phone,
			v.Timestamp.UTC().Format(time.RFC3339),
			v.IPAddress,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", v.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

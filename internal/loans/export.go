package loans

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"loanbook-backend/internal/platform/apierr"
)

type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingUTF16    Encoding = "utf-16" // LE + BOM（Excel がそのまま開ける）
	EncodingShiftJIS Encoding = "shift_jis"
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-16", "utf16", "utf-16le":
		return EncodingUTF16, nil
	case "shift_jis", "sjis", "cp932":
		return EncodingShiftJIS, nil
	}
	return "", apierr.ErrInvalid("encoding must be one of utf-8, utf-16, shift_jis")
}

func (e Encoding) encoder() *encoding.Encoder {
	switch e {
	case EncodingUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	case EncodingShiftJIS:
		// 表現できない文字は置換（絵文字など）
		return encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	}
	return encoding.Nop.NewEncoder()
}

var csvHeader = []string{
	"id", "loan_ulid", "loan_type", "amount", "object_name", "object_description",
	"lender", "borrower", "loan_date", "due_date", "return_date", "status", "notes",
}

// Export writes the role's loans matching f as CSV in the requested encoding.
func (s *Service) Export(ctx context.Context, w io.Writer, role Role, userID int64, f ListFilter, enc Encoding) error {
	rows, err := s.store.List(ctx, role, userID, f)
	if err != nil {
		return err
	}
	return writeCSV(w, rows, enc)
}

func writeCSV(out io.Writer, rows []Loan, enc Encoding) error {
	// 既定の CSV 仕様：カンマ区切り・ダブルクォート自動
	var b bytes.Buffer
	tw := transform.NewWriter(&b, enc.encoder())
	w := csv.NewWriter(tw)

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range rows {
		record := []string{
			strconv.FormatInt(l.ID, 10),
			l.LoanULID,
			string(l.LoanType),
			amountText(l),
			deref(l.ObjectName),
			deref(l.ObjectDescription),
			l.LenderName,
			l.BorrowerName,
			l.LoanDate.String(),
			l.DueDate.String(),
			returnDateText(l),
			string(l.Status),
			deref(l.Notes),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	_, err := out.Write(b.Bytes())
	return err
}

func amountText(l Loan) string {
	if !l.Amount.Valid {
		return ""
	}
	return l.Amount.Decimal.StringFixed(2)
}

func returnDateText(l Loan) string {
	if !l.ReturnDate.Valid {
		return ""
	}
	return l.ReturnDate.Date.String()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

package sources

import (
	"errors"
	"fmt"
	"strings"

	booking "spaceledger/internal/booking/domain"
	"spaceledger/internal/ingestion/normalize"
)

// SourceInstabase identifies the Instabase 予約一覧 export.
const SourceInstabase = "instabase"

// The export is an 18-column layout. Header text occasionally gains
// annotations between releases, so validation checks substrings rather
// than exact labels.
var instabaseRequired = []string{
	"予約番号",
	"予約日時",
	"利用日",
	"開始時間",
	"終了時間",
	"スペース名",
	"プラン名",
	"予約者名",
	"ステータス",
	"利用料金",
	"手数料",
	"振込金額",
}

// NewInstabaseParser returns the parser for Instabase reservation exports.
func NewInstabaseParser() Parser {
	return Parser{
		Source:          SourceInstabase,
		Label:           "インスタベース 予約一覧CSV",
		ValidateHeaders: instabaseHeadersOK,
		Parse:           parseInstabase,
	}
}

func instabaseHeadersOK(headers []string) bool {
	return containsAll(headers, instabaseRequired)
}

func parseInstabase(content string) (ParseResult, error) {
	var res ParseResult
	recs, err := records(content)
	if err != nil {
		return res, fmt.Errorf("instabase: read csv: %w", err)
	}
	if len(recs) == 0 {
		return res, errors.New("instabase: empty file")
	}
	headers := recs[0]
	if !instabaseHeadersOK(headers) {
		return res, errors.New("instabase: unexpected header layout")
	}
	for _, row := range buildRows(headers, recs[1:], 2) {
		externalID := normalize.Fold(row.Get("予約番号"))
		name := row.Get("スペース名")
		if externalID == "" || name == "" {
			// Exports append summary and separator rows without a
			// reservation number; those are not data.
			continue
		}
		rawUsage := row.Get("利用日")
		usage := normalize.Date(rawUsage)
		if !normalize.IsDate(usage) {
			res.Errors = append(res.Errors, RowError{Row: row.Num, Message: fmt.Sprintf("invalid usage date %q", rawUsage)})
			continue
		}
		bookingDate := usage
		if f := strings.Fields(normalize.Fold(row.Get("予約日時"))); len(f) > 0 {
			if d := normalize.Date(f[0]); normalize.IsDate(d) {
				bookingDate = d
			}
		}

		start := normalize.Time(row.Get("開始時間"))
		end := normalize.Time(row.Get("終了時間"))
		duration := intField(row.Get("利用時間(分)"))
		if duration == 0 {
			duration = normalize.DurationMinutes(start, end)
		}

		gross := normalize.Amount(row.Get("利用料金"))
		gross, res.Warnings = clampNegativeGross(row.Num, gross, res.Warnings)

		b := booking.Booking{
			Source:        SourceInstabase,
			ExternalID:    externalID,
			DisplayName:   name,
			SubSpaceLabel: row.Get("プラン名"),
			BookingDate:   bookingDate,
			UsageDate:     usage,
			StartTime:     start,
			EndTime:       end,
			DurationMin:   duration,
			GrossAmount:   gross,
			NetAmount:     optionalAmount(row.Get("振込金額")),
			Commission:    optionalAmount(row.Get("手数料")),
			GuestName:     instabaseGuestName(row.Get("予約者名"), row.Get("法人名")),
			GuestCount:    intField(row.Get("利用人数")),
			Purpose:       row.Get("利用目的"),
			PurposeDetail: row.Get("利用目的詳細"),
			Status:        instabaseStatus(row.Get("ステータス")),
			Row:           row.Num,
		}
		fillDerivedAmounts(&b)
		if w := amountDivergence(row.Num, b.GrossAmount, b.NetAmount, b.Commission); w != nil {
			res.Warnings = append(res.Warnings, *w)
		}
		if b.Status == booking.StatusCancelled && b.GrossAmount == 0 {
			// Cancelled rows legitimately settle at zero; flag them so the
			// operator can tell them apart from parse problems.
			res.Warnings = append(res.Warnings, Warning{Row: row.Num, Message: "cancelled booking with zero gross amount"})
		}
		res.Bookings = append(res.Bookings, b)
	}
	return res, nil
}

// instabaseGuestName combines the person and organization name columns
// into the display convention 氏名（法人名）.
func instabaseGuestName(person, org string) string {
	switch {
	case person != "" && org != "":
		return person + "（" + org + "）"
	case org != "":
		return org
	default:
		return person
	}
}

// instabaseStatus maps the export's status tokens onto the three-way
// enum. Cancellation tokens are checked first: a value like
// 承認後キャンセル contains a confirmation keyword too.
func instabaseStatus(raw string) booking.Status {
	s := normalize.Fold(raw)
	switch {
	case strings.Contains(s, "キャンセル"), strings.Contains(s, "取消"):
		return booking.StatusCancelled
	case strings.Contains(s, "承認済"), strings.Contains(s, "確定"), strings.Contains(s, "利用済"):
		return booking.StatusConfirmed
	default:
		return booking.StatusPending
	}
}

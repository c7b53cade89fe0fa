package sources

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	booking "spaceledger/internal/booking/domain"
	"spaceledger/internal/ingestion/normalize"
)

// SourceGeneric identifies the fallback parser used for marketplaces
// without a dedicated export format.
const SourceGeneric = "generic"

// Column detection runs on header synonyms. Listing name, usage date and
// amount are the three concepts a file must carry; the rest are picked up
// when present.
var (
	genericNameRe          = regexp.MustCompile(`(スペース|会場|施設|ルーム|部屋|店舗)名`)
	genericUsageDateRe     = regexp.MustCompile(`利用日|利用年月日|ご利用日`)
	genericAnyDateRe       = regexp.MustCompile(`予約日|日付`)
	genericAmountPrimaryRe = regexp.MustCompile(`合計金額|売上金額`)
	genericAmountRe        = regexp.MustCompile(`金額|料金|売上`)
	genericExternalIDRe    = regexp.MustCompile(`予約番号|予約ID`)
	genericStartRe         = regexp.MustCompile(`開始`)
	genericEndRe           = regexp.MustCompile(`終了`)
	genericStatusRe        = regexp.MustCompile(`ステータス|状態`)
	genericGuestRe         = regexp.MustCompile(`予約者|ゲスト名|氏名`)
)

// NewGenericParser returns the fallback parser.
func NewGenericParser() Parser {
	return Parser{
		Source:          SourceGeneric,
		Label:           "汎用 売上CSV",
		ValidateHeaders: genericHeadersOK,
		Parse:           parseGeneric,
	}
}

func genericHeadersOK(headers []string) bool {
	return len(genericMissingConcepts(headers)) == 0
}

func genericMissingConcepts(headers []string) []string {
	var missing []string
	if findColumn(headers, genericNameRe) < 0 {
		missing = append(missing, "listing name")
	}
	if findColumn(headers, genericUsageDateRe, genericAnyDateRe) < 0 {
		missing = append(missing, "usage date")
	}
	if findColumn(headers, genericAmountPrimaryRe, genericAmountRe) < 0 {
		missing = append(missing, "amount")
	}
	return missing
}

// findColumn returns the first header index matched by the first regexp
// that matches anything, so preferred synonyms win over loose ones.
func findColumn(headers []string, res ...*regexp.Regexp) int {
	for _, re := range res {
		for i, h := range headers {
			if re.MatchString(normalize.Fold(h)) {
				return i
			}
		}
	}
	return -1
}

func parseGeneric(content string) (ParseResult, error) {
	var res ParseResult
	recs, err := records(content)
	if err != nil {
		return res, fmt.Errorf("generic: read csv: %w", err)
	}
	if len(recs) == 0 {
		return res, errors.New("generic: empty file")
	}
	headers := recs[0]
	if missing := genericMissingConcepts(headers); len(missing) > 0 {
		return res, fmt.Errorf("generic: no column found for %s", strings.Join(missing, ", "))
	}

	nameCol := findColumn(headers, genericNameRe)
	dateCol := findColumn(headers, genericUsageDateRe, genericAnyDateRe)
	amountCol := findColumn(headers, genericAmountPrimaryRe, genericAmountRe)
	idCol := findColumn(headers, genericExternalIDRe)
	startCol := findColumn(headers, genericStartRe)
	endCol := findColumn(headers, genericEndRe)
	statusCol := findColumn(headers, genericStatusRe)
	guestCol := findColumn(headers, genericGuestRe)

	for _, row := range buildRows(headers, recs[1:], 2) {
		name := row.At(nameCol)
		if name == "" {
			res.Errors = append(res.Errors, RowError{Row: row.Num, Message: "missing listing name"})
			continue
		}
		rawUsage := row.At(dateCol)
		usage := normalize.Date(rawUsage)
		if !normalize.IsDate(usage) {
			res.Errors = append(res.Errors, RowError{Row: row.Num, Message: fmt.Sprintf("invalid usage date %q", rawUsage)})
			continue
		}

		start := normalize.Time(row.At(startCol))
		end := normalize.Time(row.At(endCol))

		gross := normalize.Amount(row.At(amountCol))
		gross, res.Warnings = clampNegativeGross(row.Num, gross, res.Warnings)

		status := booking.StatusConfirmed
		if statusCol >= 0 {
			status = genericStatus(row.At(statusCol))
		}

		externalID := ""
		if idCol >= 0 {
			externalID = normalize.Fold(row.At(idCol))
		}

		b := booking.Booking{
			Source:      SourceGeneric,
			ExternalID:  externalID,
			DisplayName: name,
			BookingDate: usage,
			UsageDate:   usage,
			StartTime:   start,
			EndTime:     end,
			DurationMin: normalize.DurationMinutes(start, end),
			GrossAmount: gross,
			GuestName:   row.At(guestCol),
			Status:      status,
			Row:         row.Num,
		}
		res.Bookings = append(res.Bookings, b)
	}
	return res, nil
}

// genericStatus defaults to confirmed: a bare revenue report lists
// completed bookings, and unknown tokens should not hide revenue.
func genericStatus(raw string) booking.Status {
	s := normalize.Fold(raw)
	switch {
	case strings.Contains(s, "キャンセル"), strings.Contains(s, "取消"):
		return booking.StatusCancelled
	case strings.Contains(s, "保留"), strings.Contains(s, "申請中"), strings.Contains(s, "待ち"):
		return booking.StatusPending
	default:
		return booking.StatusConfirmed
	}
}
